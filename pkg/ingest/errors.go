package ingest

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every error reporting a missing identifier.
var ErrNotFound = errors.New("not found")

// NotFoundError reports that an identifier is absent from a store.
type NotFoundError struct {
	Kind string // "file", "object", "metadata"
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// Is reports whether target is ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(kind, id string) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id}
}

// ConfigError represents missing or invalid configuration. It is never retried.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
	return fmt.Sprintf("configuration error [field=%s]: %s", e.Field, e.Message)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// StorageError represents an error from a storage backend.
type StorageError struct {
	Backend   string // "local", "s3", "memory"
	Operation string // "store", "retrieve", "delete", "archive"
	ID        string
	Cause     error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s, id=%s]: %v", e.Backend, e.Operation, e.ID, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation, id string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		ID:        id,
		Cause:     cause,
	}
}

// MetadataError represents an error from a metadata store.
type MetadataError struct {
	Backend   string // "memory", "sqlite", "postgres", "badger"
	Operation string
	ID        string
	Cause     error
}

// Error implements the error interface.
func (e *MetadataError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("metadata error [backend=%s, operation=%s, id=%s]: %v", e.Backend, e.Operation, e.ID, e.Cause)
	}
	return fmt.Sprintf("metadata error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *MetadataError) Unwrap() error {
	return e.Cause
}

// NewMetadataError creates a new MetadataError.
func NewMetadataError(backend, operation, id string, cause error) *MetadataError {
	return &MetadataError{
		Backend:   backend,
		Operation: operation,
		ID:        id,
		Cause:     cause,
	}
}

// CacheError represents an error from a remote cache.
type CacheError struct {
	Backend   string
	Operation string
	ID        string
	Cause     error
}

// Error implements the error interface.
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error [backend=%s, operation=%s, id=%s]: %v", e.Backend, e.Operation, e.ID, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *CacheError) Unwrap() error {
	return e.Cause
}

// NewCacheError creates a new CacheError.
func NewCacheError(backend, operation, id string, cause error) *CacheError {
	return &CacheError{
		Backend:   backend,
		Operation: operation,
		ID:        id,
		Cause:     cause,
	}
}

// JournalError represents an I/O error from a durable journal.
type JournalError struct {
	Backend   string
	Operation string
	Cause     error
}

// Error implements the error interface.
func (e *JournalError) Error() string {
	return fmt.Sprintf("journal error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *JournalError) Unwrap() error {
	return e.Cause
}

// NewJournalError creates a new JournalError.
func NewJournalError(backend, operation string, cause error) *JournalError {
	return &JournalError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// PlanError represents a failure while building or executing a plan.
type PlanError struct {
	Stage string // "construct", "submit", "execute"
	ID    string
	Cause error
}

// Error implements the error interface.
func (e *PlanError) Error() string {
	return fmt.Sprintf("plan error [stage=%s, id=%s]: %v", e.Stage, e.ID, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *PlanError) Unwrap() error {
	return e.Cause
}

// NewPlanError creates a new PlanError.
func NewPlanError(stage, id string, cause error) *PlanError {
	return &PlanError{
		Stage: stage,
		ID:    id,
		Cause: cause,
	}
}
