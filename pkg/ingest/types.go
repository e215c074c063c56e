package ingest

import (
	"context"
	"time"
)

// FileMetadata describes one ingested file.
//
// ID, CreatedAt, Plan and Stages are fixed when the record is stored and
// never change. LastModified starts equal to CreatedAt and moves forward on
// Update.
type FileMetadata struct {
	// ID is the globally unique identifier assigned at ingestion time.
	ID string `json:"id"`

	// Path is the logical path the file was ingested from. Not unique.
	Path string `json:"path"`

	// Size is the payload size in bytes.
	Size int64 `json:"size"`

	// CreatedAt is the ingestion time. Retention cutoffs are computed from it.
	CreatedAt time.Time `json:"created_at"`

	// LastModified is the time of the last metadata update.
	LastModified time.Time `json:"last_modified"`

	// ContentType is an optional MIME type.
	ContentType string `json:"content_type,omitempty"`

	// Plan names the plan that wrote the stored bytes.
	Plan string `json:"plan,omitempty"`

	// Stages lists the transforms applied before the bytes reached storage,
	// in application order. Reads undo them in reverse.
	Stages []string `json:"stages,omitempty"`
}

// NewFileMetadata builds a FileMetadata record created at the given time.
func NewFileMetadata(id, path string, size int64, createdAt time.Time) *FileMetadata {
	createdAt = createdAt.UTC()
	return &FileMetadata{
		ID:           id,
		Path:         path,
		Size:         size,
		CreatedAt:    createdAt,
		LastModified: createdAt,
	}
}

// Clone returns a copy of m.
func (m *FileMetadata) Clone() *FileMetadata {
	if m == nil {
		return nil
	}
	c := *m
	if m.Stages != nil {
		c.Stages = append([]string(nil), m.Stages...)
	}
	return &c
}

// Storage is the byte store behind every plan action.
//
// Store must be safe to repeat: storing identical bytes under an identifier
// that already holds them succeeds without rewriting the object.
type Storage interface {
	// Store writes data under id. meta is attached to the object where the
	// backend supports it.
	Store(ctx context.Context, id string, data []byte, meta map[string]string) error

	// Retrieve returns the bytes stored under id.
	Retrieve(ctx context.Context, id string) ([]byte, error)

	// Delete removes the object stored under id.
	Delete(ctx context.Context, id string) error

	// Archive moves the object stored under id to the long-term tier.
	// Archived objects are no longer served by Retrieve.
	Archive(ctx context.Context, id string) error

	// Name identifies the backend in logs and errors.
	Name() string
}

// MetadataStore persists FileMetadata records.
type MetadataStore interface {
	Store(ctx context.Context, meta *FileMetadata) error

	// Get returns the record for id, or an error matching ErrNotFound.
	Get(ctx context.Context, id string) (*FileMetadata, error)

	// Delete removes the record for id. Deleting an absent record is not an error.
	Delete(ctx context.Context, id string) error

	// GetAllFiles returns every stored record ordered by creation time.
	GetAllFiles(ctx context.Context) ([]*FileMetadata, error)

	DeleteAll(ctx context.Context) error

	// Update replaces the mutable attributes of an existing record.
	// CreatedAt is preserved and LastModified is set to the current time.
	Update(ctx context.Context, meta *FileMetadata) error

	Close() error
}

// Cache holds bytes for recently stored or retrieved files.
type Cache interface {
	// Get returns the cached bytes and true, or nil and false on a miss.
	Get(ctx context.Context, id string) ([]byte, bool, error)

	Put(ctx context.Context, id string, data []byte) error

	// Remove evicts id. Removing an absent id is not an error.
	Remove(ctx context.Context, id string) error

	Close() error
}

// JournalEntry is one line of the audit journal.
type JournalEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Journal is the append-only audit trail of ingestion and retention events.
type Journal interface {
	// Log appends message stamped with the current time.
	Log(ctx context.Context, message string) error

	// LogAt appends message stamped with ts.
	LogAt(ctx context.Context, ts time.Time, message string) error

	// Entries returns every entry in append order.
	Entries(ctx context.Context) ([]JournalEntry, error)

	// Search returns the entries whose message contains substr.
	Search(ctx context.Context, substr string) ([]JournalEntry, error)

	// Since returns the entries stamped at or after t.
	Since(ctx context.Context, t time.Time) ([]JournalEntry, error)

	Count(ctx context.Context) (int, error)

	Clear(ctx context.Context) error

	Close() error
}
