package cli

import (
	"errors"
	"fmt"

	"strata-hq/strata/pkg/config"
	"strata-hq/strata/pkg/ingest"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitNotFound = 3
	ExitConfig   = 78 // EX_CONFIG from sysexits.h
)

// UsageError represents a malformed flag or argument.
type UsageError struct {
	Flag    string
	Message string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Flag, e.Message)
}

// CommandError represents an error from a command execution.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// NewUsageError creates a new UsageError.
func NewUsageError(flag, message string) *UsageError {
	return &UsageError{
		Flag:    flag,
		Message: message,
	}
}

// NewCommandError creates a new CommandError.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{
		Command: command,
		Err:     err,
	}
}

// ExitCode maps an error returned by a command onto a process exit code.
func ExitCode(err error) int {
	var usage *UsageError
	var cfgErr *ingest.ConfigError
	var validation config.ValidationError

	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &usage):
		return ExitUsage
	case errors.As(err, &validation), errors.As(err, &cfgErr):
		return ExitConfig
	case errors.Is(err, ingest.ErrNotFound):
		return ExitNotFound
	default:
		return ExitFailure
	}
}
