// Package logging builds the structured logger used across strata.
//
// The logger is a plain *slog.Logger with JSON or text output. Two things
// are layered on the handler:
//
//   - Credential redaction: attributes named like passwords, secrets or
//     access keys are replaced with "***", and string values have URL
//     passwords and AWS key IDs masked.
//   - Context fields: file_id, plan and operation stored on the context
//     with WithFileID, WithPlan and WithOperation are added to records
//     logged through InfoContext and friends.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", Redact: true})
//	ctx = logging.WithOperation(ctx, "sweep")
//	logger.InfoContext(ctx, "sweep finished", "deleted", 3)
package logging
