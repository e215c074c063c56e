package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// FileIDKey is the context key for file identifiers.
	FileIDKey contextKey = "file_id"

	// PlanKey is the context key for plan names.
	PlanKey contextKey = "plan"

	// OperationKey is the context key for the operation being performed
	// (store, retrieve, sweep, watch).
	OperationKey contextKey = "operation"
)

var contextKeys = []contextKey{OperationKey, FileIDKey, PlanKey}

// WithFileID adds a file identifier to the context.
func WithFileID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, FileIDKey, id)
}

// WithPlan adds a plan name to the context.
func WithPlan(ctx context.Context, plan string) context.Context {
	return context.WithValue(ctx, PlanKey, plan)
}

// WithOperation adds an operation name to the context.
func WithOperation(ctx context.Context, op string) context.Context {
	return context.WithValue(ctx, OperationKey, op)
}

// GetFileID retrieves the file identifier from the context.
func GetFileID(ctx context.Context) string {
	return stringValue(ctx, FileIDKey)
}

// GetOperation retrieves the operation name from the context.
func GetOperation(ctx context.Context) string {
	return stringValue(ctx, OperationKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}

// extractContextFields extracts common fields from context for logging.
func extractContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	var fields []slog.Attr
	for _, key := range contextKeys {
		if v := stringValue(ctx, key); v != "" {
			fields = append(fields, slog.String(string(key), v))
		}
	}
	return fields
}

// contextHandler adds context fields to every record it handles.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, r slog.Record) error {
	if fields := extractContextFields(ctx); len(fields) > 0 {
		r = r.Clone()
		r.AddAttrs(fields...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
