package journal

import (
	"context"
	"strings"
	"sync"
	"time"

	"strata-hq/strata/pkg/ingest"
)

// MemoryJournal keeps entries in a slice.
type MemoryJournal struct {
	mu      sync.RWMutex
	entries []ingest.JournalEntry
	now     func() time.Time
}

// NewMemoryJournal creates an empty in-memory journal.
func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{now: time.Now}
}

// Log implements ingest.Journal.
func (j *MemoryJournal) Log(ctx context.Context, message string) error {
	return j.LogAt(ctx, j.now(), message)
}

// LogAt implements ingest.Journal.
func (j *MemoryJournal) LogAt(ctx context.Context, ts time.Time, message string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, ingest.JournalEntry{Timestamp: ts.UTC(), Message: message})
	return nil
}

// Entries implements ingest.Journal.
func (j *MemoryJournal) Entries(ctx context.Context) ([]ingest.JournalEntry, error) {
	return j.filter(func(ingest.JournalEntry) bool { return true }), nil
}

// Search implements ingest.Journal.
func (j *MemoryJournal) Search(ctx context.Context, substr string) ([]ingest.JournalEntry, error) {
	return j.filter(func(e ingest.JournalEntry) bool { return strings.Contains(e.Message, substr) }), nil
}

// Since implements ingest.Journal.
func (j *MemoryJournal) Since(ctx context.Context, t time.Time) ([]ingest.JournalEntry, error) {
	return j.filter(func(e ingest.JournalEntry) bool { return !e.Timestamp.Before(t) }), nil
}

// Count implements ingest.Journal.
func (j *MemoryJournal) Count(ctx context.Context) (int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.entries), nil
}

// Clear implements ingest.Journal.
func (j *MemoryJournal) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = nil
	return nil
}

// Close implements ingest.Journal.
func (j *MemoryJournal) Close() error { return nil }

func (j *MemoryJournal) filter(keep func(ingest.JournalEntry) bool) []ingest.JournalEntry {
	j.mu.RLock()
	defer j.mu.RUnlock()

	var out []ingest.JournalEntry
	for _, e := range j.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
