package journal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"strata-hq/strata/pkg/ingest"
)

const lineSeparator = ": "

// FileJournal appends entries to a text file, one per line.
type FileJournal struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	now    func() time.Time
	logger *slog.Logger
}

// NewFileJournal opens (or creates) the journal file at path.
func NewFileJournal(path string, logger *slog.Logger) (*FileJournal, error) {
	if path == "" {
		return nil, ingest.NewConfigError("journal.file.path", "path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, ingest.NewJournalError("file", "open", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, ingest.NewJournalError("file", "open", err)
	}
	return &FileJournal{
		path:   path,
		file:   f,
		now:    time.Now,
		logger: logger.With("component", "journal.file"),
	}, nil
}

// Log implements ingest.Journal.
func (j *FileJournal) Log(ctx context.Context, message string) error {
	return j.LogAt(ctx, j.now(), message)
}

// LogAt implements ingest.Journal. Newlines in message are flattened so each
// entry stays on one line.
func (j *FileJournal) LogAt(ctx context.Context, ts time.Time, message string) error {
	line := ts.UTC().Format(time.RFC3339Nano) + lineSeparator + strings.ReplaceAll(message, "\n", " ") + "\n"

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.file.WriteString(line); err != nil {
		return ingest.NewJournalError("file", "log", err)
	}
	return nil
}

// Entries implements ingest.Journal.
func (j *FileJournal) Entries(ctx context.Context) ([]ingest.JournalEntry, error) {
	return j.read(func(ingest.JournalEntry) bool { return true })
}

// Search implements ingest.Journal.
func (j *FileJournal) Search(ctx context.Context, substr string) ([]ingest.JournalEntry, error) {
	return j.read(func(e ingest.JournalEntry) bool { return strings.Contains(e.Message, substr) })
}

// Since implements ingest.Journal.
func (j *FileJournal) Since(ctx context.Context, t time.Time) ([]ingest.JournalEntry, error) {
	return j.read(func(e ingest.JournalEntry) bool { return !e.Timestamp.Before(t) })
}

// Count implements ingest.Journal.
func (j *FileJournal) Count(ctx context.Context) (int, error) {
	entries, err := j.Entries(ctx)
	return len(entries), err
}

// Clear implements ingest.Journal.
func (j *FileJournal) Clear(ctx context.Context) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.file.Truncate(0); err != nil {
		return ingest.NewJournalError("file", "clear", err)
	}
	return nil
}

// Close implements ingest.Journal.
func (j *FileJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.file.Close()
}

func (j *FileJournal) read(keep func(ingest.JournalEntry) bool) ([]ingest.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.Open(j.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, ingest.NewJournalError("file", "read", err)
	}
	defer f.Close()

	var out []ingest.JournalEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		entry, err := parseLine(scanner.Text())
		if err != nil {
			j.logger.Warn("skipping malformed journal line", "line", lineNo, "error", err)
			continue
		}
		if keep(entry) {
			out = append(out, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ingest.NewJournalError("file", "read", err)
	}
	return out, nil
}

func parseLine(line string) (ingest.JournalEntry, error) {
	ts, msg, ok := strings.Cut(line, lineSeparator)
	if !ok {
		return ingest.JournalEntry{}, fmt.Errorf("missing separator")
	}
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return ingest.JournalEntry{}, fmt.Errorf("bad timestamp: %w", err)
	}
	return ingest.JournalEntry{Timestamp: t, Message: msg}, nil
}
