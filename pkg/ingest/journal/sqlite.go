package journal

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"strata-hq/strata/pkg/ingest"
)

// SQLiteJournal stores entries in a SQLite table. Entry order is the
// insertion sequence, not the timestamp.
type SQLiteJournal struct {
	db        *sql.DB
	now       func() time.Time
	closeOnce sync.Once

	insertStmt *sql.Stmt
}

// NewSQLiteJournal opens the database at path and creates the journal table.
func NewSQLiteJournal(path string, busyTimeout time.Duration) (*SQLiteJournal, error) {
	if path == "" {
		return nil, ingest.NewConfigError("journal.sqlite.path", "path is required")
	}
	if busyTimeout == 0 {
		busyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)", path, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, ingest.NewJournalError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(1) // single writer
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS journal (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		ts INTEGER NOT NULL,
		message TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_ts ON journal(ts);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, ingest.NewJournalError("sqlite", "create_schema", err)
	}

	stmt, err := db.Prepare(`INSERT INTO journal (ts, message) VALUES (?, ?)`)
	if err != nil {
		db.Close()
		return nil, ingest.NewJournalError("sqlite", "prepare", err)
	}

	return &SQLiteJournal{db: db, now: time.Now, insertStmt: stmt}, nil
}

// Log implements ingest.Journal.
func (j *SQLiteJournal) Log(ctx context.Context, message string) error {
	return j.LogAt(ctx, j.now(), message)
}

// LogAt implements ingest.Journal.
func (j *SQLiteJournal) LogAt(ctx context.Context, ts time.Time, message string) error {
	if _, err := j.insertStmt.ExecContext(ctx, ts.UTC().UnixNano(), message); err != nil {
		return ingest.NewJournalError("sqlite", "log", err)
	}
	return nil
}

// Entries implements ingest.Journal.
func (j *SQLiteJournal) Entries(ctx context.Context) ([]ingest.JournalEntry, error) {
	return j.query(ctx, `SELECT ts, message FROM journal ORDER BY seq`)
}

// Search implements ingest.Journal.
func (j *SQLiteJournal) Search(ctx context.Context, substr string) ([]ingest.JournalEntry, error) {
	return j.query(ctx, `SELECT ts, message FROM journal WHERE instr(message, ?) > 0 ORDER BY seq`, substr)
}

// Since implements ingest.Journal.
func (j *SQLiteJournal) Since(ctx context.Context, t time.Time) ([]ingest.JournalEntry, error) {
	return j.query(ctx, `SELECT ts, message FROM journal WHERE ts >= ? ORDER BY seq`, t.UTC().UnixNano())
}

// Count implements ingest.Journal.
func (j *SQLiteJournal) Count(ctx context.Context) (int, error) {
	var n int
	if err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM journal`).Scan(&n); err != nil {
		return 0, ingest.NewJournalError("sqlite", "count", err)
	}
	return n, nil
}

// Clear implements ingest.Journal.
func (j *SQLiteJournal) Clear(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM journal`); err != nil {
		return ingest.NewJournalError("sqlite", "clear", err)
	}
	return nil
}

// Close implements ingest.Journal.
func (j *SQLiteJournal) Close() error {
	var err error
	j.closeOnce.Do(func() {
		j.insertStmt.Close()
		err = j.db.Close()
	})
	return err
}

func (j *SQLiteJournal) query(ctx context.Context, q string, args ...any) ([]ingest.JournalEntry, error) {
	rows, err := j.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, ingest.NewJournalError("sqlite", "query", err)
	}
	defer rows.Close()

	var out []ingest.JournalEntry
	for rows.Next() {
		var (
			ts  int64
			msg string
		)
		if err := rows.Scan(&ts, &msg); err != nil {
			return nil, ingest.NewJournalError("sqlite", "query", err)
		}
		out = append(out, ingest.JournalEntry{Timestamp: time.Unix(0, ts).UTC(), Message: msg})
	}
	if err := rows.Err(); err != nil {
		return nil, ingest.NewJournalError("sqlite", "query", err)
	}
	return out, nil
}

