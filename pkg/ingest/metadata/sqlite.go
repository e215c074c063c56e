package metadata

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"strata-hq/strata/pkg/ingest"
)

// SchemaVersion is the current metadata schema version. Version 2 added
// the plan and stages columns.
const SchemaVersion = 2

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS files (
    id TEXT PRIMARY KEY,
    path TEXT NOT NULL,
    size INTEGER NOT NULL,
    content_type TEXT,
    created_at INTEGER NOT NULL,
    last_modified INTEGER NOT NULL,
    plan TEXT,
    stages TEXT
);

CREATE INDEX IF NOT EXISTS idx_files_created_at ON files(created_at);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// SQLiteConfig contains configuration for the SQLite metadata store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/metadata.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements ingest.MetadataStore using SQLite.
type SQLiteStore struct {
	sqlStore
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens the database and initializes the schema.
func NewSQLiteStore(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "metadata.sqlite")

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, ingest.NewMetadataError("sqlite", "open", "", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}

	s := &SQLiteStore{
		sqlStore: sqlStore{db: db, dialect: sqliteDialect, now: time.Now},
		config:   config,
		logger:   logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite metadata store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return ingest.NewMetadataError("sqlite", "enable_wal", "", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())); err != nil {
			return ingest.NewMetadataError("sqlite", "set_busy_timeout", "", err)
		}
	}

	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return ingest.NewMetadataError("sqlite", "create_schema", "", err)
	}

	var recorded sql.NullInt64
	if err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&recorded); err != nil {
		return ingest.NewMetadataError("sqlite", "get_schema_version", "", err)
	}
	version := int(recorded.Int64)
	if !recorded.Valid {
		version = SchemaVersion
	}
	if version == 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
		version = SchemaVersion
	}

	if _, err := s.db.Exec("INSERT OR IGNORE INTO schema_version (version) VALUES (?)", version); err != nil {
		return ingest.NewMetadataError("sqlite", "insert_schema_version", "", err)
	}
	if version != SchemaVersion {
		return ingest.NewMetadataError("sqlite", "schema_version_mismatch", "",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)
	return nil
}

// migrateV1 adds the columns introduced in schema version 2.
func (s *SQLiteStore) migrateV1() error {
	for _, stmt := range []string{
		"ALTER TABLE files ADD COLUMN plan TEXT",
		"ALTER TABLE files ADD COLUMN stages TEXT",
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return ingest.NewMetadataError("sqlite", "migrate_schema", "", err)
		}
	}
	s.logger.Info("metadata schema migrated", "from", 1, "to", SchemaVersion)
	return nil
}
