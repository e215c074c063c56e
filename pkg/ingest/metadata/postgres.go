package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	_ "github.com/lib/pq"

	"strata-hq/strata/pkg/ingest"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS files (
    id UUID PRIMARY KEY,
    path TEXT NOT NULL,
    size BIGINT NOT NULL,
    content_type TEXT,
    created_at BIGINT NOT NULL,
    last_modified BIGINT NOT NULL
);

ALTER TABLE files ADD COLUMN IF NOT EXISTS plan TEXT;
ALTER TABLE files ADD COLUMN IF NOT EXISTS stages TEXT;

CREATE INDEX IF NOT EXISTS idx_files_created_at ON files(created_at);
`

// PostgresConfig contains connection settings for the PostgreSQL store.
type PostgresConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxOpenConns caps the pool. Default: 10
	MaxOpenConns int
}

// DSN renders the connection URL understood by lib/pq.
func (c PostgresConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else if c.User != "" {
		u.User = url.User(c.User)
	}
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	u.RawQuery = url.Values{"sslmode": {sslMode}}.Encode()
	return u.String()
}

// PostgresStore implements ingest.MetadataStore using PostgreSQL.
type PostgresStore struct {
	sqlStore
	logger *slog.Logger
}

// NewPostgresStore connects, pings and creates the schema.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "metadata.postgres")

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, ingest.NewMetadataError("postgres", "open", "", err)
	}
	maxOpen := cfg.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 10
	}
	db.SetMaxOpenConns(maxOpen)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, ingest.NewMetadataError("postgres", "connect", "", err)
	}

	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, ingest.NewMetadataError("postgres", "create_schema", "", err)
	}

	logger.Info("PostgreSQL metadata store initialized",
		"host", cfg.Host,
		"database", cfg.Database,
	)

	return &PostgresStore{
		sqlStore: sqlStore{db: db, dialect: postgresDialect, now: time.Now},
		logger:   logger,
	}, nil
}
