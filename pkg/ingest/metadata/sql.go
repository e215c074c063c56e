package metadata

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"strata-hq/strata/pkg/ingest"
)

// dialect captures the differences between the SQL backends.
type dialect struct {
	name string

	// bind rewrites '?' placeholders for drivers that need numbered ones.
	bind func(query string) string
}

var sqliteDialect = dialect{name: "sqlite", bind: func(q string) string { return q }}

var postgresDialect = dialect{name: "postgres", bind: numberedPlaceholders}

func numberedPlaceholders(q string) string {
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Plan and stages are written once by insert; updateFileSQL leaves them alone.
const (
	insertFileSQL = `INSERT INTO files (id, path, size, content_type, created_at, last_modified, plan, stages) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	selectFileSQL = `SELECT id, path, size, content_type, created_at, last_modified, plan, stages FROM files WHERE id = ?`
	selectAllSQL  = `SELECT id, path, size, content_type, created_at, last_modified, plan, stages FROM files ORDER BY created_at, id`
	deleteFileSQL = `DELETE FROM files WHERE id = ?`
	deleteAllSQL  = `DELETE FROM files`
	updateFileSQL = `UPDATE files SET path = ?, size = ?, content_type = ?, last_modified = ? WHERE id = ?`
)

// sqlStore implements ingest.MetadataStore over database/sql.
type sqlStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func (s *sqlStore) err(op, id string, cause error) error {
	return ingest.NewMetadataError(s.dialect.name, op, id, cause)
}

func (s *sqlStore) Store(ctx context.Context, meta *ingest.FileMetadata) error {
	_, err := s.db.ExecContext(ctx, s.dialect.bind(insertFileSQL),
		meta.ID, meta.Path, meta.Size, meta.ContentType,
		meta.CreatedAt.UnixNano(), meta.LastModified.UnixNano(),
		meta.Plan, joinStages(meta.Stages),
	)
	if err != nil {
		return s.err("store", meta.ID, err)
	}
	return nil
}

func (s *sqlStore) Get(ctx context.Context, id string) (*ingest.FileMetadata, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.bind(selectFileSQL), id)
	m, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, s.err("get", id, ingest.NewNotFoundError("metadata", id))
	}
	if err != nil {
		return nil, s.err("get", id, err)
	}
	return m, nil
}

func (s *sqlStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.bind(deleteFileSQL), id); err != nil {
		return s.err("delete", id, err)
	}
	return nil
}

func (s *sqlStore) GetAllFiles(ctx context.Context) ([]*ingest.FileMetadata, error) {
	rows, err := s.db.QueryContext(ctx, selectAllSQL)
	if err != nil {
		return nil, s.err("get_all", "", err)
	}
	defer rows.Close()

	var out []*ingest.FileMetadata
	for rows.Next() {
		m, err := scanFile(rows)
		if err != nil {
			return nil, s.err("get_all", "", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, s.err("get_all", "", err)
	}
	return out, nil
}

func (s *sqlStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, deleteAllSQL); err != nil {
		return s.err("delete_all", "", err)
	}
	return nil
}

func (s *sqlStore) Update(ctx context.Context, meta *ingest.FileMetadata) error {
	res, err := s.db.ExecContext(ctx, s.dialect.bind(updateFileSQL),
		meta.Path, meta.Size, meta.ContentType, s.now().UTC().UnixNano(), meta.ID,
	)
	if err != nil {
		return s.err("update", meta.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return s.err("update", meta.ID, err)
	}
	if n == 0 {
		return s.err("update", meta.ID, ingest.NewNotFoundError("metadata", meta.ID))
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFile(row scanner) (*ingest.FileMetadata, error) {
	var (
		m           ingest.FileMetadata
		contentType sql.NullString
		created     int64
		modified    int64
		plan        sql.NullString
		stages      sql.NullString
	)
	if err := row.Scan(&m.ID, &m.Path, &m.Size, &contentType, &created, &modified, &plan, &stages); err != nil {
		return nil, err
	}
	m.ContentType = contentType.String
	m.Plan = plan.String
	m.Stages = splitStages(stages.String)
	m.CreatedAt = time.Unix(0, created).UTC()
	m.LastModified = time.Unix(0, modified).UTC()
	return &m, nil
}

// Stage names never contain commas; plan.LookupTransformer only knows
// plain identifiers.
func joinStages(stages []string) string {
	return strings.Join(stages, ",")
}

func splitStages(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
