package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"strata-hq/strata/pkg/ingest"
)

// LocalConfig contains configuration for the local filesystem backend.
type LocalConfig struct {
	// Path is the root directory for live objects.
	Path string

	// ArchivePath is where archived objects are moved.
	// Default: <Path>/archive
	ArchivePath string
}

// LocalStorage stores each object as a file named after its identifier, with
// a JSON sidecar holding the payload digest and object metadata.
type LocalStorage struct {
	root        string
	archiveRoot string
	logger      *slog.Logger
}

type sidecar struct {
	Digest string            `json:"sha256"`
	Size   int               `json:"size"`
	Meta   map[string]string `json:"meta,omitempty"`
}

// NewLocalStorage creates the root and archive directories if needed.
func NewLocalStorage(cfg LocalConfig, logger *slog.Logger) (*LocalStorage, error) {
	if cfg.Path == "" {
		return nil, ingest.NewConfigError("storage.local.path", "path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	archive := cfg.ArchivePath
	if archive == "" {
		archive = filepath.Join(cfg.Path, "archive")
	}

	for _, dir := range []string{cfg.Path, archive} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, ingest.NewStorageError("local", "init", "", fmt.Errorf("create %s: %w", dir, err))
		}
	}

	s := &LocalStorage{
		root:        cfg.Path,
		archiveRoot: archive,
		logger:      logger.With("component", "storage.local"),
	}
	s.logger.Info("local storage initialized", "path", cfg.Path, "archive_path", archive)
	return s, nil
}

// Name implements ingest.Storage.
func (s *LocalStorage) Name() string { return "local" }

func (s *LocalStorage) objectPath(id string) string  { return filepath.Join(s.root, id) }
func (s *LocalStorage) sidecarPath(id string) string { return filepath.Join(s.root, id+".meta.json") }

// Store implements ingest.Storage.
func (s *LocalStorage) Store(ctx context.Context, id string, data []byte, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return ingest.NewStorageError("local", "store", id, err)
	}
	if err := validateID(id); err != nil {
		return ingest.NewStorageError("local", "store", id, err)
	}

	digest := Digest(data)
	if s.holds(id, digest) {
		s.logger.Debug("object already stored", "id", id, "sha256", digest)
		return nil
	}

	if err := writeAtomic(s.objectPath(id), data); err != nil {
		return ingest.NewStorageError("local", "store", id, err)
	}

	sc, err := json.Marshal(sidecar{Digest: digest, Size: len(data), Meta: meta})
	if err != nil {
		return ingest.NewStorageError("local", "store", id, err)
	}
	if err := writeAtomic(s.sidecarPath(id), sc); err != nil {
		return ingest.NewStorageError("local", "store", id, err)
	}
	return nil
}

// holds reports whether id already stores content with the given digest.
func (s *LocalStorage) holds(id, digest string) bool {
	raw, err := os.ReadFile(s.sidecarPath(id))
	if err != nil {
		return false
	}
	var sc sidecar
	if err := json.Unmarshal(raw, &sc); err != nil || sc.Digest != digest {
		return false
	}
	info, err := os.Stat(s.objectPath(id))
	return err == nil && info.Size() == int64(sc.Size)
}

// Retrieve implements ingest.Storage.
func (s *LocalStorage) Retrieve(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, ingest.NewStorageError("local", "retrieve", id, err)
	}
	if err := validateID(id); err != nil {
		return nil, ingest.NewStorageError("local", "retrieve", id, err)
	}

	data, err := os.ReadFile(s.objectPath(id))
	if err != nil {
		return nil, ingest.NewStorageError("local", "retrieve", id, notFoundOr(id, err))
	}
	return data, nil
}

// Delete implements ingest.Storage.
func (s *LocalStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return ingest.NewStorageError("local", "delete", id, err)
	}
	if err := validateID(id); err != nil {
		return ingest.NewStorageError("local", "delete", id, err)
	}

	if err := os.Remove(s.objectPath(id)); err != nil {
		return ingest.NewStorageError("local", "delete", id, notFoundOr(id, err))
	}
	if err := os.Remove(s.sidecarPath(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to remove sidecar", "id", id, "error", err)
	}
	return nil
}

// Archive implements ingest.Storage. The object and its sidecar are renamed
// into the archive directory.
func (s *LocalStorage) Archive(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return ingest.NewStorageError("local", "archive", id, err)
	}
	if err := validateID(id); err != nil {
		return ingest.NewStorageError("local", "archive", id, err)
	}

	if err := os.Rename(s.objectPath(id), filepath.Join(s.archiveRoot, id)); err != nil {
		return ingest.NewStorageError("local", "archive", id, notFoundOr(id, err))
	}
	if err := os.Rename(s.sidecarPath(id), filepath.Join(s.archiveRoot, id+".meta.json")); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("failed to archive sidecar", "id", id, "error", err)
	}
	return nil
}

// writeAtomic writes data to a temp file in the target directory and renames
// it into place, so readers never observe a partial object.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

func notFoundOr(id string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return ingest.NewNotFoundError("object", id)
	}
	return err
}
