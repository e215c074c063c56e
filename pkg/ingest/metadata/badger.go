package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"strata-hq/strata/pkg/ingest"
)

const badgerFilePrefix = "f:"

// BadgerConfig contains configuration for the Badger metadata store.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps the database in memory only.
	InMemory bool
}

// BadgerStore implements ingest.MetadataStore on an embedded Badger database.
// Records are stored as JSON under "f:<id>".
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// NewBadgerStore opens the database.
func NewBadgerStore(cfg BadgerConfig, logger *slog.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "metadata.badger")

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, ingest.NewConfigError("metadata.badger.path", "path is required unless in_memory is set")
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, ingest.NewMetadataError("badger", "open", "", fmt.Errorf("open %s: %w", cfg.Path, err))
	}

	logger.Info("Badger metadata store initialized", "path", cfg.Path, "in_memory", cfg.InMemory)
	return &BadgerStore{db: db, logger: logger, now: time.Now}, nil
}

func badgerKey(id string) []byte {
	return []byte(badgerFilePrefix + id)
}

// Store implements ingest.MetadataStore.
func (s *BadgerStore) Store(ctx context.Context, meta *ingest.FileMetadata) error {
	val, err := json.Marshal(meta)
	if err != nil {
		return ingest.NewMetadataError("badger", "store", meta.ID, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(badgerKey(meta.ID)); err == nil {
			return fmt.Errorf("record already exists")
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(badgerKey(meta.ID), val)
	})
	if err != nil {
		return ingest.NewMetadataError("badger", "store", meta.ID, err)
	}
	return nil
}

// Get implements ingest.MetadataStore.
func (s *BadgerStore) Get(ctx context.Context, id string) (*ingest.FileMetadata, error) {
	var m ingest.FileMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ingest.NewMetadataError("badger", "get", id, ingest.NewNotFoundError("metadata", id))
	}
	if err != nil {
		return nil, ingest.NewMetadataError("badger", "get", id, err)
	}
	return &m, nil
}

// Delete implements ingest.MetadataStore.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(badgerKey(id))
	})
	if err != nil {
		return ingest.NewMetadataError("badger", "delete", id, err)
	}
	return nil
}

// GetAllFiles implements ingest.MetadataStore.
func (s *BadgerStore) GetAllFiles(ctx context.Context) ([]*ingest.FileMetadata, error) {
	var out []*ingest.FileMetadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerFilePrefix)

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				var m ingest.FileMetadata
				if err := json.Unmarshal(val, &m); err != nil {
					s.logger.Warn("skipping corrupt metadata record", "key", string(it.Item().Key()), "error", err)
					return nil
				}
				out = append(out, &m)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, ingest.NewMetadataError("badger", "get_all", "", err)
	}

	sortByCreation(out)
	return out, nil
}

// DeleteAll implements ingest.MetadataStore.
func (s *BadgerStore) DeleteAll(ctx context.Context) error {
	if err := s.db.DropPrefix([]byte(badgerFilePrefix)); err != nil {
		return ingest.NewMetadataError("badger", "delete_all", "", err)
	}
	return nil
}

// Update implements ingest.MetadataStore.
func (s *BadgerStore) Update(ctx context.Context, meta *ingest.FileMetadata) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(meta.ID))
		if err != nil {
			return err
		}
		var cur ingest.FileMetadata
		if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &cur) }); err != nil {
			return err
		}

		next := meta.Clone()
		next.CreatedAt = cur.CreatedAt
		next.Plan = cur.Plan
		next.Stages = cur.Stages
		next.LastModified = s.now().UTC()
		val, err := json.Marshal(next)
		if err != nil {
			return err
		}
		return txn.Set(badgerKey(meta.ID), val)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ingest.NewMetadataError("badger", "update", meta.ID, ingest.NewNotFoundError("metadata", meta.ID))
	}
	if err != nil {
		return ingest.NewMetadataError("badger", "update", meta.ID, err)
	}
	return nil
}

// Close implements ingest.MetadataStore.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
