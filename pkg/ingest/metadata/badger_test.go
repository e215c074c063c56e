package metadata

import (
	"context"
	"testing"
	"time"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/ingesttest"
)

func newTestBadger(t *testing.T, cfg BadgerConfig) *BadgerStore {
	t.Helper()
	store, err := NewBadgerStore(cfg, nil)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBadgerStore_Contract(t *testing.T) {
	suite := &ingesttest.MetadataSuite{
		NewStore: func(t *testing.T) ingest.MetadataStore {
			return newTestBadger(t, BadgerConfig{InMemory: true})
		},
	}
	suite.Run(t)
}

func TestBadgerStore_RequiresPath(t *testing.T) {
	if _, err := NewBadgerStore(BadgerConfig{}, nil); err == nil {
		t.Fatal("NewBadgerStore() without path succeeded")
	}
}

func TestBadgerStore_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewBadgerStore(BadgerConfig{Path: dir}, nil)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	if err := store.Store(ctx, ingest.NewFileMetadata("id-1", "/a", 1, time.Now())); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened := newTestBadger(t, BadgerConfig{Path: dir})
	if _, err := reopened.Get(ctx, "id-1"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}
