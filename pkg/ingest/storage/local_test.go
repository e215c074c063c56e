package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/ingesttest"
)

func newTestLocal(t *testing.T) (*LocalStorage, string) {
	t.Helper()

	dir := t.TempDir()
	s, err := NewLocalStorage(LocalConfig{Path: dir}, nil)
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}
	return s, dir
}

func TestLocalStorage_Contract(t *testing.T) {
	suite := &ingesttest.StorageSuite{
		NewStorage: func(t *testing.T) ingest.Storage {
			s, _ := newTestLocal(t)
			return s
		},
	}
	suite.Run(t)
}

func TestLocalStorage_RequiresPath(t *testing.T) {
	_, err := NewLocalStorage(LocalConfig{}, nil)
	if err == nil {
		t.Fatal("NewLocalStorage() with empty path succeeded")
	}
	if _, ok := err.(*ingest.ConfigError); !ok {
		t.Errorf("error type = %T, want *ingest.ConfigError", err)
	}
}

func TestLocalStorage_ArchiveLayout(t *testing.T) {
	s, dir := newTestLocal(t)
	ctx := context.Background()

	if err := s.Store(ctx, "id-1", []byte("cold"), nil); err != nil {
		t.Fatalf("Store() error = %v", err)
	}
	if err := s.Archive(ctx, "id-1"); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	archived, err := os.ReadFile(filepath.Join(dir, "archive", "id-1"))
	if err != nil {
		t.Fatalf("archived object missing: %v", err)
	}
	if string(archived) != "cold" {
		t.Errorf("archived content = %q, want %q", archived, "cold")
	}
	if _, err := os.Stat(filepath.Join(dir, "id-1")); !os.IsNotExist(err) {
		t.Error("live object still present after archive")
	}
}

func TestLocalStorage_IdenticalStoreSkipsWrite(t *testing.T) {
	s, dir := newTestLocal(t)
	ctx := context.Background()

	if err := s.Store(ctx, "id-1", []byte("same"), nil); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	path := filepath.Join(dir, "id-1")
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatalf("Chtimes() error = %v", err)
	}

	if err := s.Store(ctx, "id-1", []byte("same"), nil); err != nil {
		t.Fatalf("second Store() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Errorf("object rewritten on identical store: mtime %v, want %v", info.ModTime(), past)
	}
}

func TestLocalStorage_TornWriteIsRepaired(t *testing.T) {
	s, dir := newTestLocal(t)
	ctx := context.Background()

	// Object file present but no sidecar: a previous attempt died mid-way.
	if err := os.WriteFile(filepath.Join(dir, "id-1"), []byte("par"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if err := s.Store(ctx, "id-1", []byte("partial no more"), nil); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	got, err := s.Retrieve(ctx, "id-1")
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if string(got) != "partial no more" {
		t.Errorf("Retrieve() = %q, want %q", got, "partial no more")
	}
}

func TestLocalStorage_NoTempFilesLeft(t *testing.T) {
	s, dir := newTestLocal(t)

	if err := s.Store(context.Background(), "id-1", []byte("data"), nil); err != nil {
		t.Fatalf("Store() error = %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, ".tmp-*"))
	if err != nil {
		t.Fatalf("Glob() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("temp files left behind: %v", matches)
	}
}
