package ingesttest

import (
	"bytes"
	"context"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata-hq/strata/pkg/ingest"
)

// StorageSuite checks the ingest.Storage contract.
type StorageSuite struct {
	// NewStorage returns an empty backend. Cleanup is registered on t.
	NewStorage func(t *testing.T) ingest.Storage

	// SkipArchive disables the archive checks for backends without an
	// archive tier in the test environment.
	SkipArchive bool
}

// Run executes every storage contract test.
func (s *StorageSuite) Run(t *testing.T) {
	t.Run("RoundTrip", s.testRoundTrip)
	t.Run("RoundTripLargePayload", s.testRoundTripLarge)
	t.Run("StoreIsRepeatable", s.testStoreRepeatable)
	t.Run("StoreOverwritesDifferentContent", s.testStoreOverwrite)
	t.Run("RetrieveMissing", s.testRetrieveMissing)
	t.Run("Delete", s.testDelete)
	t.Run("DeleteMissing", s.testDeleteMissing)
	t.Run("EmptyPayload", s.testEmptyPayload)
	if !s.SkipArchive {
		t.Run("Archive", s.testArchive)
		t.Run("ArchiveMissing", s.testArchiveMissing)
	}
}

func (s *StorageSuite) testRoundTrip(t *testing.T) {
	store := s.NewStorage(t)
	ctx := context.Background()

	data := []byte("the quick brown fox")
	require.NoError(t, store.Store(ctx, "file-1", data, map[string]string{"content-type": "text/plain"}))

	got, err := store.Retrieve(ctx, "file-1")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func (s *StorageSuite) testRoundTripLarge(t *testing.T) {
	store := s.NewStorage(t)
	ctx := context.Background()

	data := make([]byte, 2_000_000)
	_, err := rand.Read(data)
	require.NoError(t, err)

	require.NoError(t, store.Store(ctx, "large", data, nil))

	got, err := store.Retrieve(ctx, "large")
	require.NoError(t, err)
	assert.True(t, bytes.Equal(data, got), "retrieved bytes differ from stored bytes")
}

func (s *StorageSuite) testStoreRepeatable(t *testing.T) {
	store := s.NewStorage(t)
	ctx := context.Background()

	data := []byte("retry me")
	require.NoError(t, store.Store(ctx, "again", data, nil))
	require.NoError(t, store.Store(ctx, "again", data, nil))

	got, err := store.Retrieve(ctx, "again")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func (s *StorageSuite) testStoreOverwrite(t *testing.T) {
	store := s.NewStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "doc", []byte("first"), nil))
	require.NoError(t, store.Store(ctx, "doc", []byte("second"), nil))

	got, err := store.Retrieve(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
}

func (s *StorageSuite) testRetrieveMissing(t *testing.T) {
	store := s.NewStorage(t)

	_, err := store.Retrieve(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}

func (s *StorageSuite) testDelete(t *testing.T) {
	store := s.NewStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "gone", []byte("bye"), nil))
	require.NoError(t, store.Delete(ctx, "gone"))

	_, err := store.Retrieve(ctx, "gone")
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}

func (s *StorageSuite) testDeleteMissing(t *testing.T) {
	store := s.NewStorage(t)

	err := store.Delete(context.Background(), "never-stored")
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}

func (s *StorageSuite) testEmptyPayload(t *testing.T) {
	store := s.NewStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "empty", []byte{}, nil))

	got, err := store.Retrieve(ctx, "empty")
	require.NoError(t, err)
	assert.Len(t, got, 0)
}

func (s *StorageSuite) testArchive(t *testing.T) {
	store := s.NewStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "old", []byte("cold data"), nil))
	require.NoError(t, store.Archive(ctx, "old"))

	_, err := store.Retrieve(ctx, "old")
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}

func (s *StorageSuite) testArchiveMissing(t *testing.T) {
	store := s.NewStorage(t)

	err := store.Archive(context.Background(), "never-stored")
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}
