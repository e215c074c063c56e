package ingesttest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata-hq/strata/pkg/ingest"
)

// MetadataSuite checks the ingest.MetadataStore contract.
type MetadataSuite struct {
	// NewStore returns an empty metadata store. Cleanup is registered on t.
	NewStore func(t *testing.T) ingest.MetadataStore
}

// Run executes every metadata contract test.
func (s *MetadataSuite) Run(t *testing.T) {
	t.Run("StoreAndGet", s.testStoreAndGet)
	t.Run("GetMissing", s.testGetMissing)
	t.Run("Delete", s.testDelete)
	t.Run("DeleteMissing", s.testDeleteMissing)
	t.Run("GetAllFilesOrdered", s.testGetAllFiles)
	t.Run("DeleteAll", s.testDeleteAll)
	t.Run("UpdatePreservesCreation", s.testUpdate)
	t.Run("UpdateMissing", s.testUpdateMissing)
	t.Run("PlanAndStages", s.testPlanAndStages)
}

func sample(id string, created time.Time) *ingest.FileMetadata {
	m := ingest.NewFileMetadata(id, "/incoming/"+id+".bin", 1024, created)
	m.ContentType = "application/octet-stream"
	return m
}

func (s *MetadataSuite) testStoreAndGet(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Millisecond)
	m := sample("9f1c2f5e-0000-4000-8000-000000000001", created)
	require.NoError(t, store.Store(ctx, m))

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, m.Path, got.Path)
	assert.Equal(t, m.Size, got.Size)
	assert.Equal(t, m.ContentType, got.ContentType)
	assert.True(t, m.CreatedAt.Equal(got.CreatedAt), "CreatedAt = %v, want %v", got.CreatedAt, m.CreatedAt)
}

func (s *MetadataSuite) testGetMissing(t *testing.T) {
	store := s.NewStore(t)

	_, err := store.Get(context.Background(), "9f1c2f5e-0000-4000-8000-0000000000ff")
	require.Error(t, err)
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}

func (s *MetadataSuite) testDelete(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	m := sample("9f1c2f5e-0000-4000-8000-000000000002", time.Now())
	require.NoError(t, store.Store(ctx, m))
	require.NoError(t, store.Delete(ctx, m.ID))

	_, err := store.Get(ctx, m.ID)
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}

func (s *MetadataSuite) testDeleteMissing(t *testing.T) {
	store := s.NewStore(t)
	assert.NoError(t, store.Delete(context.Background(), "9f1c2f5e-0000-4000-8000-0000000000fe"))
}

func (s *MetadataSuite) testGetAllFiles(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Millisecond)
	// Insert out of order.
	for _, i := range []int{3, 1, 2} {
		id := fmt.Sprintf("9f1c2f5e-0000-4000-8000-00000000010%d", i)
		require.NoError(t, store.Store(ctx, sample(id, base.Add(time.Duration(i)*time.Minute))))
	}

	all, err := store.GetAllFiles(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.Before(all[i-1].CreatedAt), "files not ordered by creation time")
	}
}

func (s *MetadataSuite) testDeleteAll(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("9f1c2f5e-0000-4000-8000-00000000020%d", i)
		require.NoError(t, store.Store(ctx, sample(id, time.Now())))
	}
	require.NoError(t, store.DeleteAll(ctx))

	all, err := store.GetAllFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func (s *MetadataSuite) testUpdate(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	created := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Millisecond)
	m := sample("9f1c2f5e-0000-4000-8000-000000000300", created)
	m.Plan = "complex"
	m.Stages = []string{"gzip"}
	require.NoError(t, store.Store(ctx, m))

	changed := m.Clone()
	changed.Path = "/renamed.bin"
	changed.ContentType = "text/plain"
	changed.CreatedAt = time.Now().UTC()
	changed.Size = 7
	changed.Plan = "store"
	changed.Stages = nil
	require.NoError(t, store.Update(ctx, changed))

	got, err := store.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "/renamed.bin", got.Path)
	assert.Equal(t, "text/plain", got.ContentType)
	assert.True(t, created.Equal(got.CreatedAt), "CreatedAt changed on update: %v", got.CreatedAt)
	assert.True(t, got.LastModified.After(created), "LastModified not advanced")
	assert.Equal(t, "complex", got.Plan, "Update rewrote the plan")
	assert.Equal(t, []string{"gzip"}, got.Stages, "Update rewrote the stages")
}

func (s *MetadataSuite) testUpdateMissing(t *testing.T) {
	store := s.NewStore(t)

	err := store.Update(context.Background(), sample("9f1c2f5e-0000-4000-8000-0000000003ff", time.Now()))
	assert.ErrorIs(t, err, ingest.ErrNotFound)
}

func (s *MetadataSuite) testPlanAndStages(t *testing.T) {
	store := s.NewStore(t)
	ctx := context.Background()

	staged := sample("9f1c2f5e-0000-4000-8000-000000000400", time.Now())
	staged.Plan = "complex"
	staged.Stages = []string{"gzip", "reverse"}
	plain := sample("9f1c2f5e-0000-4000-8000-000000000401", time.Now())
	plain.Plan = "store"
	require.NoError(t, store.Store(ctx, staged))
	require.NoError(t, store.Store(ctx, plain))

	got, err := store.Get(ctx, staged.ID)
	require.NoError(t, err)
	assert.Equal(t, "complex", got.Plan)
	assert.Equal(t, []string{"gzip", "reverse"}, got.Stages)

	got, err = store.Get(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, "store", got.Plan)
	assert.Empty(t, got.Stages)

	all, err := store.GetAllFiles(ctx)
	require.NoError(t, err)
	for _, m := range all {
		if m.ID == staged.ID {
			assert.Equal(t, []string{"gzip", "reverse"}, m.Stages)
		}
	}
}
