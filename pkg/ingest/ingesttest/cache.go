package ingesttest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata-hq/strata/pkg/ingest"
)

// CacheSuite checks the ingest.Cache contract.
type CacheSuite struct {
	NewCache func(t *testing.T) ingest.Cache
}

// Run executes every cache contract test.
func (s *CacheSuite) Run(t *testing.T) {
	t.Run("PutGet", s.testPutGet)
	t.Run("Miss", s.testMiss)
	t.Run("Overwrite", s.testOverwrite)
	t.Run("Remove", s.testRemove)
	t.Run("RemoveIsIdempotent", s.testRemoveIdempotent)
}

func (s *CacheSuite) testPutGet(t *testing.T) {
	c := s.NewCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "a", []byte("alpha")))
	got, ok, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("alpha"), got)
}

func (s *CacheSuite) testMiss(t *testing.T) {
	c := s.NewCache(t)

	got, ok, err := c.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func (s *CacheSuite) testOverwrite(t *testing.T) {
	c := s.NewCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", []byte("v1")))
	require.NoError(t, c.Put(ctx, "k", []byte("v2")))

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v2"), got)
}

func (s *CacheSuite) testRemove(t *testing.T) {
	c := s.NewCache(t)
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, "k", []byte("v")))
	require.NoError(t, c.Remove(ctx, "k"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func (s *CacheSuite) testRemoveIdempotent(t *testing.T) {
	c := s.NewCache(t)
	ctx := context.Background()

	assert.NoError(t, c.Remove(ctx, "never-there"))
	assert.NoError(t, c.Remove(ctx, "never-there"))
}
