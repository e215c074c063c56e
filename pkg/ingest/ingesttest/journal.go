package ingesttest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata-hq/strata/pkg/ingest"
)

// JournalSuite checks the ingest.Journal contract.
type JournalSuite struct {
	NewJournal func(t *testing.T) ingest.Journal
}

// Run executes every journal contract test.
func (s *JournalSuite) Run(t *testing.T) {
	t.Run("AppendOrder", s.testAppendOrder)
	t.Run("Search", s.testSearch)
	t.Run("Since", s.testSince)
	t.Run("CountAndClear", s.testCountAndClear)
}

func (s *JournalSuite) testAppendOrder(t *testing.T) {
	j := s.NewJournal(t)
	ctx := context.Background()

	msgs := []string{"first", "second", "third"}
	for _, m := range msgs {
		require.NoError(t, j.Log(ctx, m))
	}

	entries, err := j.Entries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, len(msgs))
	for i, e := range entries {
		assert.Equal(t, msgs[i], e.Message)
		assert.False(t, e.Timestamp.IsZero())
	}
}

func (s *JournalSuite) testSearch(t *testing.T) {
	j := s.NewJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Log(ctx, "File deleted: a"))
	require.NoError(t, j.Log(ctx, "File archived: b"))
	require.NoError(t, j.Log(ctx, "File deleted: c"))

	found, err := j.Search(ctx, "deleted")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "File deleted: a", found[0].Message)
	assert.Equal(t, "File deleted: c", found[1].Message)
}

func (s *JournalSuite) testSince(t *testing.T) {
	j := s.NewJournal(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, j.LogAt(ctx, base, "old"))
	require.NoError(t, j.LogAt(ctx, base.Add(time.Hour), "newer"))
	require.NoError(t, j.LogAt(ctx, base.Add(2*time.Hour), "newest"))

	got, err := j.Since(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "newer", got[0].Message)
	assert.True(t, got[0].Timestamp.Equal(base.Add(time.Hour)))
}

func (s *JournalSuite) testCountAndClear(t *testing.T) {
	j := s.NewJournal(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		require.NoError(t, j.Log(ctx, "entry"))
	}
	n, err := j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	require.NoError(t, j.Clear(ctx))
	n, err = j.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
