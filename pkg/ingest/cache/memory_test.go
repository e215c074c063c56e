package cache

import (
	"context"
	"fmt"
	"testing"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/ingesttest"
)

func TestMemoryCache_Contract(t *testing.T) {
	suite := &ingesttest.CacheSuite{
		NewCache: func(t *testing.T) ingest.Cache {
			return NewMemoryCache(16)
		},
	}
	suite.Run(t)
}

func TestMemoryCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewMemoryCache(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := c.Put(ctx, fmt.Sprintf("k%d", i), []byte{byte(i)}); err != nil {
			t.Fatalf("Put() error = %v", err)
		}
	}

	// Touch k0 so k1 becomes the oldest.
	if _, ok, _ := c.Get(ctx, "k0"); !ok {
		t.Fatal("k0 missing before eviction")
	}
	if err := c.Put(ctx, "k3", []byte{3}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, ok, _ := c.Get(ctx, "k1"); ok {
		t.Error("k1 should have been evicted")
	}
	for _, k := range []string{"k0", "k2", "k3"} {
		if _, ok, _ := c.Get(ctx, k); !ok {
			t.Errorf("%s evicted unexpectedly", k)
		}
	}
	if c.Len() != 3 {
		t.Errorf("Len() = %d, want 3", c.Len())
	}
	if c.Evictions() != 1 {
		t.Errorf("Evictions() = %d, want 1", c.Evictions())
	}
}

func TestMemoryCache_DefaultSize(t *testing.T) {
	c := NewMemoryCache(0)
	ctx := context.Background()

	for i := 0; i <= DefaultMaxEntries; i++ {
		_ = c.Put(ctx, fmt.Sprintf("k%d", i), []byte{1})
	}
	if c.Len() != DefaultMaxEntries {
		t.Errorf("Len() = %d, want %d", c.Len(), DefaultMaxEntries)
	}
	if c.Evictions() != 1 {
		t.Errorf("Evictions() = %d, want 1", c.Evictions())
	}
}

func TestMemoryCache_OnlyCapacityDropsCountAsEvictions(t *testing.T) {
	c := NewMemoryCache(2)
	ctx := context.Background()

	_ = c.Put(ctx, "a", []byte("1"))
	_ = c.Put(ctx, "a", []byte("2"))
	_ = c.Put(ctx, "b", []byte("3"))
	_ = c.Remove(ctx, "b")

	if c.Evictions() != 0 {
		t.Errorf("Evictions() = %d after overwrite and remove, want 0", c.Evictions())
	}
	if got, _, _ := c.Get(ctx, "a"); string(got) != "2" {
		t.Errorf("Get(a) = %q, want overwritten value", got)
	}

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after Close = %d, want 0", c.Len())
	}
}

func TestMemoryCache_CopiesOnPut(t *testing.T) {
	c := NewMemoryCache(4)
	ctx := context.Background()

	buf := []byte("abc")
	_ = c.Put(ctx, "k", buf)
	buf[0] = 'z'

	got, _, _ := c.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("Get() = %q, want %q", got, "abc")
	}
}
