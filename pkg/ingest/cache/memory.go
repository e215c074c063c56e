package cache

import (
	"context"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru"
)

// DefaultMaxEntries bounds the memory cache when no size is configured.
const DefaultMaxEntries = 1024

// MemoryCache is a least-recently-used ingest.Cache bounded by entry count.
// Entries are copied on the way in and out.
type MemoryCache struct {
	items     *lru.Cache
	evictions atomic.Int64
}

// NewMemoryCache creates a cache holding at most maxEntries items.
// A non-positive maxEntries selects DefaultMaxEntries.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	// lru.New only fails for a non-positive size.
	items, _ := lru.New(maxEntries)
	return &MemoryCache{items: items}
}

// Get implements ingest.Cache.
func (c *MemoryCache) Get(ctx context.Context, id string) ([]byte, bool, error) {
	v, ok := c.items.Get(id)
	if !ok {
		return nil, false, nil
	}
	data := v.([]byte)
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

// Put implements ingest.Cache.
func (c *MemoryCache) Put(ctx context.Context, id string, data []byte) error {
	buf := make([]byte, len(data))
	copy(buf, data)

	if c.items.Add(id, buf) {
		c.evictions.Add(1)
	}
	return nil
}

// Remove implements ingest.Cache.
func (c *MemoryCache) Remove(ctx context.Context, id string) error {
	c.items.Remove(id)
	return nil
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int { return c.items.Len() }

// Evictions returns the number of entries dropped to respect the size bound.
// Explicit removals are not counted.
func (c *MemoryCache) Evictions() int64 { return c.evictions.Load() }

// Close implements ingest.Cache.
func (c *MemoryCache) Close() error {
	c.items.Purge()
	return nil
}
