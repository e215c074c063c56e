package metadata

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"strata-hq/strata/pkg/ingest"
)

// MemoryStore implements ingest.MetadataStore using an in-memory map.
type MemoryStore struct {
	records map[string]*ingest.FileMetadata
	mu      sync.RWMutex
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory metadata store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string]*ingest.FileMetadata),
		now:     time.Now,
	}
}

// Store implements ingest.MetadataStore.
func (s *MemoryStore) Store(ctx context.Context, meta *ingest.FileMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[meta.ID]; ok {
		return ingest.NewMetadataError("memory", "store", meta.ID, fmt.Errorf("record already exists"))
	}
	s.records[meta.ID] = meta.Clone()
	return nil
}

// Get implements ingest.MetadataStore.
func (s *MemoryStore) Get(ctx context.Context, id string) (*ingest.FileMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.records[id]
	if !ok {
		return nil, ingest.NewMetadataError("memory", "get", id, ingest.NewNotFoundError("metadata", id))
	}
	return m.Clone(), nil
}

// Delete implements ingest.MetadataStore.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	return nil
}

// GetAllFiles implements ingest.MetadataStore.
func (s *MemoryStore) GetAllFiles(ctx context.Context) ([]*ingest.FileMetadata, error) {
	s.mu.RLock()
	out := make([]*ingest.FileMetadata, 0, len(s.records))
	for _, m := range s.records {
		out = append(out, m.Clone())
	}
	s.mu.RUnlock()

	sortByCreation(out)
	return out, nil
}

// DeleteAll implements ingest.MetadataStore.
func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*ingest.FileMetadata)
	return nil
}

// Update implements ingest.MetadataStore.
func (s *MemoryStore) Update(ctx context.Context, meta *ingest.FileMetadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.records[meta.ID]
	if !ok {
		return ingest.NewMetadataError("memory", "update", meta.ID, ingest.NewNotFoundError("metadata", meta.ID))
	}
	next := meta.Clone()
	next.CreatedAt = cur.CreatedAt
	next.Plan = cur.Plan
	next.Stages = cur.Stages
	next.LastModified = s.now().UTC()
	s.records[meta.ID] = next
	return nil
}

// Close implements ingest.MetadataStore.
func (s *MemoryStore) Close() error { return nil }

func sortByCreation(files []*ingest.FileMetadata) {
	sort.SliceStable(files, func(i, j int) bool {
		if files[i].CreatedAt.Equal(files[j].CreatedAt) {
			return files[i].ID < files[j].ID
		}
		return files[i].CreatedAt.Before(files[j].CreatedAt)
	})
}
