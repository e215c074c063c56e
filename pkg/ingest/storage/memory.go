package storage

import (
	"context"
	"sync"

	"strata-hq/strata/pkg/ingest"
)

type memoryObject struct {
	data   []byte
	digest string
	meta   map[string]string
}

// MemoryStorage is an in-process ingest.Storage.
type MemoryStorage struct {
	mu       sync.RWMutex
	objects  map[string]*memoryObject
	archived map[string]*memoryObject
	writes   int
}

// NewMemoryStorage creates an empty in-memory store.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects:  make(map[string]*memoryObject),
		archived: make(map[string]*memoryObject),
	}
}

// Name implements ingest.Storage.
func (m *MemoryStorage) Name() string { return "memory" }

// Store implements ingest.Storage.
func (m *MemoryStorage) Store(ctx context.Context, id string, data []byte, meta map[string]string) error {
	if err := ctx.Err(); err != nil {
		return ingest.NewStorageError("memory", "store", id, err)
	}
	if err := validateID(id); err != nil {
		return ingest.NewStorageError("memory", "store", id, err)
	}

	digest := Digest(data)

	m.mu.Lock()
	defer m.mu.Unlock()

	if obj, ok := m.objects[id]; ok && obj.digest == digest {
		return nil
	}

	buf := make([]byte, len(data))
	copy(buf, data)
	copied := make(map[string]string, len(meta))
	for k, v := range meta {
		copied[k] = v
	}
	m.objects[id] = &memoryObject{data: buf, digest: digest, meta: copied}
	m.writes++
	return nil
}

// Retrieve implements ingest.Storage.
func (m *MemoryStorage) Retrieve(ctx context.Context, id string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, ingest.NewStorageError("memory", "retrieve", id, err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[id]
	if !ok {
		return nil, ingest.NewStorageError("memory", "retrieve", id, ingest.NewNotFoundError("object", id))
	}
	out := make([]byte, len(obj.data))
	copy(out, obj.data)
	return out, nil
}

// Delete implements ingest.Storage.
func (m *MemoryStorage) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return ingest.NewStorageError("memory", "delete", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.objects[id]; !ok {
		return ingest.NewStorageError("memory", "delete", id, ingest.NewNotFoundError("object", id))
	}
	delete(m.objects, id)
	return nil
}

// Archive implements ingest.Storage.
func (m *MemoryStorage) Archive(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return ingest.NewStorageError("memory", "archive", id, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[id]
	if !ok {
		return ingest.NewStorageError("memory", "archive", id, ingest.NewNotFoundError("object", id))
	}
	m.archived[id] = obj
	delete(m.objects, id)
	return nil
}

// IsArchived reports whether id sits in the archive tier.
func (m *MemoryStorage) IsArchived(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.archived[id]
	return ok
}

// Writes returns the number of physical writes performed. Repeated stores of
// identical content do not count.
func (m *MemoryStorage) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// Len returns the number of live (non-archived) objects.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
