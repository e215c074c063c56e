package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/cache"
	"strata-hq/strata/pkg/ingest/journal"
	"strata-hq/strata/pkg/ingest/metadata"
	"strata-hq/strata/pkg/ingest/storage"
	"strata-hq/strata/pkg/plan"
	"strata-hq/strata/pkg/retention"
)

var errInjected = errors.New("injected failure")

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// faultyStorage wraps MemoryStorage with injectable failures.
type faultyStorage struct {
	*storage.MemoryStorage

	mu          sync.Mutex
	failStores  int
	storeCalls  int
	failDeletes map[string]bool
}

func newFaultyStorage() *faultyStorage {
	return &faultyStorage{MemoryStorage: storage.NewMemoryStorage(), failDeletes: map[string]bool{}}
}

func (f *faultyStorage) Store(ctx context.Context, id string, data []byte, meta map[string]string) error {
	f.mu.Lock()
	f.storeCalls++
	fail := f.storeCalls <= f.failStores
	f.mu.Unlock()
	if fail {
		return ingest.NewStorageError("faulty", "store", id, errInjected)
	}
	return f.MemoryStorage.Store(ctx, id, data, meta)
}

func (f *faultyStorage) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	fail := f.failDeletes[id]
	f.mu.Unlock()
	if fail {
		return ingest.NewStorageError("faulty", "delete", id, errInjected)
	}
	return f.MemoryStorage.Delete(ctx, id)
}

// gatedMetadata blocks GetAllFiles until release is closed.
type gatedMetadata struct {
	*metadata.MemoryStore
	entered chan struct{}
	release chan struct{}
}

func (g *gatedMetadata) GetAllFiles(ctx context.Context) ([]*ingest.FileMetadata, error) {
	close(g.entered)
	<-g.release
	return g.MemoryStore.GetAllFiles(ctx)
}

type fixture struct {
	planner  *Planner
	storage  *faultyStorage
	metadata ingest.MetadataStore
	cache    *cache.MemoryCache
	journal  *journal.MemoryJournal
	clock    *clock
}

type fixtureOpts struct {
	config   Config
	rules    []retention.Rule
	metadata ingest.MetadataStore
	decision func(*plan.Factory) plan.DecisionMaker
	factory  []plan.FactoryOption
}

func newFixture(t *testing.T, o fixtureOpts) *fixture {
	t.Helper()

	f := &fixture{
		storage:  newFaultyStorage(),
		metadata: o.metadata,
		cache:    cache.NewMemoryCache(cache.DefaultMaxEntries),
		journal:  journal.NewMemoryJournal(),
		clock:    newClock(),
	}
	if f.metadata == nil {
		f.metadata = metadata.NewMemoryStore()
	}

	policy, err := retention.NewPolicy("test", "", o.rules...)
	if err != nil {
		t.Fatalf("NewPolicy() error = %v", err)
	}

	factory := plan.NewFactory(f.storage, o.factory...)
	var dm plan.DecisionMaker
	if o.decision != nil {
		dm = o.decision(factory)
	}

	exec := plan.NewExecutor(plan.DefaultConfig(), f.journal, nil)
	t.Cleanup(func() { exec.Close() })

	p, err := New(o.config, Deps{
		Storage:  f.storage,
		Metadata: f.metadata,
		Executor: exec,
		Cache:    f.cache,
		Journal:  f.journal,
		Factory:  factory,
		Decision: dm,
		Policy:   policy,
	}, WithClock(f.clock.Now))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	f.planner = p
	return f
}

func syncConfig() Config {
	cfg := DefaultConfig()
	cfg.SyncStore = true
	return cfg
}

func (f *fixture) journalMatching(t *testing.T, substr string) []ingest.JournalEntry {
	t.Helper()
	entries, err := f.journal.Search(context.Background(), substr)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	return entries
}

func payload(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i * 31)
	}
	return b
}
