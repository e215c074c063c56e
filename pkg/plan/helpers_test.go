package plan

import (
	"context"
	"errors"
	"sync"
	"time"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/storage"
)

var errInjected = errors.New("injected failure")

// flakyStorage fails the first failStores Store calls, then delegates.
type flakyStorage struct {
	*storage.MemoryStorage

	mu         sync.Mutex
	failStores int
	storeCalls int
}

func newFlakyStorage(failStores int) *flakyStorage {
	return &flakyStorage{MemoryStorage: storage.NewMemoryStorage(), failStores: failStores}
}

func (f *flakyStorage) Store(ctx context.Context, id string, data []byte, meta map[string]string) error {
	f.mu.Lock()
	f.storeCalls++
	fail := f.storeCalls <= f.failStores
	f.mu.Unlock()
	if fail {
		return ingest.NewStorageError("flaky", "store", id, errInjected)
	}
	return f.MemoryStorage.Store(ctx, id, data, meta)
}

func (f *flakyStorage) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.storeCalls
}

// recordingAction appends its name to a shared log when executed.
type recordingAction struct {
	name string
	log  *[]string
	err  error
}

func (r *recordingAction) Kind() Kind { return KindTransform }

func (r *recordingAction) Execute(_ context.Context, _ string, payload []byte, _ map[string]string) ([]byte, error) {
	*r.log = append(*r.log, r.name)
	if r.err != nil {
		return nil, r.err
	}
	return append(payload, r.name...), nil
}

type observation struct {
	plan     string
	attempts int
	err      error
}

type recordingObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (r *recordingObserver) ObservePlan(plan string, attempts int, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.obs = append(r.obs, observation{plan: plan, attempts: attempts, err: err})
}
