package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/cache"
	"strata-hq/strata/pkg/ingest/journal"
	"strata-hq/strata/pkg/plan"
	"strata-hq/strata/pkg/retention"
)

// Config holds planner behavior switches.
type Config struct {
	// SyncStore makes StoreFile wait for plan execution and return its error.
	SyncStore bool

	// EnableDelete allows retention DELETE decisions to remove backend
	// objects. When false the backend object is kept and only metadata,
	// cache and journal are updated.
	EnableDelete bool
}

// DefaultConfig returns the default planner configuration.
func DefaultConfig() Config {
	return Config{EnableDelete: true}
}

// Deps are the collaborators of a Planner. Storage, Metadata and Executor
// are required.
type Deps struct {
	Storage  ingest.Storage
	Metadata ingest.MetadataStore
	Executor *plan.Executor

	// Cache defaults to an in-memory LRU.
	Cache ingest.Cache

	// Journal defaults to an in-memory journal.
	Journal ingest.Journal

	// Factory defaults to plan.NewFactory(Storage).
	Factory *plan.Factory

	// Decision defaults to a size decision maker over Factory.
	Decision plan.DecisionMaker

	// Policy defaults to an empty policy that never reclaims anything.
	Policy *retention.Policy

	Metrics Metrics
	Logger  *slog.Logger
}

// Metrics receives planner events. The Prometheus collector implements it.
type Metrics interface {
	ObserveStore(plan string, bytes int, err error)
	ObserveRetrieve(cacheHit bool, err error)
	ObserveSweep(duration time.Duration, archived, deleted, failed int)
	IncSweepSkipped()
}

type nopMetrics struct{}

func (nopMetrics) ObserveStore(string, int, error) {}
func (nopMetrics) ObserveRetrieve(bool, error) {}
func (nopMetrics) ObserveSweep(time.Duration, int, int, int) {}
func (nopMetrics) IncSweepSkipped() {}

// Planner coordinates storage, metadata, cache and journal.
type Planner struct {
	config   Config
	storage  ingest.Storage
	metadata ingest.MetadataStore
	cache    ingest.Cache
	journal  ingest.Journal
	factory  *plan.Factory
	decision plan.DecisionMaker
	executor *plan.Executor
	policy   *retention.Policy
	metrics  Metrics
	logger   *slog.Logger

	newID func() string
	now   func() time.Time

	sweeping atomic.Bool
}

// Option customizes a Planner.
type Option func(*Planner)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Planner) { p.now = now }
}

// WithIDGenerator replaces the UUID generator.
func WithIDGenerator(newID func() string) Option {
	return func(p *Planner) { p.newID = newID }
}

// New builds a Planner.
func New(cfg Config, deps Deps, opts ...Option) (*Planner, error) {
	switch {
	case deps.Storage == nil:
		return nil, ingest.NewConfigError("planner.storage", "storage backend is required")
	case deps.Metadata == nil:
		return nil, ingest.NewConfigError("planner.metadata", "metadata store is required")
	case deps.Executor == nil:
		return nil, ingest.NewConfigError("planner.executor", "plan executor is required")
	}

	if deps.Cache == nil {
		deps.Cache = cache.NewMemoryCache(cache.DefaultMaxEntries)
	}
	if deps.Journal == nil {
		deps.Journal = journal.NewMemoryJournal()
	}
	if deps.Factory == nil {
		deps.Factory = plan.NewFactory(deps.Storage)
	}
	if deps.Decision == nil {
		deps.Decision = plan.NewSizeDecisionMaker(deps.Factory, plan.DefaultFileSizeThreshold)
	}
	if deps.Policy == nil {
		deps.Policy, _ = retention.NewPolicy("none", "never reclaims")
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	p := &Planner{
		config:   cfg,
		storage:  deps.Storage,
		metadata: deps.Metadata,
		cache:    deps.Cache,
		journal:  deps.Journal,
		factory:  deps.Factory,
		decision: deps.Decision,
		executor: deps.Executor,
		policy:   deps.Policy,
		metrics:  deps.Metrics,
		logger:   deps.Logger.With("component", "planner"),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Policy returns the retention policy in use.
func (p *Planner) Policy() *retention.Policy { return p.policy }

// StoreFile ingests data under a fresh identifier.
//
// Errors before the plan is submitted (plan construction, metadata write,
// submission) are returned and leave no metadata behind. Errors during
// execution are journaled, compensated, and reported through the Receipt;
// with SyncStore they are also returned.
func (p *Planner) StoreFile(ctx context.Context, path string, data []byte, attrs map[string]string) (*Receipt, error) {
	id := p.newID()
	meta := ingest.NewFileMetadata(id, path, int64(len(data)), p.now())
	meta.ContentType = detectContentType(path, data)

	pl, err := p.choosePlan(meta)
	if err != nil {
		return nil, ingest.NewPlanError("construct", id, err)
	}
	// Reads replay what was recorded here, not the current decision.
	meta.Plan = pl.Name()
	meta.Stages = pl.Stages()

	if err := p.metadata.Store(ctx, meta); err != nil {
		return nil, fmt.Errorf("store metadata for %s: %w", path, err)
	}

	receipt := newReceipt(id, pl.Name())
	job := plan.Job{
		Plan:     pl,
		ID:       id,
		Payload:  data,
		Metadata: attrs,
		OnComplete: func(res plan.Result) {
			receipt.finish(p.completeStore(meta, data, res))
		},
	}

	if _, err := p.executor.Submit(ctx, job); err != nil {
		p.compensate(id, false)
		return nil, err
	}

	p.logger.Debug("store submitted", "id", id, "path", path, "size", len(data), "plan", pl.Name())

	if p.config.SyncStore {
		return receipt, receipt.Wait(ctx)
	}
	return receipt, nil
}

// completeStore runs on the executor worker once the plan has finished.
func (p *Planner) completeStore(meta *ingest.FileMetadata, data []byte, res plan.Result) error {
	ctx := context.Background()
	p.metrics.ObserveStore(res.Plan, len(data), res.Err)

	if res.Err != nil {
		p.compensate(meta.ID, true)
		return ingest.NewPlanError("execute", meta.ID, res.Err)
	}

	p.journalf(ctx, "File storage plan executed: %s (ID: %s)", meta.Path, meta.ID)
	if err := p.cache.Put(ctx, meta.ID, data); err != nil {
		p.logger.Warn("failed to populate cache", "id", meta.ID, "error", err)
	}
	return nil
}

// compensate removes what a failed store left behind. Failures are logged.
func (p *Planner) compensate(id string, evictCache bool) {
	ctx := context.Background()
	if err := p.metadata.Delete(ctx, id); err != nil {
		p.logger.Error("failed to delete metadata after store failure", "id", id, "error", err)
	}
	if evictCache {
		if err := p.cache.Remove(ctx, id); err != nil {
			p.logger.Warn("failed to evict cache after store failure", "id", id, "error", err)
		}
	}
}

// RetrieveFile returns the bytes stored under id. A missing identifier
// yields an error matching ingest.ErrNotFound.
func (p *Planner) RetrieveFile(ctx context.Context, id string) ([]byte, error) {
	data, hit, err := p.cache.Get(ctx, id)
	if err != nil {
		p.logger.Warn("cache lookup failed", "id", id, "error", err)
	}
	if hit {
		p.metrics.ObserveRetrieve(true, nil)
		return data, nil
	}

	data, err = p.retrieve(ctx, id)
	p.metrics.ObserveRetrieve(false, err)
	if err != nil {
		return nil, err
	}

	if err := p.cache.Put(ctx, id, data); err != nil {
		p.logger.Warn("failed to populate cache", "id", id, "error", err)
	}
	return data, nil
}

func (p *Planner) retrieve(ctx context.Context, id string) ([]byte, error) {
	meta, err := p.metadata.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	readPlan, err := p.readPlan(meta)
	if err != nil {
		return nil, ingest.NewPlanError("construct", id, err)
	}

	// Reads run inline. A miss is the caller's answer, not an execution
	// failure worth journaling or retrying.
	return readPlan.Execute(ctx, id, nil, nil)
}

// readPlan builds the read path from the plan and stages recorded at store
// time. Records written before plans were recorded fall back to the current
// decision.
func (p *Planner) readPlan(meta *ingest.FileMetadata) (*plan.Plan, error) {
	if meta.Plan != "" {
		return p.factory.ReadPlanFor(meta.Plan, meta.Stages)
	}

	pl, err := p.choosePlan(meta)
	if err != nil {
		return nil, err
	}
	readPlan := pl.ReadPlan()
	if readPlan == nil {
		return nil, fmt.Errorf("plan %s has no read path", pl.Name())
	}
	return readPlan, nil
}

// DeleteFile removes a file from the backend, metadata and cache.
func (p *Planner) DeleteFile(ctx context.Context, id string) error {
	if _, err := p.metadata.Get(ctx, id); err != nil {
		return err
	}

	res := p.executor.Run(ctx, plan.Job{Plan: p.factory.DeletePlan(), ID: id})
	if res.Err != nil && !errors.Is(res.Err, ingest.ErrNotFound) {
		return res.Err
	}

	if err := p.metadata.Delete(ctx, id); err != nil {
		return err
	}
	if err := p.cache.Remove(ctx, id); err != nil {
		p.logger.Warn("failed to evict cache", "id", id, "error", err)
	}
	p.journalf(ctx, "File deleted: %s", id)
	return nil
}

// ListFiles returns all known files ordered by creation time.
func (p *Planner) ListFiles(ctx context.Context) ([]*ingest.FileMetadata, error) {
	return p.metadata.GetAllFiles(ctx)
}

// choosePlan asks the DecisionMaker for a plan and turns a panic in a
// custom strategy into an error.
func (p *Planner) choosePlan(meta *ingest.FileMetadata) (pl *plan.Plan, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decision maker panic: %v", r)
		}
	}()

	pl, err = p.decision.ChoosePlan(meta)
	if err == nil && pl == nil {
		err = errors.New("decision maker returned no plan")
	}
	return pl, err
}

func (p *Planner) journalf(ctx context.Context, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if err := p.journal.Log(ctx, msg); err != nil {
		p.logger.Error("failed to write journal entry", "message", msg, "error", err)
	}
}

func detectContentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	if len(data) == 0 {
		return ""
	}
	return http.DetectContentType(data)
}
