package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"strata-hq/strata/pkg/ingest"
)

// ErrExecutorClosed is returned by Submit after Close.
var ErrExecutorClosed = errors.New("executor closed")

// maxAttempts is one initial run plus one retry.
const maxAttempts = 2

// Config contains configuration for the plan executor.
type Config struct {
	// Workers is the number of plans executed concurrently.
	// Default: 4
	Workers int

	// QueueSize is the capacity of the pending job queue. Submit blocks
	// while the queue is full.
	// Default: 256
	QueueSize int

	// AttemptTimeout bounds a single attempt. Zero means no bound.
	AttemptTimeout time.Duration

	// RetryDelay is the pause between the failed attempt and the retry.
	RetryDelay time.Duration
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{
		Workers:   4,
		QueueSize: 256,
	}
}

// Job is one plan execution request.
type Job struct {
	Plan     *Plan
	ID       string
	Payload  []byte
	Metadata map[string]string

	// OnComplete, when set, is called from the worker goroutine with the
	// final result before it is delivered on the result channel.
	OnComplete func(Result)
}

// Result is the outcome of a job after all attempts.
type Result struct {
	ID       string
	Plan     string
	Output   []byte
	Attempts int
	Duration time.Duration
	Err      error
}

// OK reports whether the job succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Observer receives one call per finished job. The metrics collector
// implements it.
type Observer interface {
	ObservePlan(plan string, attempts int, duration time.Duration, err error)
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithObserver registers an Observer.
func WithObserver(o Observer) ExecutorOption {
	return func(e *Executor) { e.observer = o }
}

type queued struct {
	job    Job
	result chan Result
}

// Executor runs plans on a fixed pool of workers. Every job is attempted at
// most twice. Submitted jobs run to completion; there is no cancellation.
type Executor struct {
	config   Config
	journal  ingest.Journal
	observer Observer
	logger   *slog.Logger

	jobs chan *queued
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewExecutor starts an executor. journal receives an entry for each job
// that fails after its retry; it may be nil.
func NewExecutor(config Config, journal ingest.Journal, logger *slog.Logger, opts ...ExecutorOption) *Executor {
	defaults := DefaultConfig()
	if config.Workers <= 0 {
		config.Workers = defaults.Workers
	}
	if config.QueueSize <= 0 {
		config.QueueSize = defaults.QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	e := &Executor{
		config:  config,
		journal: journal,
		logger:  logger.With("component", "plan.executor"),
		jobs:    make(chan *queued, config.QueueSize),
	}
	for _, opt := range opts {
		opt(e)
	}

	for i := 0; i < config.Workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}

	e.logger.Info("plan executor started",
		"workers", config.Workers,
		"queue_size", config.QueueSize,
	)
	return e
}

// Submit enqueues job and returns a channel that receives exactly one
// Result. ctx bounds only the wait for queue space.
func (e *Executor) Submit(ctx context.Context, job Job) (<-chan Result, error) {
	if job.Plan == nil {
		return nil, ingest.NewPlanError("submit", job.ID, errors.New("nil plan"))
	}

	q := &queued{job: job, result: make(chan Result, 1)}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ingest.NewPlanError("submit", job.ID, ErrExecutorClosed)
	}

	select {
	case e.jobs <- q:
		e.logger.Debug("plan enqueued", "id", job.ID, "plan", job.Plan.Name())
		return q.result, nil
	case <-ctx.Done():
		return nil, ingest.NewPlanError("submit", job.ID, ctx.Err())
	}
}

// Run executes job synchronously on the calling goroutine with the same
// retry and journaling behavior as a submitted job.
func (e *Executor) Run(ctx context.Context, job Job) Result {
	return e.execute(ctx, job)
}

// Close stops accepting jobs, waits for every queued job to finish and
// stops the workers. It is safe to call more than once.
func (e *Executor) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	close(e.jobs)
	e.mu.Unlock()

	e.logger.Info("shutting down plan executor")
	e.wg.Wait()
	e.logger.Info("plan executor shut down complete")
	return nil
}

func (e *Executor) worker(n int) {
	defer e.wg.Done()

	for q := range e.jobs {
		res := e.execute(context.Background(), q.job)
		q.result <- res
		close(q.result)
	}
	e.logger.Debug("worker stopped", "worker", n)
}

func (e *Executor) execute(ctx context.Context, job Job) Result {
	start := time.Now()
	res := Result{ID: job.ID, Plan: job.Plan.Name()}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		res.Attempts = attempt
		res.Output, res.Err = e.attempt(ctx, job)
		if res.Err == nil {
			break
		}

		if attempt == maxAttempts || !retryable(res.Err) || ctx.Err() != nil {
			break
		}

		e.logger.Warn("plan attempt failed, retrying",
			"id", job.ID,
			"plan", job.Plan.Name(),
			"error", res.Err,
		)
		if e.config.RetryDelay > 0 {
			select {
			case <-time.After(e.config.RetryDelay):
			case <-ctx.Done():
			}
		}
	}
	res.Duration = time.Since(start)

	if res.Err != nil {
		e.fail(job, res)
	} else {
		e.logger.Debug("plan executed",
			"id", job.ID,
			"plan", job.Plan.Name(),
			"attempts", res.Attempts,
			"duration", res.Duration,
		)
	}

	if e.observer != nil {
		e.observer.ObservePlan(res.Plan, res.Attempts, res.Duration, res.Err)
	}
	if job.OnComplete != nil {
		job.OnComplete(res)
	}
	return res
}

// retryable reports whether a failed attempt may succeed when repeated.
func retryable(err error) bool {
	var cfgErr *ingest.ConfigError
	return !errors.As(err, &cfgErr) && !errors.Is(err, ingest.ErrNotFound)
}

func (e *Executor) attempt(ctx context.Context, job Job) ([]byte, error) {
	if e.config.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.AttemptTimeout)
		defer cancel()
	}
	return job.Plan.Execute(ctx, job.ID, job.Payload, job.Metadata)
}

func (e *Executor) fail(job Job, res Result) {
	e.logger.Error("plan execution failed",
		"id", job.ID,
		"plan", job.Plan.Name(),
		"attempts", res.Attempts,
		"error", res.Err,
	)
	if e.journal == nil {
		return
	}
	msg := fmt.Sprintf("Plan execution failed: %s (ID: %s): %v", job.Plan.Name(), job.ID, res.Err)
	if err := e.journal.Log(context.Background(), msg); err != nil {
		e.logger.Error("failed to journal plan failure", "id", job.ID, "error", err)
	}
}
