package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Probe states reported in Status.Status and CheckResult.Status.
const (
	StateOK        = "ok"
	StateUnhealthy = "unhealthy"
	StateReady     = "ready"
	StateDegraded  = "degraded"
)

// DefaultCheckTimeout bounds a single check when New is given zero.
const DefaultCheckTimeout = 5 * time.Second

var errCheckTimeout = errors.New("health check timeout")

// CheckFunc probes one component. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one CheckFunc.
type CheckResult struct {
	Status string `json:"status"`

	// Message carries the error of an unhealthy check.
	Message string `json:"message,omitempty"`

	// LatencyMS is how long the check ran, in milliseconds.
	LatencyMS float64 `json:"latency_ms"`
}

// Status is the body of a probe response.
type Status struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Checker runs named component checks for the readiness probe.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// New creates a Checker whose checks are each bounded by timeout.
func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Checker{checks: make(map[string]CheckFunc), timeout: timeout}
}

// RegisterCheck adds or replaces the check for component name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

// ListChecks returns the registered component names, sorted.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckLiveness reports that the process is up. It runs no checks.
func (c *Checker) CheckLiveness(context.Context) Status {
	return Status{Status: StateOK, Timestamp: time.Now()}
}

// CheckReadiness runs every check concurrently and reports StateReady only
// when all of them pass.
func (c *Checker) CheckReadiness(ctx context.Context) Status {
	names := c.ListChecks()

	c.mu.RLock()
	funcs := make([]CheckFunc, len(names))
	for i, name := range names {
		funcs[i] = c.checks[name]
	}
	c.mu.RUnlock()

	outcomes := make([]CheckResult, len(names))
	var wg sync.WaitGroup
	for i := range funcs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			outcomes[i] = c.run(ctx, funcs[i])
		}(i)
	}
	wg.Wait()

	st := Status{Status: StateReady, Checks: make(map[string]CheckResult, len(names)), Timestamp: time.Now()}
	for i, name := range names {
		st.Checks[name] = outcomes[i]
		if outcomes[i].Status != StateOK {
			st.Status = StateDegraded
		}
	}
	return st
}

// run executes check under the per-check timeout. A check that ignores its
// context is abandoned when the timeout fires.
func (c *Checker) run(ctx context.Context, check CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = errCheckTimeout
	}

	res := CheckResult{Status: StateOK, LatencyMS: float64(time.Since(start).Microseconds()) / 1000}
	if err != nil {
		res.Status = StateUnhealthy
		res.Message = err.Error()
	}
	return res
}
