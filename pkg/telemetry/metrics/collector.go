package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"strata-hq/strata/pkg/ingest"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled turns recording on. A disabled collector still registers its
	// metrics so the endpoint stays scrapeable.
	Enabled bool

	// Namespace prefixes every metric name (default "strata").
	Namespace string

	// Subsystem is an optional second prefix.
	Subsystem string

	// DurationBuckets are the histogram buckets for plan and sweep
	// durations, in seconds.
	DurationBuckets []float64

	// SizeBuckets are the histogram buckets for file sizes, in bytes.
	SizeBuckets []float64
}

// Collector records plan, file and sweep metrics. It satisfies
// plan.Observer, planner.Metrics and watcher.Metrics.
type Collector struct {
	config   Config
	registry *prometheus.Registry

	plans  *PlanMetrics
	files  *FileMetrics
	sweeps *SweepMetrics
}

// NewCollector creates a new metrics collector with the specified
// configuration. If registry is nil, a fresh registry is created.
//
// Example:
//
//	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
//	exec := plan.NewExecutor(plan.DefaultConfig(), journal, logger, plan.WithObserver(collector))
func NewCollector(cfg Config, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "strata"
	}
	if len(cfg.DurationBuckets) == 0 {
		// 1ms - 10s
		cfg.DurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10}
	}
	if len(cfg.SizeBuckets) == 0 {
		// 1KB to 64MB
		cfg.SizeBuckets = prometheus.ExponentialBuckets(1024, 4, 9)
	}

	return &Collector{
		config:   cfg,
		registry: registry,
		plans:    NewPlanMetrics(cfg, registry),
		files:    NewFileMetrics(cfg, registry),
		sweeps:   NewSweepMetrics(cfg, registry),
	}
}

// ObservePlan records one finished plan execution.
func (c *Collector) ObservePlan(plan string, attempts int, duration time.Duration, err error) {
	if !c.config.Enabled {
		return
	}
	c.plans.RecordExecution(plan, status(err), attempts, duration)
}

// ObserveStore records the outcome of storing a file.
func (c *Collector) ObserveStore(plan string, bytes int, err error) {
	if !c.config.Enabled {
		return
	}
	c.files.RecordStore(plan, status(err), bytes)
}

// ObserveRetrieve records a retrieval and whether the cache served it.
func (c *Collector) ObserveRetrieve(cacheHit bool, err error) {
	if !c.config.Enabled {
		return
	}
	source := "backend"
	if cacheHit {
		source = "cache"
	}
	c.files.RecordRetrieve(source, status(err))
}

// ObserveSweep records a completed retention sweep.
func (c *Collector) ObserveSweep(duration time.Duration, archived, deleted, failed int) {
	if !c.config.Enabled {
		return
	}
	c.sweeps.RecordSweep(duration, archived, deleted, failed)
}

// IncSweepSkipped counts a sweep refused because another was running.
func (c *Collector) IncSweepSkipped() {
	if !c.config.Enabled {
		return
	}
	c.sweeps.RecordSkipped()
}

// ObserveIngest records a file picked up by the directory watcher.
func (c *Collector) ObserveIngest(err error) {
	if !c.config.Enabled {
		return
	}
	c.files.RecordIngest(status(err))
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// status maps an error onto a bounded label value.
func status(err error) string {
	var cfgErr *ingest.ConfigError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ingest.ErrNotFound):
		return "not_found"
	case errors.As(err, &cfgErr):
		return "config"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "error"
	}
}
