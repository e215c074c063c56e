package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics tracks retention sweeps.
//
// Metrics:
//   - strata_sweeps_total: Completed sweeps
//   - strata_sweep_duration_seconds: Sweep duration histogram
//   - strata_reclaimed_files_total: Files reclaimed by action (archive, delete)
//   - strata_sweep_failures_total: Per-file failures during sweeps
//   - strata_sweeps_skipped_total: Sweeps refused because one was running
//   - strata_last_sweep_timestamp_seconds: Unix time of the last completed sweep
type SweepMetrics struct {
	sweepsTotal    prometheus.Counter
	duration       prometheus.Histogram
	reclaimedTotal *prometheus.CounterVec
	failuresTotal  prometheus.Counter
	skippedTotal   prometheus.Counter
	lastSweep      prometheus.Gauge
}

// NewSweepMetrics creates and registers sweep metrics with the provided registry.
func NewSweepMetrics(cfg Config, registry *prometheus.Registry) *SweepMetrics {
	sm := &SweepMetrics{
		sweepsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "sweeps_total",
			Help:      "Total number of completed retention sweeps",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "sweep_duration_seconds",
			Help:      "Duration of retention sweeps in seconds",
			Buckets:   cfg.DurationBuckets,
		}),
		reclaimedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "reclaimed_files_total",
			Help:      "Total number of files reclaimed by retention",
		}, []string{"action"}),
		failuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "sweep_failures_total",
			Help:      "Total number of files a sweep failed to reclaim",
		}),
		skippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "sweeps_skipped_total",
			Help:      "Total number of sweeps skipped because one was in progress",
		}),
		lastSweep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "last_sweep_timestamp_seconds",
			Help:      "Unix timestamp of the last completed sweep",
		}),
	}

	registry.MustRegister(
		sm.sweepsTotal,
		sm.duration,
		sm.reclaimedTotal,
		sm.failuresTotal,
		sm.skippedTotal,
		sm.lastSweep,
	)

	return sm
}

// RecordSweep records a completed sweep.
func (sm *SweepMetrics) RecordSweep(duration time.Duration, archived, deleted, failed int) {
	sm.sweepsTotal.Inc()
	sm.duration.Observe(duration.Seconds())
	sm.reclaimedTotal.WithLabelValues("archive").Add(float64(archived))
	sm.reclaimedTotal.WithLabelValues("delete").Add(float64(deleted))
	sm.failuresTotal.Add(float64(failed))
	sm.lastSweep.SetToCurrentTime()
}

// RecordSkipped counts a skipped sweep.
func (sm *SweepMetrics) RecordSkipped() {
	sm.skippedTotal.Inc()
}
