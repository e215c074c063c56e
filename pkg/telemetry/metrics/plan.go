package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlanMetrics tracks plan executions.
//
// Metrics:
//   - strata_plan_executions_total: Executions by plan and status
//   - strata_plan_duration_seconds: Execution duration including the retry
//   - strata_plan_retries_total: Executions that needed a second attempt
type PlanMetrics struct {
	executionsTotal *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	retriesTotal    *prometheus.CounterVec
}

// NewPlanMetrics creates and registers plan metrics with the provided registry.
func NewPlanMetrics(cfg Config, registry *prometheus.Registry) *PlanMetrics {
	pm := &PlanMetrics{
		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plan_executions_total",
				Help:      "Total number of plan executions",
			},
			[]string{"plan", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plan_duration_seconds",
				Help:      "Duration of plan executions in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"plan"},
		),

		retriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "plan_retries_total",
				Help:      "Total number of plan executions that were retried",
			},
			[]string{"plan"},
		),
	}

	registry.MustRegister(
		pm.executionsTotal,
		pm.duration,
		pm.retriesTotal,
	)

	return pm
}

// RecordExecution records one plan execution.
func (pm *PlanMetrics) RecordExecution(plan, status string, attempts int, duration time.Duration) {
	pm.executionsTotal.WithLabelValues(plan, status).Inc()
	pm.duration.WithLabelValues(plan).Observe(duration.Seconds())
	if attempts > 1 {
		pm.retriesTotal.WithLabelValues(plan).Inc()
	}
}
