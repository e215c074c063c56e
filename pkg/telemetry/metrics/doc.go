// Package metrics provides Prometheus metrics for strata.
//
// # Metrics Categories
//
//   - Plan Metrics: executions by plan and status, duration, retries
//   - File Metrics: stores, stored bytes, size histogram, retrievals by
//     source, watcher ingests
//   - Sweep Metrics: sweep count and duration, reclaimed files by action,
//     failures, skipped sweeps
//
// # Usage
//
//	collector := metrics.NewCollector(metrics.Config{Enabled: true, Namespace: "strata"}, nil)
//
//	// The collector is the executor's observer and the planner's metrics sink.
//	exec := plan.NewExecutor(cfg, journal, logger, plan.WithObserver(collector))
//	p, err := planner.New(planner.DefaultConfig(), planner.Deps{..., Metrics: collector})
//
//	// Expose the endpoint.
//	mux.Handle("/metrics", collector.Handler())
//
// Status labels are bounded: success, not_found, config, canceled, error.
package metrics
