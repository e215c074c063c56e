// Package telemetry groups the observability packages used by strata.
//
// # Components
//
//   - logging: slog construction with credential redaction and context fields
//   - metrics: Prometheus collector for plans, files and sweeps
//   - health: liveness and readiness probes over component checks
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "info", Format: "json", Redact: true})
//	collector := metrics.NewCollector(metrics.Config{Enabled: true}, nil)
//	mux.Handle("/metrics", collector.Handler())
package telemetry
