package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FileMetrics tracks stores, retrievals and watcher ingests.
//
// Metrics:
//   - strata_files_stored_total: Stores by plan and status
//   - strata_stored_bytes_total: Bytes successfully stored
//   - strata_file_size_bytes: Size histogram of stored files
//   - strata_retrievals_total: Retrievals by source (cache, backend) and status
//   - strata_ingested_files_total: Files picked up by the watcher
type FileMetrics struct {
	storedTotal     *prometheus.CounterVec
	storedBytes     prometheus.Counter
	sizeBytes       prometheus.Histogram
	retrievalsTotal *prometheus.CounterVec
	ingestedTotal   *prometheus.CounterVec
}

// NewFileMetrics creates and registers file metrics with the provided registry.
func NewFileMetrics(cfg Config, registry *prometheus.Registry) *FileMetrics {
	fm := &FileMetrics{
		storedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "files_stored_total",
				Help:      "Total number of store requests",
			},
			[]string{"plan", "status"},
		),

		storedBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "stored_bytes_total",
				Help:      "Total number of bytes stored",
			},
		),

		sizeBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "file_size_bytes",
				Help:      "Size of stored files in bytes",
				Buckets:   cfg.SizeBuckets,
			},
		),

		retrievalsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retrievals_total",
				Help:      "Total number of retrievals",
			},
			[]string{"source", "status"},
		),

		ingestedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "ingested_files_total",
				Help:      "Total number of files ingested from the watched directory",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		fm.storedTotal,
		fm.storedBytes,
		fm.sizeBytes,
		fm.retrievalsTotal,
		fm.ingestedTotal,
	)

	return fm
}

// RecordStore records a store outcome. Sizes are only counted on success.
func (fm *FileMetrics) RecordStore(plan, status string, bytes int) {
	fm.storedTotal.WithLabelValues(plan, status).Inc()
	if status == "success" {
		fm.storedBytes.Add(float64(bytes))
		fm.sizeBytes.Observe(float64(bytes))
	}
}

// RecordRetrieve records a retrieval.
func (fm *FileMetrics) RecordRetrieve(source, status string) {
	fm.retrievalsTotal.WithLabelValues(source, status).Inc()
}

// RecordIngest records a watcher ingest.
func (fm *FileMetrics) RecordIngest(status string) {
	fm.ingestedTotal.WithLabelValues(status).Inc()
}
