package config

import (
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"storage.backend", cfg.Storage.Backend, DefaultStorageBackend},
		{"storage.enable_delete", cfg.Storage.EnableDelete, true},
		{"metadata.backend", cfg.Metadata.Backend, DefaultMetadataBackend},
		{"cache.max_entries", cfg.Cache.MaxEntries, 1024},
		{"journal.backend", cfg.Journal.Backend, DefaultJournalBackend},
		{"planner.workers", cfg.Planner.Workers, 4},
		{"planner.queue_size", cfg.Planner.QueueSize, 256},
		{"planner.file_size_threshold", cfg.Planner.FileSizeThreshold, int64(1048576)},
		{"planner.sync_store", cfg.Planner.SyncStore, false},
		{"retention.enabled", cfg.Retention.Enabled, true},
		{"retention.schedule", cfg.Retention.Schedule, "@every 1h"},
		{"watcher.enabled", cfg.Watcher.Enabled, false},
		{"watcher.readiness_checks", cfg.Watcher.ReadinessChecks, 5},
		{"watcher.readiness_interval", cfg.Watcher.ReadinessInterval, time.Second},
		{"watcher.delete_source", cfg.Watcher.DeleteSource, true},
		{"telemetry.logging.level", cfg.Telemetry.Logging.Level, "info"},
		{"telemetry.metrics.listen_address", cfg.Telemetry.Metrics.ListenAddress, "127.0.0.1:9876"},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Validate(Default()) error = %v", err)
	}
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	first := *cfg
	ApplyDefaults(cfg)

	if cfg.Storage.Backend != first.Storage.Backend || cfg.Planner.Workers != first.Planner.Workers {
		t.Error("ApplyDefaults changed an already-defaulted config")
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Planner.Workers = 16
	cfg.Storage.Backend = "memory"
	ApplyDefaults(cfg)

	if cfg.Planner.Workers != 16 {
		t.Errorf("planner.workers = %d, want 16", cfg.Planner.Workers)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("storage.backend = %q, want memory", cfg.Storage.Backend)
	}
}
