package config

import "time"

// Default values for configuration fields.
const (
	// Storage defaults
	DefaultStorageBackend   = "local"
	DefaultStorageLocalPath = "data/objects"
	DefaultS3Region         = "us-east-1"

	// Metadata defaults
	DefaultMetadataBackend      = "sqlite"
	DefaultSQLitePath           = "data/metadata.db"
	DefaultSQLiteMaxOpenConns   = 10
	DefaultSQLiteMaxIdleConns   = 5
	DefaultSQLiteBusyTimeout    = 5 * time.Second
	DefaultPostgresPort         = 5432
	DefaultPostgresSSLMode      = "require"
	DefaultPostgresMaxOpenConns = 10
	DefaultBadgerPath           = "data/metadata.badger"

	// Cache defaults
	DefaultCacheBackend    = "memory"
	DefaultCacheMaxEntries = 1024
	DefaultRedisURL        = "redis://localhost:6379/0"
	DefaultRedisKeyPrefix  = "strata:cache:"

	// Journal defaults
	DefaultJournalBackend    = "file"
	DefaultJournalFilePath   = "data/journal.log"
	DefaultJournalSQLitePath = "data/journal.db"

	// Planner defaults
	DefaultPlannerWorkers           = 4
	DefaultPlannerQueueSize         = 256
	DefaultPlannerFileSizeThreshold = int64(1048576)

	// Retention defaults
	DefaultRetentionSchedule   = "@every 1h"
	DefaultRetentionPolicyName = "default"

	// Watcher defaults
	DefaultWatcherReadinessChecks   = 5
	DefaultWatcherReadinessInterval = time.Second

	// Telemetry defaults
	DefaultLoggingLevel         = "info"
	DefaultLoggingFormat        = "json"
	DefaultMetricsListenAddress = "127.0.0.1:9876"
	DefaultMetricsPath          = "/metrics"
	DefaultMetricsNamespace     = "strata"
)

// Default returns a configuration with every default applied, including
// the boolean switches that default to true. LoadConfig decodes the file on
// top of it, so keys absent from the file keep these values.
func Default() *Config {
	cfg := &Config{}
	cfg.Storage.EnableDelete = true
	cfg.Retention.Enabled = true
	cfg.Watcher.DeleteSource = true
	cfg.Telemetry.Logging.Redact = true
	cfg.Telemetry.Metrics.Enabled = true
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults sets defaults for any fields that have zero values.
// It is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Storage
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.Local.Path == "" {
		cfg.Storage.Local.Path = DefaultStorageLocalPath
	}
	if cfg.Storage.S3.Region == "" {
		cfg.Storage.S3.Region = DefaultS3Region
	}

	// Metadata
	if cfg.Metadata.Backend == "" {
		cfg.Metadata.Backend = DefaultMetadataBackend
	}
	if cfg.Metadata.SQLite.Path == "" {
		cfg.Metadata.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Metadata.SQLite.MaxOpenConns == 0 {
		cfg.Metadata.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	if cfg.Metadata.SQLite.MaxIdleConns == 0 {
		cfg.Metadata.SQLite.MaxIdleConns = DefaultSQLiteMaxIdleConns
	}
	if cfg.Metadata.SQLite.BusyTimeout == 0 {
		cfg.Metadata.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if cfg.Metadata.Postgres.Port == 0 {
		cfg.Metadata.Postgres.Port = DefaultPostgresPort
	}
	if cfg.Metadata.Postgres.SSLMode == "" {
		cfg.Metadata.Postgres.SSLMode = DefaultPostgresSSLMode
	}
	if cfg.Metadata.Postgres.MaxOpenConns == 0 {
		cfg.Metadata.Postgres.MaxOpenConns = DefaultPostgresMaxOpenConns
	}
	if cfg.Metadata.Badger.Path == "" {
		cfg.Metadata.Badger.Path = DefaultBadgerPath
	}

	// Cache
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.MaxEntries == 0 {
		cfg.Cache.MaxEntries = DefaultCacheMaxEntries
	}
	if cfg.Cache.Redis.URL == "" {
		cfg.Cache.Redis.URL = DefaultRedisURL
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// Journal
	if cfg.Journal.Backend == "" {
		cfg.Journal.Backend = DefaultJournalBackend
	}
	if cfg.Journal.File.Path == "" {
		cfg.Journal.File.Path = DefaultJournalFilePath
	}
	if cfg.Journal.SQLite.Path == "" {
		cfg.Journal.SQLite.Path = DefaultJournalSQLitePath
	}
	if cfg.Journal.SQLite.BusyTimeout == 0 {
		cfg.Journal.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}

	// Planner
	if cfg.Planner.Workers == 0 {
		cfg.Planner.Workers = DefaultPlannerWorkers
	}
	if cfg.Planner.QueueSize == 0 {
		cfg.Planner.QueueSize = DefaultPlannerQueueSize
	}
	if cfg.Planner.FileSizeThreshold == 0 {
		cfg.Planner.FileSizeThreshold = DefaultPlannerFileSizeThreshold
	}

	// Retention
	if cfg.Retention.Schedule == "" {
		cfg.Retention.Schedule = DefaultRetentionSchedule
	}
	if cfg.Retention.Policy.Name == "" {
		cfg.Retention.Policy.Name = DefaultRetentionPolicyName
	}

	// Watcher
	if cfg.Watcher.ReadinessChecks == 0 {
		cfg.Watcher.ReadinessChecks = DefaultWatcherReadinessChecks
	}
	if cfg.Watcher.ReadinessInterval == 0 {
		cfg.Watcher.ReadinessInterval = DefaultWatcherReadinessInterval
	}

	// Telemetry
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.ListenAddress == "" {
		cfg.Telemetry.Metrics.ListenAddress = DefaultMetricsListenAddress
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
}
