package config

import (
	"time"

	"strata-hq/strata/pkg/retention"
)

// Config is the root configuration structure for strata.
// It is loaded once at startup and passed to each component constructor.
type Config struct {
	// Storage selects and configures the object storage backend.
	Storage StorageConfig `yaml:"storage"`

	// Metadata selects and configures the file metadata store.
	Metadata MetadataConfig `yaml:"metadata"`

	// Cache selects and configures the read-through cache.
	Cache CacheConfig `yaml:"cache"`

	// Journal selects and configures the audit journal.
	Journal JournalConfig `yaml:"journal"`

	// Planner contains plan selection and execution settings.
	Planner PlannerConfig `yaml:"planner"`

	// Retention contains the retention policy and sweep schedule.
	Retention RetentionConfig `yaml:"retention"`

	// Watcher contains directory ingestion settings.
	Watcher WatcherConfig `yaml:"watcher"`

	// Telemetry contains logging and metrics settings.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// StorageConfig contains object storage configuration.
type StorageConfig struct {
	// Backend is the storage backend.
	// Options: "local", "s3", "memory"
	// Default: "local"
	Backend string `yaml:"backend" validate:"oneof=local s3 memory"`

	// EnableDelete allows retention sweeps to delete backend objects. When
	// false a DELETE decision only forgets the file.
	// Default: true
	EnableDelete bool `yaml:"enable_delete"`

	// Local contains local filesystem settings.
	Local LocalStorageConfig `yaml:"local"`

	// S3 contains S3 settings.
	S3 S3StorageConfig `yaml:"s3"`
}

// LocalStorageConfig contains local filesystem storage configuration.
type LocalStorageConfig struct {
	// Path is the root directory for stored objects.
	// Default: "data/objects"
	Path string `yaml:"path"`

	// ArchivePath receives archived objects.
	// Default: "<path>/archive"
	ArchivePath string `yaml:"archive_path"`
}

// S3StorageConfig contains S3 storage configuration.
type S3StorageConfig struct {
	// Bucket is the bucket for live objects. Required for the s3 backend.
	Bucket string `yaml:"bucket"`

	// ArchiveBucket receives archived objects. When empty, archived objects
	// stay in Bucket with the GLACIER storage class.
	ArchiveBucket string `yaml:"archive_bucket"`

	// KeyPrefix is prepended to every object key.
	KeyPrefix string `yaml:"key_prefix"`

	// Region is the AWS region.
	// Default: "us-east-1"
	Region string `yaml:"region"`

	// Endpoint overrides the S3 endpoint for S3-compatible services.
	Endpoint string `yaml:"endpoint" validate:"omitempty,url"`

	// AccessKeyID and SecretAccessKey set static credentials. When empty the
	// default AWS credential chain applies.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`

	// ForcePathStyle uses path-style addressing.
	ForcePathStyle bool `yaml:"force_path_style"`
}

// MetadataConfig contains metadata store configuration.
type MetadataConfig struct {
	// Backend is the metadata backend.
	// Options: "memory", "sqlite", "postgres", "badger"
	// Default: "sqlite"
	Backend string `yaml:"backend" validate:"oneof=memory sqlite postgres badger"`

	// SQLite contains SQLite settings.
	SQLite SQLiteConfig `yaml:"sqlite"`

	// Postgres contains PostgreSQL settings.
	Postgres PostgresConfig `yaml:"postgres"`

	// Badger contains Badger settings.
	Badger BadgerConfig `yaml:"badger"`
}

// SQLiteConfig contains SQLite database configuration.
type SQLiteConfig struct {
	// Path is the database file path.
	// Default: "data/metadata.db"
	Path string `yaml:"path"`

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns" validate:"gte=0"`

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns" validate:"gte=0"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" validate:"gte=0"`
}

// PostgresConfig contains PostgreSQL database configuration.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gte=0,lte=65535"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`

	// SSLMode is the lib/pq sslmode.
	// Options: "disable", "require", "verify-ca", "verify-full"
	// Default: "require"
	SSLMode string `yaml:"ssl_mode" validate:"omitempty,oneof=disable require verify-ca verify-full"`

	// MaxOpenConns caps the connection pool.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns" validate:"gte=0"`
}

// BadgerConfig contains Badger configuration.
type BadgerConfig struct {
	// Path is the database directory.
	// Default: "data/metadata.badger"
	Path string `yaml:"path"`

	// InMemory keeps the database in memory only.
	InMemory bool `yaml:"in_memory"`
}

// CacheConfig contains cache configuration.
type CacheConfig struct {
	// Backend is the cache backend.
	// Options: "memory", "redis"
	// Default: "memory"
	Backend string `yaml:"backend" validate:"oneof=memory redis"`

	// MaxEntries bounds the memory cache.
	// Default: 1024
	MaxEntries int `yaml:"max_entries" validate:"gte=0"`

	// Redis contains Redis settings.
	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig contains Redis cache configuration.
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL.
	// Default: "redis://localhost:6379/0"
	URL string `yaml:"url"`

	// KeyPrefix namespaces cache keys.
	// Default: "strata:cache:"
	KeyPrefix string `yaml:"key_prefix"`

	// TTL expires cached entries. Zero disables expiry.
	TTL time.Duration `yaml:"ttl" validate:"gte=0"`
}

// JournalConfig contains audit journal configuration.
type JournalConfig struct {
	// Backend is the journal backend.
	// Options: "memory", "file", "sqlite"
	// Default: "file"
	Backend string `yaml:"backend" validate:"oneof=memory file sqlite"`

	// File contains settings for the line-oriented file journal.
	File FileJournalConfig `yaml:"file"`

	// SQLite contains settings for the SQLite journal.
	SQLite SQLiteJournalConfig `yaml:"sqlite"`
}

// FileJournalConfig contains file journal configuration.
type FileJournalConfig struct {
	// Path is the journal file.
	// Default: "data/journal.log"
	Path string `yaml:"path"`
}

// SQLiteJournalConfig contains SQLite journal configuration.
type SQLiteJournalConfig struct {
	// Path is the database file path.
	// Default: "data/journal.db"
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout" validate:"gte=0"`
}

// PlannerConfig contains plan selection and execution configuration.
type PlannerConfig struct {
	// Workers is the number of concurrent plan executions.
	// Default: 4
	Workers int `yaml:"workers" validate:"gte=1,lte=1024"`

	// QueueSize is the pending job capacity.
	// Default: 256
	QueueSize int `yaml:"queue_size" validate:"gte=1"`

	// FileSizeThreshold is the size in bytes above which files take the
	// complex plan.
	// Default: 1048576
	FileSizeThreshold int64 `yaml:"file_size_threshold" validate:"gte=1"`

	// ComplexStages are the transforms run before storing large files, in
	// order. Options: "gzip", "reverse"
	ComplexStages []string `yaml:"complex_stages" validate:"dive,oneof=gzip reverse"`

	// SyncStore makes store calls wait for plan execution.
	// Default: false
	SyncStore bool `yaml:"sync_store"`

	// AttemptTimeout bounds a single plan attempt. Zero means unbounded.
	AttemptTimeout time.Duration `yaml:"attempt_timeout" validate:"gte=0"`

	// RetryDelay is the pause before the single retry.
	RetryDelay time.Duration `yaml:"retry_delay" validate:"gte=0"`
}

// RetentionConfig contains retention configuration.
type RetentionConfig struct {
	// Enabled turns on scheduled sweeps.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Schedule is a cron expression or descriptor.
	// Default: "@every 1h"
	Schedule string `yaml:"schedule"`

	// SweepOnStart runs one sweep when the daemon starts.
	SweepOnStart bool `yaml:"sweep_on_start"`

	// RulesFile is a YAML or JSON policy document. When set it replaces Policy.
	RulesFile string `yaml:"rules_file"`

	// Policy is the inline retention policy.
	Policy PolicyConfig `yaml:"policy"`
}

// PolicyConfig is an inline retention policy.
type PolicyConfig struct {
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Rules       []retention.Rule `yaml:"rules"`
}

// WatcherConfig contains directory ingestion configuration.
type WatcherConfig struct {
	// Enabled starts the watcher in daemon mode.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Directory is the watched directory. Required when enabled.
	Directory string `yaml:"directory" validate:"required_if=Enabled true"`

	// ReadinessChecks is how many times a new file is checked for a stable
	// size before it is ingested.
	// Default: 5
	ReadinessChecks int `yaml:"readiness_checks" validate:"gte=1"`

	// ReadinessInterval is the pause between readiness checks.
	// Default: 1s
	ReadinessInterval time.Duration `yaml:"readiness_interval" validate:"gt=0"`

	// DeleteSource removes the source file after a successful store.
	// Default: true
	DeleteSource bool `yaml:"delete_source"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level to emit.
	// Options: "debug", "info", "warn", "error"
	// Default: "info"
	Level string `yaml:"level" validate:"oneof=debug info warn error"`

	// Format controls the log output format.
	// Options: "json", "text"
	// Default: "json"
	Format string `yaml:"format" validate:"oneof=json text"`

	// AddSource includes file and line number in log entries.
	AddSource bool `yaml:"add_source"`

	// Redact masks credentials in log attributes.
	// Default: true
	Redact bool `yaml:"redact"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled exposes the metrics endpoint in daemon mode.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the metrics HTTP listen address.
	// Default: "127.0.0.1:9876"
	ListenAddress string `yaml:"listen_address" validate:"required_if=Enabled true"`

	// Path is the metrics endpoint path.
	// Default: "/metrics"
	Path string `yaml:"path" validate:"startswith=/"`

	// Namespace prefixes every metric name.
	// Default: "strata"
	Namespace string `yaml:"namespace"`
}
