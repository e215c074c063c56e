package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"strata-hq/strata/pkg/retention"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STRATA_"

// LoadConfig loads configuration from a YAML file at the specified path.
// Keys missing from the file keep their defaults. The result is validated.
// Environment variables are not consulted; use LoadConfigWithEnvOverrides
// for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and applies defaults to anything the
// document zeroed. It does not validate.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	ApplyDefaults(cfg)
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention STRATA_SECTION_FIELD (e.g., STRATA_STORAGE_BACKEND) and always
// take precedence over the file. An empty path skips the file and starts
// from defaults.
//
// The loading sequence is:
// 1. Default values
// 2. YAML file
// 3. Environment variable overrides
// 4. Validation
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if cfg, err = Parse(data); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// envSource looks up an environment variable.
type envSource func(key string) (string, bool)

// envOverrides applies lookups and collects conversion errors.
type envOverrides struct {
	lookup envSource
	errs   []FieldError
}

func (e *envOverrides) get(name string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + name)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envOverrides) str(name string, dst *string) {
	if v, ok := e.get(name); ok {
		*dst = v
	}
}

func (e *envOverrides) boolean(name string, dst *bool) {
	if v, ok := e.get(name); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = b
	}
}

func (e *envOverrides) integer(name string, dst *int) {
	if v, ok := e.get(name); ok {
		i, err := strconv.Atoi(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = i
	}
}

func (e *envOverrides) int64(name string, dst *int64) {
	if v, ok := e.get(name); ok {
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = i
	}
}

func (e *envOverrides) duration(name string, dst *time.Duration) {
	if v, ok := e.get(name); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(name, err)
			return
		}
		*dst = d
	}
}

func (e *envOverrides) list(name string, dst *[]string) {
	if v, ok := e.get(name); ok {
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		*dst = out
	}
}

func (e *envOverrides) fail(name string, err error) {
	e.errs = append(e.errs, FieldError{
		Field:   EnvPrefix + name,
		Message: fmt.Sprintf("invalid value: %v", err),
	})
}

// applyEnvOverrides applies STRATA_* overrides to cfg. Malformed values are
// reported rather than ignored.
func applyEnvOverrides(cfg *Config, lookup envSource) error {
	e := &envOverrides{lookup: lookup}

	// Storage
	e.str("STORAGE_BACKEND", &cfg.Storage.Backend)
	e.boolean("STORAGE_ENABLE_DELETE", &cfg.Storage.EnableDelete)
	e.str("STORAGE_LOCAL_PATH", &cfg.Storage.Local.Path)
	e.str("STORAGE_LOCAL_ARCHIVE_PATH", &cfg.Storage.Local.ArchivePath)
	e.str("STORAGE_S3_BUCKET", &cfg.Storage.S3.Bucket)
	e.str("STORAGE_S3_ARCHIVE_BUCKET", &cfg.Storage.S3.ArchiveBucket)
	e.str("STORAGE_S3_KEY_PREFIX", &cfg.Storage.S3.KeyPrefix)
	e.str("STORAGE_S3_REGION", &cfg.Storage.S3.Region)
	e.str("STORAGE_S3_ENDPOINT", &cfg.Storage.S3.Endpoint)
	e.str("STORAGE_S3_ACCESS_KEY_ID", &cfg.Storage.S3.AccessKeyID)
	e.str("STORAGE_S3_SECRET_ACCESS_KEY", &cfg.Storage.S3.SecretAccessKey)
	e.boolean("STORAGE_S3_FORCE_PATH_STYLE", &cfg.Storage.S3.ForcePathStyle)

	// Metadata
	e.str("METADATA_BACKEND", &cfg.Metadata.Backend)
	e.str("METADATA_SQLITE_PATH", &cfg.Metadata.SQLite.Path)
	e.str("METADATA_POSTGRES_HOST", &cfg.Metadata.Postgres.Host)
	e.integer("METADATA_POSTGRES_PORT", &cfg.Metadata.Postgres.Port)
	e.str("METADATA_POSTGRES_DATABASE", &cfg.Metadata.Postgres.Database)
	e.str("METADATA_POSTGRES_USER", &cfg.Metadata.Postgres.User)
	e.str("METADATA_POSTGRES_PASSWORD", &cfg.Metadata.Postgres.Password)
	e.str("METADATA_POSTGRES_SSL_MODE", &cfg.Metadata.Postgres.SSLMode)
	e.str("METADATA_BADGER_PATH", &cfg.Metadata.Badger.Path)

	// Cache
	e.str("CACHE_BACKEND", &cfg.Cache.Backend)
	e.integer("CACHE_MAX_ENTRIES", &cfg.Cache.MaxEntries)
	e.str("CACHE_REDIS_URL", &cfg.Cache.Redis.URL)
	e.str("CACHE_REDIS_KEY_PREFIX", &cfg.Cache.Redis.KeyPrefix)
	e.duration("CACHE_REDIS_TTL", &cfg.Cache.Redis.TTL)

	// Journal
	e.str("JOURNAL_BACKEND", &cfg.Journal.Backend)
	e.str("JOURNAL_FILE_PATH", &cfg.Journal.File.Path)
	e.str("JOURNAL_SQLITE_PATH", &cfg.Journal.SQLite.Path)

	// Planner
	e.integer("PLANNER_WORKERS", &cfg.Planner.Workers)
	e.integer("PLANNER_QUEUE_SIZE", &cfg.Planner.QueueSize)
	e.int64("PLANNER_FILE_SIZE_THRESHOLD", &cfg.Planner.FileSizeThreshold)
	e.list("PLANNER_COMPLEX_STAGES", &cfg.Planner.ComplexStages)
	e.boolean("PLANNER_SYNC_STORE", &cfg.Planner.SyncStore)
	e.duration("PLANNER_ATTEMPT_TIMEOUT", &cfg.Planner.AttemptTimeout)
	e.duration("PLANNER_RETRY_DELAY", &cfg.Planner.RetryDelay)

	// Retention
	e.boolean("RETENTION_ENABLED", &cfg.Retention.Enabled)
	e.str("RETENTION_SCHEDULE", &cfg.Retention.Schedule)
	e.boolean("RETENTION_SWEEP_ON_START", &cfg.Retention.SweepOnStart)
	e.str("RETENTION_RULES_FILE", &cfg.Retention.RulesFile)

	// Watcher
	e.boolean("WATCHER_ENABLED", &cfg.Watcher.Enabled)
	e.str("WATCHER_DIRECTORY", &cfg.Watcher.Directory)
	e.integer("WATCHER_READINESS_CHECKS", &cfg.Watcher.ReadinessChecks)
	e.duration("WATCHER_READINESS_INTERVAL", &cfg.Watcher.ReadinessInterval)
	e.boolean("WATCHER_DELETE_SOURCE", &cfg.Watcher.DeleteSource)

	// Telemetry
	e.str("TELEMETRY_LOGGING_LEVEL", &cfg.Telemetry.Logging.Level)
	e.str("TELEMETRY_LOGGING_FORMAT", &cfg.Telemetry.Logging.Format)
	e.boolean("TELEMETRY_LOGGING_ADD_SOURCE", &cfg.Telemetry.Logging.AddSource)
	e.boolean("TELEMETRY_METRICS_ENABLED", &cfg.Telemetry.Metrics.Enabled)
	e.str("TELEMETRY_METRICS_LISTEN_ADDRESS", &cfg.Telemetry.Metrics.ListenAddress)
	e.str("TELEMETRY_METRICS_PATH", &cfg.Telemetry.Metrics.Path)

	if len(e.errs) > 0 {
		return ValidationError{Errors: e.errs}
	}
	return nil
}

// RetentionPolicy builds the configured retention policy: the rules file
// when one is set, otherwise the inline policy.
func (c *Config) RetentionPolicy() (*retention.Policy, error) {
	if c.Retention.RulesFile != "" {
		return retention.LoadPolicy(c.Retention.RulesFile)
	}
	p := c.Retention.Policy
	return retention.NewPolicy(p.Name, p.Description, p.Rules...)
}
