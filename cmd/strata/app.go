package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"strata-hq/strata/pkg/cli"
	"strata-hq/strata/pkg/config"
	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/ingest/cache"
	"strata-hq/strata/pkg/ingest/journal"
	"strata-hq/strata/pkg/ingest/metadata"
	"strata-hq/strata/pkg/ingest/storage"
	"strata-hq/strata/pkg/plan"
	"strata-hq/strata/pkg/planner"
	"strata-hq/strata/pkg/telemetry/health"
	"strata-hq/strata/pkg/telemetry/logging"
	"strata-hq/strata/pkg/telemetry/metrics"
)

// healthProbeID is looked up by the metadata and cache readiness checks.
const healthProbeID = "strata-health-probe"

// app holds every component built from the configuration. Components are
// closed in reverse construction order.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	metrics  *metrics.Collector
	health   *health.Checker
	storage  ingest.Storage
	metadata ingest.MetadataStore
	cache    ingest.Cache
	journal  ingest.Journal
	executor *plan.Executor
	planner  *planner.Planner

	closers []namedCloser
}

type namedCloser struct {
	name  string
	close func() error
}

// loadConfig loads the configuration named by --config and applies the
// --log-level override.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Telemetry.Logging.Level = logLevel
	}
	return cfg, nil
}

// newLogger builds the process logger and installs it as the slog default.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     cfg.Telemetry.Logging.Level,
		Format:    cfg.Telemetry.Logging.Format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Redact:    cfg.Telemetry.Logging.Redact,
	})
	if err != nil {
		return nil, cli.NewUsageError("--log-level", err.Error())
	}
	slog.SetDefault(logger)
	return logger, nil
}

// newApp wires storage, metadata, cache, journal, executor and planner from
// cfg. On error everything built so far is closed.
func newApp(ctx context.Context, cfg *config.Config) (_ *app, err error) {
	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		metrics: metrics.NewCollector(metrics.Config{
			Enabled:   cfg.Telemetry.Metrics.Enabled,
			Namespace: cfg.Telemetry.Metrics.Namespace,
		}, nil),
		health: health.New(5 * time.Second),
	}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.storage, err = newStorage(ctx, cfg, logger); err != nil {
		return nil, err
	}

	if a.metadata, err = newMetadataStore(ctx, cfg, logger); err != nil {
		return nil, err
	}
	a.onClose("metadata", a.metadata.Close)

	if a.cache, err = newCache(ctx, cfg); err != nil {
		return nil, err
	}
	a.onClose("cache", a.cache.Close)

	if a.journal, err = newJournal(cfg, logger); err != nil {
		return nil, err
	}
	a.onClose("journal", a.journal.Close)

	stages, err := complexStages(cfg.Planner.ComplexStages)
	if err != nil {
		return nil, err
	}
	factory := plan.NewFactory(a.storage, plan.WithComplexStages(stages...))

	policy, err := cfg.RetentionPolicy()
	if err != nil {
		return nil, ingest.NewConfigError("retention.policy", err.Error())
	}

	a.executor = plan.NewExecutor(plan.Config{
		Workers:        cfg.Planner.Workers,
		QueueSize:      cfg.Planner.QueueSize,
		AttemptTimeout: cfg.Planner.AttemptTimeout,
		RetryDelay:     cfg.Planner.RetryDelay,
	}, a.journal, logger, plan.WithObserver(a.metrics))
	a.onClose("executor", a.executor.Close)

	a.planner, err = planner.New(planner.Config{
		SyncStore:    cfg.Planner.SyncStore,
		EnableDelete: cfg.Storage.EnableDelete,
	}, planner.Deps{
		Storage:  a.storage,
		Metadata: a.metadata,
		Executor: a.executor,
		Cache:    a.cache,
		Journal:  a.journal,
		Factory:  factory,
		Decision: plan.NewSizeDecisionMaker(factory, cfg.Planner.FileSizeThreshold),
		Policy:   policy,
		Metrics:  a.metrics,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	a.registerHealthChecks()

	logger.Info("strata initialized",
		"storage", a.storage.Name(),
		"metadata", cfg.Metadata.Backend,
		"cache", cfg.Cache.Backend,
		"journal", cfg.Journal.Backend,
		"policy", policy.Name(),
		"rules", len(policy.Rules()),
	)
	return a, nil
}

func (a *app) onClose(name string, fn func() error) {
	a.closers = append(a.closers, namedCloser{name: name, close: fn})
}

// Close drains the executor and closes every store. It is safe to call
// more than once.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.close(); err != nil {
			a.logger.Error("failed to close component", "component", c.name, "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *app) registerHealthChecks() {
	a.health.RegisterCheck("metadata", func(ctx context.Context) error {
		_, err := a.metadata.Get(ctx, healthProbeID)
		if err != nil && !errors.Is(err, ingest.ErrNotFound) {
			return err
		}
		return nil
	})
	a.health.RegisterCheck("cache", func(ctx context.Context) error {
		_, _, err := a.cache.Get(ctx, healthProbeID)
		return err
	})
	a.health.RegisterCheck("journal", func(ctx context.Context) error {
		_, err := a.journal.Count(ctx)
		return err
	})
}

func newStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ingest.Storage, error) {
	switch cfg.Storage.Backend {
	case "local":
		return storage.NewLocalStorage(storage.LocalConfig{
			Path:        cfg.Storage.Local.Path,
			ArchivePath: cfg.Storage.Local.ArchivePath,
		}, logger)
	case "s3":
		s3cfg := storage.S3Config{
			Bucket:          cfg.Storage.S3.Bucket,
			ArchiveBucket:   cfg.Storage.S3.ArchiveBucket,
			KeyPrefix:       cfg.Storage.S3.KeyPrefix,
			Region:          cfg.Storage.S3.Region,
			Endpoint:        cfg.Storage.S3.Endpoint,
			AccessKeyID:     cfg.Storage.S3.AccessKeyID,
			SecretAccessKey: cfg.Storage.S3.SecretAccessKey,
			ForcePathStyle:  cfg.Storage.S3.ForcePathStyle,
		}
		client, err := storage.NewS3Client(ctx, s3cfg)
		if err != nil {
			return nil, err
		}
		return storage.NewS3Storage(ctx, client, s3cfg, logger)
	case "memory":
		return storage.NewMemoryStorage(), nil
	default:
		return nil, ingest.NewConfigError("storage.backend", fmt.Sprintf("unsupported backend %q", cfg.Storage.Backend))
	}
}

func newMetadataStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (ingest.MetadataStore, error) {
	switch cfg.Metadata.Backend {
	case "memory":
		return metadata.NewMemoryStore(), nil
	case "sqlite":
		return metadata.NewSQLiteStore(&metadata.SQLiteConfig{
			Path:         cfg.Metadata.SQLite.Path,
			MaxOpenConns: cfg.Metadata.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Metadata.SQLite.MaxIdleConns,
			WALMode:      true,
			BusyTimeout:  cfg.Metadata.SQLite.BusyTimeout,
		}, logger)
	case "postgres":
		pg := cfg.Metadata.Postgres
		return metadata.NewPostgresStore(ctx, metadata.PostgresConfig{
			Host:         pg.Host,
			Port:         pg.Port,
			Database:     pg.Database,
			User:         pg.User,
			Password:     pg.Password,
			SSLMode:      pg.SSLMode,
			MaxOpenConns: pg.MaxOpenConns,
		}, logger)
	case "badger":
		return metadata.NewBadgerStore(metadata.BadgerConfig{
			Path:     cfg.Metadata.Badger.Path,
			InMemory: cfg.Metadata.Badger.InMemory,
		}, logger)
	default:
		return nil, ingest.NewConfigError("metadata.backend", fmt.Sprintf("unsupported backend %q", cfg.Metadata.Backend))
	}
}

func newCache(ctx context.Context, cfg *config.Config) (ingest.Cache, error) {
	switch cfg.Cache.Backend {
	case "memory":
		return cache.NewMemoryCache(cfg.Cache.MaxEntries), nil
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			URL:       cfg.Cache.Redis.URL,
			KeyPrefix: cfg.Cache.Redis.KeyPrefix,
			TTL:       cfg.Cache.Redis.TTL,
		})
	default:
		return nil, ingest.NewConfigError("cache.backend", fmt.Sprintf("unsupported backend %q", cfg.Cache.Backend))
	}
}

func newJournal(cfg *config.Config, logger *slog.Logger) (ingest.Journal, error) {
	switch cfg.Journal.Backend {
	case "memory":
		return journal.NewMemoryJournal(), nil
	case "file":
		return journal.NewFileJournal(cfg.Journal.File.Path, logger)
	case "sqlite":
		return journal.NewSQLiteJournal(cfg.Journal.SQLite.Path, cfg.Journal.SQLite.BusyTimeout)
	default:
		return nil, ingest.NewConfigError("journal.backend", fmt.Sprintf("unsupported backend %q", cfg.Journal.Backend))
	}
}

// complexStages maps configured stage names onto transform actions.
func complexStages(names []string) ([]plan.Action, error) {
	stages := make([]plan.Action, 0, len(names))
	for i, name := range names {
		switch name {
		case "gzip":
			stages = append(stages, &plan.TransformAction{Transformer: plan.GzipTransformer{}})
		case "reverse":
			stages = append(stages, &plan.TransformAction{Transformer: plan.ByteReverser{}})
		default:
			return nil, ingest.NewConfigError(fmt.Sprintf("planner.complex_stages[%d]", i), fmt.Sprintf("unknown stage %q", name))
		}
	}
	return stages, nil
}
