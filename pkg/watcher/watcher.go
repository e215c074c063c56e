package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"strata-hq/strata/pkg/planner"
	"strata-hq/strata/pkg/telemetry/logging"
)

var (
	// ErrNotReady is returned when a file kept growing through every
	// readiness check.
	ErrNotReady = errors.New("file not ready")

	// ErrVanished is returned when a file disappears before it is read.
	ErrVanished = errors.New("file vanished")

	// ErrAlreadyRunning is returned by Watch on a watcher that is running.
	ErrAlreadyRunning = errors.New("watcher already running")
)

// Storer accepts files for storage. *planner.Planner implements it.
type Storer interface {
	StoreFile(ctx context.Context, path string, data []byte, attrs map[string]string) (*planner.Receipt, error)
}

// Metrics receives one observation per ingested file.
type Metrics interface {
	ObserveIngest(err error)
}

type nopMetrics struct{}

func (nopMetrics) ObserveIngest(error) {}

// Config contains configuration for the directory watcher.
type Config struct {
	// Directory is the directory to watch. It must exist.
	Directory string

	// ReadinessChecks is the maximum number of size comparisons made before
	// a file is given up on (default: 5)
	ReadinessChecks int

	// ReadinessInterval is the wait between the two size reads of a check
	// (default: 1s)
	ReadinessInterval time.Duration

	// DeleteSource removes the file once its store has completed
	DeleteSource bool

	// SkipHidden ignores dot files, which editors and copy tools use for
	// partial writes
	SkipHidden bool
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		ReadinessChecks:   5,
		ReadinessInterval: time.Second,
		DeleteSource:      true,
		SkipHidden:        true,
	}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithMetrics sets the ingest metrics sink.
func WithMetrics(m Metrics) Option {
	return func(w *Watcher) { w.metrics = m }
}

// Watcher ingests files created in a directory.
type Watcher struct {
	watcher *fsnotify.Watcher
	storer  Storer
	metrics Metrics
	logger  *slog.Logger
	config  Config

	mu       sync.Mutex
	running  bool
	inflight map[string]struct{}
	wg       sync.WaitGroup
}

// New creates a watcher for cfg.Directory.
func New(cfg Config, storer Storer, logger *slog.Logger, opts ...Option) (*Watcher, error) {
	if storer == nil {
		return nil, errors.New("watcher: storer is required")
	}
	if cfg.ReadinessChecks <= 0 {
		cfg.ReadinessChecks = 5
	}
	if cfg.ReadinessInterval <= 0 {
		cfg.ReadinessInterval = time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch directory %q is not a directory", cfg.Directory)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsw,
		storer:   storer,
		metrics:  nopMetrics{},
		logger:   logger.With("component", "watcher"),
		config:   cfg,
		inflight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch ingests created files until ctx is cancelled. It waits for
// in-flight ingestions before returning and closes the underlying watcher.
func (w *Watcher) Watch(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return ErrAlreadyRunning
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.wg.Wait()
		w.watcher.Close()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	if err := w.watcher.Add(w.config.Directory); err != nil {
		return fmt.Errorf("failed to watch directory %q: %w", w.config.Directory, err)
	}

	w.logger.Info("directory watcher started",
		"directory", w.config.Directory,
		"readiness_checks", w.config.ReadinessChecks,
		"readiness_interval", w.config.ReadinessInterval,
	)

	ctx = logging.WithOperation(ctx, "watch")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("directory watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			w.logger.Debug("file creation detected", "path", event.Name)
			w.dispatch(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// dispatch ingests path in the background unless it is already in flight.
func (w *Watcher) dispatch(ctx context.Context, path string) {
	w.mu.Lock()
	if _, busy := w.inflight[path]; busy {
		w.mu.Unlock()
		return
	}
	w.inflight[path] = struct{}{}
	w.mu.Unlock()

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			delete(w.inflight, path)
			w.mu.Unlock()
		}()

		err := w.Ingest(ctx, path)
		switch {
		case err == nil:
		case errors.Is(err, ErrVanished), errors.Is(err, context.Canceled):
			w.logger.DebugContext(ctx, "file skipped", "path", path, "reason", err)
		default:
			w.logger.ErrorContext(ctx, "failed to ingest file", "path", path, "error", err)
		}
	}()
}

// Ingest waits for path to stop growing, reads it, stores it and waits for
// the store to finish. The source is removed afterwards when DeleteSource is
// set; a failed store leaves it in place.
func (w *Watcher) Ingest(ctx context.Context, path string) error {
	if err := w.waitReady(ctx, path); err != nil {
		if !errors.Is(err, ErrVanished) && !errors.Is(err, context.Canceled) {
			w.metrics.ObserveIngest(err)
		}
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrVanished
		}
		w.metrics.ObserveIngest(err)
		return fmt.Errorf("read %s: %w", path, err)
	}

	receipt, err := w.storer.StoreFile(ctx, path, data, map[string]string{
		"source": "watcher",
		"name":   filepath.Base(path),
	})
	if err == nil {
		// The source is the only copy until the plan has run.
		err = receipt.Wait(ctx)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	w.metrics.ObserveIngest(err)
	if err != nil {
		return fmt.Errorf("store %s: %w", path, err)
	}

	w.logger.InfoContext(logging.WithFileID(ctx, receipt.ID), "file stored",
		"path", path,
		"plan", receipt.Plan,
		"size", len(data),
	)

	if w.config.DeleteSource {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove source %s: %w", path, err)
		}
		w.logger.Debug("source file removed", "path", path)
	}
	return nil
}

// waitReady compares the size of path across ReadinessInterval, up to
// ReadinessChecks times. A file whose size held steady across one interval
// is ready.
func (w *Watcher) waitReady(ctx context.Context, path string) error {
	for check := 1; check <= w.config.ReadinessChecks; check++ {
		before, err := fileSize(path)
		if err != nil {
			return err
		}

		timer := time.NewTimer(w.config.ReadinessInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		after, err := fileSize(path)
		if err != nil {
			return err
		}
		if before == after {
			return nil
		}
		w.logger.Debug("file still growing", "path", path, "check", check, "size", after)
	}
	return fmt.Errorf("%w: %s still growing after %d checks", ErrNotReady, path, w.config.ReadinessChecks)
}

// shouldProcessEvent reports whether event is a file creation to ingest.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) {
		return false
	}
	if w.config.SkipHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return true
}

func fileSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrVanished
		}
		return 0, err
	}
	return info.Size(), nil
}
