package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
	"strata-hq/strata/pkg/config"
	"strata-hq/strata/pkg/retention"
	"strata-hq/strata/pkg/watcher"
)

// shutdownTimeout bounds the HTTP server drain on exit.
const shutdownTimeout = 10 * time.Second

var runFlags struct {
	watchDir string
	dryRun   bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the strata daemon",
	Long: `Start the strata daemon with the specified configuration.

The daemon runs the retention scheduler, the directory watcher when it is
enabled, and an HTTP listener serving metrics and health probes.

Examples:
  # Start with defaults and STRATA_* environment overrides
  strata run

  # Start with a config file
  strata run --config /etc/strata/config.yaml

  # Watch a directory regardless of watcher.enabled
  strata run --watch /srv/inbox

  # Validate config without starting
  strata run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runFlags.watchDir, "watch", "", "watch this directory (enables the watcher)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runFlags.watchDir != "" {
		cfg.Watcher.Enabled = true
		cfg.Watcher.Directory = runFlags.watchDir
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if runFlags.dryRun {
		fmt.Fprintln(out, "✓ Configuration valid")
		return nil
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Fprintf(out, "Strata v%s\n", Version)
	fmt.Fprintf(out, "✓ Storage backend: %s\n", a.storage.Name())
	fmt.Fprintf(out, "✓ Retention policy: %s (%d rules)\n", a.planner.Policy().Name(), len(a.planner.Policy().Rules()))

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	var srv *http.Server
	if cfg.Telemetry.Metrics.Enabled {
		srv, err = startHTTPServer(a, errCh)
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		fmt.Fprintf(out, "✓ Metrics endpoint: http://%s%s\n", srv.Addr, cfg.Telemetry.Metrics.Path)
		fmt.Fprintf(out, "✓ Health endpoints: http://%s/healthz, /readyz\n", srv.Addr)
	}

	var scheduler *retention.Scheduler
	if cfg.Retention.Enabled {
		scheduler = retention.NewScheduler(cfg.Retention.Schedule, a.planner.SweepFunc(), a.logger)
		if err := scheduler.Start(ctx); err != nil {
			return cli.NewCommandError("run", err)
		}
		defer scheduler.Stop()
		if next := scheduler.NextRun(); next != nil {
			fmt.Fprintf(out, "✓ Retention scheduler started (next sweep %s)\n", next.Format(time.RFC3339))
		}
		if cfg.Retention.SweepOnStart {
			wg.Add(1)
			go func() {
				defer wg.Done()
				scheduler.RunNow(ctx)
			}()
		}
	}

	if cfg.Watcher.Enabled {
		w, err := watcher.New(watcher.Config{
			Directory:         cfg.Watcher.Directory,
			ReadinessChecks:   cfg.Watcher.ReadinessChecks,
			ReadinessInterval: cfg.Watcher.ReadinessInterval,
			DeleteSource:      cfg.Watcher.DeleteSource,
			SkipHidden:        true,
		}, a.planner, a.logger, watcher.WithMetrics(a.metrics))
		if err != nil {
			return cli.NewCommandError("run", err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Watch(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("watcher: %w", err)
			}
		}()
		fmt.Fprintf(out, "✓ Watching %s\n", cfg.Watcher.Directory)
	}

	fmt.Fprintln(out, "\nPress Ctrl+C to stop")

	var runErr error
	select {
	case <-ctx.Done():
		fmt.Fprintln(out, "\nShutting down gracefully...")
	case runErr = <-errCh:
		a.logger.Error("daemon component failed", "error", runErr)
		stop()
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("http server shutdown failed", "error", err)
		}
	}
	wg.Wait()

	if runErr != nil {
		return cli.NewCommandError("run", runErr)
	}
	fmt.Fprintln(out, "✓ Stopped")
	return nil
}

// startHTTPServer binds the metrics listener and serves metrics and health
// probes until Shutdown. Serve errors are sent to errCh.
func startHTTPServer(a *app, errCh chan<- error) (*http.Server, error) {
	mux := http.NewServeMux()
	mux.Handle(a.cfg.Telemetry.Metrics.Path, a.metrics.Handler())
	mux.Handle("/healthz", a.health.LivenessHandler())
	mux.Handle("/readyz", a.health.ReadinessHandler())

	ln, err := net.Listen("tcp", a.cfg.Telemetry.Metrics.ListenAddress)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", a.cfg.Telemetry.Metrics.ListenAddress, err)
	}

	srv := &http.Server{
		Addr:              ln.Addr().String(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("http server listening", "address", srv.Addr)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	return srv, nil
}
