package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
)

var (
	// Global flags
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "strata",
	Short: "Strata - file ingestion with plan-based storage and retention",
	Long: `Strata ingests files into a pluggable object store and reclaims them
according to a time-based retention policy.

It provides:
  - Size-based storage plans with optional gzip and reversal stages
  - Local, S3 and in-memory object storage
  - SQLite, PostgreSQL, Badger and in-memory metadata stores
  - A read-through cache (in-memory LRU or Redis)
  - An append-only audit journal
  - Scheduled retention sweeps that archive or delete expired files
  - A directory watcher that ingests files as they appear`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with a code derived from the
// returned error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults plus STRATA_* environment when empty)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")
}
