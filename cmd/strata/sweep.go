package main

import (
	"context"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
)

var sweepFlags struct {
	format string
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one retention sweep",
	Long: `Evaluate the retention policy against every stored file and archive or
delete the files it selects.

Per-file failures are counted and reported; they do not stop the sweep.`,
	Args: cobra.NoArgs,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().StringVar(&sweepFlags.format, "format", "text", "output format: text, json, csv")
}

func runSweep(cmd *cobra.Command, args []string) error {
	if _, err := cli.ParseFormat(sweepFlags.format); err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		stats, err := a.planner.Sweep(ctx)
		if err != nil {
			return cli.NewCommandError("sweep", err)
		}
		return render(cmd.OutOrStdout(), sweepFlags.format, newSweepReport(stats))
	})
}
