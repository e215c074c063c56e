package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
	"strata-hq/strata/pkg/planner"
)

var storeFlags struct {
	attrs  []string
	format string
}

var storeCmd = &cobra.Command{
	Use:   "store FILE...",
	Short: "Store files and print their identifiers",
	Long: `Store one or more files through the configured storage plans.

Each file receives a fresh identifier. The command waits for every plan to
finish and reports the plan that ran for each file.

Examples:
  # Store a file
  strata store report.pdf

  # Store several files with attributes attached to each object
  strata store a.csv b.csv --attr team=finance --attr source=export

  # Machine-readable output
  strata store big.bin --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: storeFiles,
}

func init() {
	rootCmd.AddCommand(storeCmd)

	storeCmd.Flags().StringArrayVar(&storeFlags.attrs, "attr", nil, "object attribute as key=value (repeatable)")
	storeCmd.Flags().StringVar(&storeFlags.format, "format", "text", "output format: text, json, csv")
}

func storeFiles(cmd *cobra.Command, args []string) error {
	attrs, err := parseAttrs(storeFlags.attrs)
	if err != nil {
		return err
	}
	if _, err := cli.ParseFormat(storeFlags.format); err != nil {
		return err
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		var progress cli.ProgressReporter
		if len(args) > 1 {
			progress = cli.NewProgressReporter(cmd.ErrOrStderr(), "files")
			progress.Start(int64(len(args)))
		}

		type pending struct {
			result  storedFile
			receipt *planner.Receipt
		}
		submitted := make([]pending, 0, len(args))

		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				if progress != nil {
					progress.Error(err)
				}
				return cli.NewCommandError("store", err)
			}
			receipt, err := a.planner.StoreFile(ctx, path, data, attrs)
			if err != nil && receipt == nil {
				if progress != nil {
					progress.Error(err)
				}
				return cli.NewCommandError("store", err)
			}
			submitted = append(submitted, pending{
				result:  storedFile{ID: receipt.ID, Path: path, Size: len(data), Plan: receipt.Plan},
				receipt: receipt,
			})
		}

		results := make(storedTable, 0, len(submitted))
		var failed int
		for i, p := range submitted {
			if err := p.receipt.Wait(ctx); err != nil {
				p.result.Error = err.Error()
				failed++
			}
			results = append(results, p.result)
			if progress != nil {
				progress.Update(int64(i + 1))
			}
		}
		if progress != nil {
			progress.Finish()
		}

		if err := render(cmd.OutOrStdout(), storeFlags.format, results); err != nil {
			return err
		}
		if failed > 0 {
			return cli.NewCommandError("store", fmt.Errorf("%d of %d files failed", failed, len(results)))
		}
		return nil
	})
}
