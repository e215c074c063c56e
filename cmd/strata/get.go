package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
)

var getFlags struct {
	output string
}

var getCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Retrieve a stored file",
	Long: `Retrieve the bytes stored under ID.

Archived files are no longer retrievable. A missing identifier exits with
status 3.

Examples:
  # Write to stdout
  strata get 6f1c2a3e-0b7d-4c55-9f8e-2d1a4b3c5e6f > report.pdf

  # Write to a file
  strata get 6f1c2a3e-0b7d-4c55-9f8e-2d1a4b3c5e6f -o report.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: getFile,
}

func init() {
	rootCmd.AddCommand(getCmd)

	getCmd.Flags().StringVarP(&getFlags.output, "output", "o", "", "output file (default: stdout)")
}

func getFile(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		data, err := a.planner.RetrieveFile(ctx, args[0])
		if err != nil {
			return cli.NewCommandError("get", err)
		}

		if getFlags.output == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(getFlags.output, data, 0o644); err != nil {
			return cli.NewCommandError("get", err)
		}
		return nil
	})
}
