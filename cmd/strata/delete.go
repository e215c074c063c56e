package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
)

var deleteCmd = &cobra.Command{
	Use:   "delete ID...",
	Short: "Delete stored files",
	Long: `Delete the objects and metadata stored under each ID.

Every identifier is attempted; the command fails if any of them could not
be deleted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: deleteFiles,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func deleteFiles(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		var errs []error
		for _, id := range args {
			if err := a.planner.DeleteFile(ctx, id); err != nil {
				errs = append(errs, err)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", id)
		}
		if err := errors.Join(errs...); err != nil {
			return cli.NewCommandError("delete", err)
		}
		return nil
	})
}
