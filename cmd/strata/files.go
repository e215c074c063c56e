package main

import (
	"context"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
)

var filesFlags struct {
	format string
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List stored files",
	Long:  `List the metadata of every stored file, oldest first.`,
	Args:  cobra.NoArgs,
	RunE:  listFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)

	filesCmd.Flags().StringVar(&filesFlags.format, "format", "text", "output format: text, json, csv")
}

func listFiles(cmd *cobra.Command, args []string) error {
	if _, err := cli.ParseFormat(filesFlags.format); err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, a *app) error {
		files, err := a.planner.ListFiles(ctx)
		if err != nil {
			return cli.NewCommandError("files", err)
		}
		return render(cmd.OutOrStdout(), filesFlags.format, fileTable(files))
	})
}
