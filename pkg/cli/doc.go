/*
Package cli provides command-line helpers for the strata command.

Output Formatting:

Results that implement Table render as aligned columns, CSV or JSON:

	format, err := cli.ParseFormat(flagValue)
	if err := cli.NewFormatter(format).FormatTo(os.Stdout, filesTable); err != nil {
		return err
	}

Progress Reporting:

	progress := cli.NewProgressReporter(os.Stderr, "files")
	progress.Start(int64(len(paths)))
	for i, p := range paths {
		// store p
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps command errors onto exit statuses: 2 for usage errors, 3 for
unknown file IDs, 78 for configuration errors and 1 for everything else.
*/
package cli
