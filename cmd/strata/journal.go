package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
	"strata-hq/strata/pkg/ingest"
)

var journalFlags struct {
	search string
	since  string
	limit  int
	format string
}

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the audit journal",
	Long: `Print audit journal entries in append order.

Since Format:
  An RFC 3339 timestamp, or a duration counted back from now.

Examples:
  # Everything
  strata journal

  # Entries mentioning a file
  strata journal --search 6f1c2a3e

  # The last day as JSON
  strata journal --since 24h --format json`,
	Args: cobra.NoArgs,
	RunE: queryJournal,
}

var journalClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every journal entry",
	Args:  cobra.NoArgs,
	RunE:  clearJournal,
}

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalClearCmd)

	journalCmd.Flags().StringVar(&journalFlags.search, "search", "", "only entries containing this text")
	journalCmd.Flags().StringVar(&journalFlags.since, "since", "", "only entries at or after this time (RFC 3339 or duration)")
	journalCmd.Flags().IntVar(&journalFlags.limit, "limit", 0, "show only the last N entries (0 for all)")
	journalCmd.Flags().StringVar(&journalFlags.format, "format", "text", "output format: text, json, csv")
}

func queryJournal(cmd *cobra.Command, args []string) error {
	if _, err := cli.ParseFormat(journalFlags.format); err != nil {
		return err
	}
	if journalFlags.limit < 0 {
		return cli.NewUsageError("--limit", "must not be negative")
	}

	var since time.Time
	if journalFlags.since != "" {
		var err error
		if since, err = parseSince(journalFlags.since, time.Now()); err != nil {
			return err
		}
	}

	return withApp(cmd, func(ctx context.Context, a *app) error {
		var (
			entries []ingest.JournalEntry
			err     error
		)
		switch {
		case journalFlags.search != "":
			entries, err = a.journal.Search(ctx, journalFlags.search)
		case !since.IsZero():
			entries, err = a.journal.Since(ctx, since)
		default:
			entries, err = a.journal.Entries(ctx)
		}
		if err != nil {
			return cli.NewCommandError("journal", err)
		}

		entries = filterJournal(entries, since, journalFlags.limit)
		return render(cmd.OutOrStdout(), journalFlags.format, journalTable(entries))
	})
}

// filterJournal drops entries before since and keeps the last limit
// entries when limit is positive.
func filterJournal(entries []ingest.JournalEntry, since time.Time, limit int) []ingest.JournalEntry {
	if !since.IsZero() {
		kept := entries[:0:0]
		for _, e := range entries {
			if !e.Timestamp.Before(since) {
				kept = append(kept, e)
			}
		}
		entries = kept
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries
}

func clearJournal(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.journal.Clear(ctx); err != nil {
			return cli.NewCommandError("journal", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Journal cleared")
		return nil
	})
}
