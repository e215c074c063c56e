package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"strata-hq/strata/pkg/cli"
	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/planner"
)

// withApp loads the configuration, builds the app, runs fn and closes the
// app. The context is cancelled on SIGINT or SIGTERM.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}

	runErr := fn(ctx, a)
	if err := a.Close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

// render writes data to w in the format named by format.
func render(w io.Writer, format string, data any) error {
	f, err := cli.ParseFormat(format)
	if err != nil {
		return err
	}
	return cli.NewFormatter(f).FormatTo(w, data)
}

// parseAttrs turns repeated key=value flags into a map.
func parseAttrs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, cli.NewUsageError("--attr", fmt.Sprintf("expected key=value, got %q", pair))
		}
		attrs[k] = v
	}
	return attrs, nil
}

// parseSince accepts an RFC 3339 timestamp or a duration counted back
// from now ("90m", "24h").
func parseSince(s string, now time.Time) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return time.Time{}, cli.NewUsageError("--since", fmt.Sprintf("expected RFC 3339 time or positive duration, got %q", s))
	}
	return now.Add(-d), nil
}

// fileTable renders file metadata records.
type fileTable []*ingest.FileMetadata

func (t fileTable) Header() []string {
	return []string{"ID", "PATH", "SIZE", "CONTENT TYPE", "CREATED"}
}

func (t fileTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, m := range t {
		rows = append(rows, []string{
			m.ID,
			m.Path,
			strconv.FormatInt(m.Size, 10),
			m.ContentType,
			m.CreatedAt.Format(time.RFC3339),
		})
	}
	return rows
}

// journalTable renders journal entries.
type journalTable []ingest.JournalEntry

func (t journalTable) Header() []string { return []string{"TIMESTAMP", "MESSAGE"} }

func (t journalTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, e := range t {
		rows = append(rows, []string{e.Timestamp.Format(time.RFC3339Nano), e.Message})
	}
	return rows
}

// storedFile is the result of one store.
type storedFile struct {
	ID    string `json:"id"`
	Path  string `json:"path"`
	Size  int    `json:"size"`
	Plan  string `json:"plan"`
	Error string `json:"error,omitempty"`
}

type storedTable []storedFile

func (t storedTable) Header() []string { return []string{"ID", "PATH", "SIZE", "PLAN", "ERROR"} }

func (t storedTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, s := range t {
		rows = append(rows, []string{s.ID, s.Path, strconv.Itoa(s.Size), s.Plan, s.Error})
	}
	return rows
}

// sweepReport is the printable form of planner.SweepStats.
type sweepReport struct {
	Scanned  int    `json:"scanned"`
	Archived int    `json:"archived"`
	Deleted  int    `json:"deleted"`
	Failed   int    `json:"failed"`
	Duration string `json:"duration"`
}

func newSweepReport(s planner.SweepStats) sweepReport {
	return sweepReport{
		Scanned:  s.Scanned,
		Archived: s.Archived,
		Deleted:  s.Deleted,
		Failed:   s.Failed,
		Duration: s.Duration.Round(time.Millisecond).String(),
	}
}

func (r sweepReport) Header() []string {
	return []string{"SCANNED", "ARCHIVED", "DELETED", "FAILED", "DURATION"}
}

func (r sweepReport) Rows() [][]string {
	return [][]string{{
		strconv.Itoa(r.Scanned),
		strconv.Itoa(r.Archived),
		strconv.Itoa(r.Deleted),
		strconv.Itoa(r.Failed),
		r.Duration,
	}}
}
