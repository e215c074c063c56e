package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"strata-hq/strata/pkg/ingest"
	"strata-hq/strata/pkg/retention"
)

// ErrSweepInProgress is returned when Sweep is called while another sweep
// is running.
var ErrSweepInProgress = errors.New("retention sweep already in progress")

// SweepStats summarizes one sweep.
type SweepStats struct {
	Scanned  int
	Archived int
	Deleted  int
	Failed   int
	Duration time.Duration
}

// Reclaimed returns the number of files archived or deleted.
func (s SweepStats) Reclaimed() int { return s.Archived + s.Deleted }

// Sweep evaluates the retention policy against every known file and
// reclaims the ones it selects. Per-file failures are counted in
// SweepStats.Failed and do not stop the sweep; the returned error is
// non-nil only when the sweep could not run at all.
func (p *Planner) Sweep(ctx context.Context) (SweepStats, error) {
	if !p.sweeping.CompareAndSwap(false, true) {
		p.metrics.IncSweepSkipped()
		p.logger.Warn("sweep skipped, previous sweep still running")
		return SweepStats{}, ErrSweepInProgress
	}
	defer p.sweeping.Store(false)

	start := time.Now()
	var stats SweepStats

	files, err := p.metadata.GetAllFiles(ctx)
	if err != nil {
		p.journalf(ctx, "Error retrieving all files from metadata store: %v", err)
		return stats, fmt.Errorf("list files: %w", err)
	}

	now := p.now()
	for _, meta := range files {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return stats, err
		}
		stats.Scanned++

		decision, ok := p.policy.Evaluate(meta, now)
		if !ok {
			continue
		}

		if err := p.reclaim(ctx, meta, decision.Action); err != nil {
			stats.Failed++
			p.logger.Error("failed to reclaim file",
				"id", meta.ID,
				"action", decision.Action,
				"rule", decision.Rule.String(),
				"error", err,
			)
			p.journalf(ctx, "Error deleting file: %s: %v", meta.ID, err)
			continue
		}

		if decision.Action == retention.ActionArchive {
			stats.Archived++
		} else {
			stats.Deleted++
		}
	}

	stats.Duration = time.Since(start)
	p.metrics.ObserveSweep(stats.Duration, stats.Archived, stats.Deleted, stats.Failed)
	p.logger.Info("sweep completed",
		"scanned", stats.Scanned,
		"archived", stats.Archived,
		"deleted", stats.Deleted,
		"failed", stats.Failed,
		"duration", stats.Duration,
	)
	return stats, nil
}

// reclaim applies action to one file: backend first, then metadata, cache
// and journal. A backend object that is already gone counts as reclaimed.
func (p *Planner) reclaim(ctx context.Context, meta *ingest.FileMetadata, action retention.Action) error {
	var err error
	switch action {
	case retention.ActionArchive:
		err = p.storage.Archive(ctx, meta.ID)
	default:
		if p.config.EnableDelete {
			err = p.storage.Delete(ctx, meta.ID)
		}
	}
	if err != nil {
		if !errors.Is(err, ingest.ErrNotFound) {
			return err
		}
		p.logger.Debug("backend object already gone", "id", meta.ID)
	}

	if err := p.metadata.Delete(ctx, meta.ID); err != nil {
		return err
	}
	if err := p.cache.Remove(ctx, meta.ID); err != nil {
		return err
	}

	if action == retention.ActionArchive {
		p.journalf(ctx, "File archived: %s", meta.ID)
	} else {
		p.journalf(ctx, "File deleted: %s", meta.ID)
	}
	return nil
}

// SweepFunc adapts Sweep to the retention scheduler. An overlapping run is
// not an error for the scheduler.
func (p *Planner) SweepFunc() retention.SweepFunc {
	return func(ctx context.Context) error {
		_, err := p.Sweep(ctx)
		if errors.Is(err, ErrSweepInProgress) {
			return nil
		}
		return err
	}
}
