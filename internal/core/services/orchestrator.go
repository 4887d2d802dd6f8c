// Package services implements the core application services behind the
// driving ports.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driving"
	"github.com/statepulse/statepulse-ingest/internal/logger"
)

// Ensure Orchestrator implements the interface.
var _ driving.Ingestor = (*Orchestrator)(nil)

// DefaultLookback bounds the "updated since" window when no watermark
// exists yet (first run, or a wiped data directory).
const DefaultLookback = 24 * time.Hour

// Orchestrator drives the source adapters in sequence. Each source's
// failures stay its own: a source that fails outright is reported and
// the run moves on, because the next scheduled run's extended window
// covers whatever was missed.
type Orchestrator struct {
	sources     []driven.SourceAdapter
	backfill    driven.SourceAdapter
	checkpoints driven.CheckpointStore
	watermarks  driven.WatermarkStore

	// SinceOverride pins the sweep window start, bypassing the
	// watermark. Zero means use the watermark.
	SinceOverride time.Time

	// SkipWatermark leaves the global watermark untouched after the
	// run. Set for manually scoped runs (a subset of states, a deep
	// orders sweep) so the next scheduled run still covers the full
	// window for every source.
	SkipWatermark bool
}

// NewOrchestrator creates an orchestrator over the given sources, run in
// the order supplied. backfill may be nil when no backfill source is
// configured.
func NewOrchestrator(
	sources []driven.SourceAdapter,
	backfill driven.SourceAdapter,
	checkpoints driven.CheckpointStore,
	watermarks driven.WatermarkStore,
) *Orchestrator {
	return &Orchestrator{
		sources:     sources,
		backfill:    backfill,
		checkpoints: checkpoints,
		watermarks:  watermarks,
	}
}

// RunOnce sweeps every source for records updated since the watermark,
// then advances the watermark to this run's start time. The watermark
// advances regardless of per-source outcomes: a partial run is still
// forward progress, and missed work is retried on the extended window
// of the next scheduled run.
func (o *Orchestrator) RunOnce(ctx context.Context) (*domain.RunResult, error) {
	if len(o.sources) == 0 {
		return nil, fmt.Errorf("no sources configured")
	}

	since, err := o.since(ctx)
	if err != nil {
		return nil, err
	}

	result := &domain.RunResult{
		RunID:     uuid.NewString(),
		Since:     since,
		StartedAt: time.Now(),
	}
	logger.Section("Run %s: sweeping %d sources since %s",
		result.RunID, len(o.sources), since.Format(time.RFC3339))

	for _, source := range o.sources {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		logger.Info("Source %s: starting", source.SourceID())
		report := source.Run(ctx, since)
		result.Sources = append(result.Sources, report)
		logger.Info("Source %s: %s (processed %d, updated %d, inserted %d, %d errors)",
			report.SourceID, report.Outcome, report.Processed, report.Updated,
			report.Inserted, len(report.Errors))
	}

	result.FinishedAt = time.Now()

	if result.Failed() {
		logger.Warn("All sources failed this run")
	}
	if o.SkipWatermark {
		return result, nil
	}
	if err := o.watermarks.Save(ctx, result.StartedAt); err != nil {
		logger.Error("Failed to advance watermark: %v", err)
		result.Sources = append(result.Sources, domain.SourceReport{
			SourceID: "watermark",
			Outcome:  domain.OutcomeCompletedWithErrors,
			Errors:   []error{err},
		})
	}
	return result, nil
}

// Backfill runs the historical backfill source. The global watermark is
// untouched; the backfill keeps its own checkpoint.
func (o *Orchestrator) Backfill(ctx context.Context) (*domain.RunResult, error) {
	if o.backfill == nil {
		return nil, fmt.Errorf("no backfill source configured")
	}

	result := &domain.RunResult{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger.Section("Backfill %s: starting", result.RunID)

	report := o.backfill.Run(ctx, time.Time{})
	result.Sources = append(result.Sources, report)
	result.FinishedAt = time.Now()

	logger.Info("Backfill %s: %s (processed %d, updated %d, inserted %d, %d errors)",
		report.SourceID, report.Outcome, report.Processed, report.Updated,
		report.Inserted, len(report.Errors))
	return result, nil
}

// Status reports the watermark and any in-flight checkpoints. It reads
// only the persisted state, so an orchestrator with no sources wired is
// enough to serve it.
func (o *Orchestrator) Status(ctx context.Context) (*domain.PipelineStatus, error) {
	status := &domain.PipelineStatus{}

	lastRun, err := o.watermarks.Load(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("load watermark: %w", err)
	}
	status.LastRun = lastRun

	checkpoints, err := o.checkpoints.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list checkpoints: %w", err)
	}
	status.Checkpoints = checkpoints
	return status, nil
}

// since resolves the sweep window start: the override when set,
// otherwise the watermark, otherwise the default lookback.
func (o *Orchestrator) since(ctx context.Context) (time.Time, error) {
	if !o.SinceOverride.IsZero() {
		return o.SinceOverride, nil
	}

	lastRun, err := o.watermarks.Load(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return time.Now().Add(-DefaultLookback), nil
		}
		return time.Time{}, fmt.Errorf("load watermark: %w", err)
	}
	return lastRun, nil
}
