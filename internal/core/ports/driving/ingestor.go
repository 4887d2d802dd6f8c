// Package driving defines the interfaces through which the CLI drives
// the ingestion core.
package driving

import (
	"context"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

// Ingestor runs ingestion sweeps across all configured sources.
type Ingestor interface {
	// RunOnce runs every source adapter in sequence, isolating failures
	// per source, then advances the global watermark. It returns the
	// per-source results; it errors only on setup failures that occur
	// before any work begins.
	RunOnce(ctx context.Context) (*domain.RunResult, error)

	// Backfill runs the historical backfill source on its own. It does
	// not touch the global watermark.
	Backfill(ctx context.Context) (*domain.RunResult, error)

	// Status reports the persisted watermark and any in-flight
	// checkpoints without running anything.
	Status(ctx context.Context) (*domain.PipelineStatus, error)
}
