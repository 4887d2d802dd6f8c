package driven

import (
	"context"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

// CheckpointStore persists per-source resume state.
//
// Save must be cheap enough to call after every processed page. Load
// returning domain.ErrNotFound means "start this source from scratch",
// the normal state after a clean completion.
type CheckpointStore interface {
	// Load returns the checkpoint for a source, or domain.ErrNotFound.
	Load(ctx context.Context, sourceID string) (*domain.RunCheckpoint, error)

	// Save atomically overwrites the checkpoint on disk, creating the
	// parent directory if absent.
	Save(ctx context.Context, checkpoint *domain.RunCheckpoint) error

	// Clear removes the checkpoint for a source. Clearing a missing
	// checkpoint is not an error.
	Clear(ctx context.Context, sourceID string) error

	// List returns every persisted checkpoint, sorted by source ID.
	List(ctx context.Context) ([]domain.RunCheckpoint, error)
}

// WatermarkStore persists the global last-run watermark.
type WatermarkStore interface {
	// Load returns the last run time, or domain.ErrNotFound on first run.
	Load(ctx context.Context) (time.Time, error)

	// Save records the last run time.
	Save(ctx context.Context, lastRun time.Time) error
}
