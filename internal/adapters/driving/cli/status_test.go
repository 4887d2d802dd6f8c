package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

func TestStatusCmd_NeverRun(t *testing.T) {
	stub := &stubIngestor{status: &domain.PipelineStatus{}}
	setupTest(t, stub)

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Last run: never")
	assert.Contains(t, out, "No interrupted sweeps.")
}

func TestStatusCmd_ListsCheckpoints(t *testing.T) {
	stub := &stubIngestor{status: &domain.PipelineStatus{
		LastRun: time.Date(2025, 8, 1, 6, 0, 0, 0, time.UTC),
		Checkpoints: []domain.RunCheckpoint{
			{SourceID: "state", Partition: "MT", Cursor: 3, CompletedPartitions: []string{"AL", "AK"}},
		},
	}}
	setupTest(t, stub)

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "2025-08-01")
	assert.Contains(t, out, "state")
	assert.Contains(t, out, `"MT"`)
}

func TestShowCmd_PrintsDisplayRecord(t *testing.T) {
	stub := &stubIngestor{}
	setupTest(t, stub)

	date := time.Date(2025, 1, 23, 0, 0, 0, 0, time.UTC)
	deps.Lookup = func(_ context.Context, id string) (*domain.DisplayRecord, error) {
		assert.Equal(t, "eo-federal-14179", id)
		return &domain.DisplayRecord{
			Kind:         domain.KindExecutiveOrder,
			ID:           "eo-federal-14179",
			Identifier:   "14179",
			Title:        "Removing Barriers to American Leadership in Artificial Intelligence",
			Jurisdiction: "federal",
			StatusText:   "Signed",
			Topics:       []string{"artificial-intelligence"},
			Date:         &date,
		}, nil
	}

	out, err := execute(t, "show", "eo-federal-14179")

	require.NoError(t, err)
	assert.Contains(t, out, "Removing Barriers")
	assert.Contains(t, out, "executive-order")
	assert.Contains(t, out, "2025-01-23")
	assert.Contains(t, out, "artificial-intelligence")
}

func TestShowCmd_NotFound(t *testing.T) {
	stub := &stubIngestor{}
	setupTest(t, stub)

	deps.Lookup = func(_ context.Context, _ string) (*domain.DisplayRecord, error) {
		return nil, domain.ErrNotFound
	}

	_, err := execute(t, "show", "missing-id")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no record with id missing-id")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "statepulse version")
}
