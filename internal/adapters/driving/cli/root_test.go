package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driving"
)

// stubIngestor implements driving.Ingestor for command tests.
type stubIngestor struct {
	result    *domain.RunResult
	status    *domain.PipelineStatus
	runs      int
	backfills int
}

func (s *stubIngestor) RunOnce(_ context.Context) (*domain.RunResult, error) {
	s.runs++
	return s.result, nil
}

func (s *stubIngestor) Backfill(_ context.Context) (*domain.RunResult, error) {
	s.backfills++
	return s.result, nil
}

func (s *stubIngestor) Status(_ context.Context) (*domain.PipelineStatus, error) {
	return s.status, nil
}

func stubResult() *domain.RunResult {
	now := time.Now()
	return &domain.RunResult{
		RunID:      "run-1",
		StartedAt:  now,
		FinishedAt: now.Add(time.Second),
		Sources: []domain.SourceReport{
			{SourceID: "state", Outcome: domain.OutcomeCompleted, Processed: 5, Inserted: 2},
		},
	}
}

// setupTest installs stub dependencies and resets flag state, restoring
// both afterwards.
func setupTest(t *testing.T, stub *stubIngestor) {
	t.Helper()
	old := deps
	factory := func() (driving.Ingestor, error) { return stub, nil }
	Configure(Dependencies{
		Daily:    func(time.Time) (driving.Ingestor, error) { return factory() },
		States:   func([]string, string) (driving.Ingestor, error) { return factory() },
		Congress: func(time.Time) (driving.Ingestor, error) { return factory() },
		Backfill: func([]int) (driving.Ingestor, error) { return factory() },
		Orders:   func(time.Time, int) (driving.Ingestor, error) { return factory() },
		Status:   factory,
	})
	t.Cleanup(func() {
		deps = old
		dailyFromDate = ""
		statesStartFrom = ""
		congressFromDate = ""
		backfillCongress, backfillStart, backfillEnd = 0, 0, 0
		ordersCutoff, ordersMaxPages, ordersBackfill = "", 0, false
	})
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
