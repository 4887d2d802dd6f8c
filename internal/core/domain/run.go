package domain

import "time"

// SourceOutcome classifies how one source fared in a run.
type SourceOutcome int

const (
	// OutcomeCompleted means the source swept all partitions cleanly.
	OutcomeCompleted SourceOutcome = iota

	// OutcomeCompletedWithErrors means the sweep finished but some
	// records or partitions failed and were skipped.
	OutcomeCompletedWithErrors

	// OutcomeFailed means the source could not complete its sweep.
	// Its checkpoint remains so the next run resumes.
	OutcomeFailed
)

// String returns the outcome label used in run summaries.
func (o SourceOutcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeCompletedWithErrors:
		return "completed with errors"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// SourceReport summarises one source adapter's sweep.
type SourceReport struct {
	// SourceID identifies the adapter.
	SourceID string

	// Outcome classifies the sweep.
	Outcome SourceOutcome

	// Processed is the number of upstream records examined.
	Processed int

	// Updated is the number of existing records overwritten.
	Updated int

	// Inserted is the number of new records admitted by the relevance filter.
	Inserted int

	// Errors holds per-record and per-partition failures. A non-empty
	// list with OutcomeCompletedWithErrors means the missed work is
	// retried over the extended window of the next scheduled run.
	Errors []error
}

// RunResult is the outcome of one orchestrator invocation.
type RunResult struct {
	// RunID uniquely identifies the invocation.
	RunID string

	// Since is the watermark the run was scoped to.
	Since time.Time

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time
	FinishedAt time.Time

	// Sources holds one report per adapter, in execution order.
	Sources []SourceReport
}

// PipelineStatus is a read-only snapshot of the pipeline's persisted
// state: the global watermark and any checkpoints left by interrupted
// runs.
type PipelineStatus struct {
	// LastRun is the global watermark; zero when no run has completed.
	LastRun time.Time

	// Checkpoints holds the in-flight checkpoint of each source that
	// has one, sorted by source ID.
	Checkpoints []RunCheckpoint
}

// Failed reports whether every source failed outright.
func (r *RunResult) Failed() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for _, s := range r.Sources {
		if s.Outcome != OutcomeFailed {
			return false
		}
	}
	return true
}
