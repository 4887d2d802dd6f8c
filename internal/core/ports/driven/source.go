package driven

import (
	"context"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

// SourceAdapter ingests one upstream source (state legislation, federal
// bills, executive orders). Each adapter paginates its upstream, applies
// the relevance gate to new records, upserts through its stores and
// checkpoints after every page.
type SourceAdapter interface {
	// SourceID returns the adapter's stable identifier, used for
	// checkpoint files and run reports.
	SourceID() string

	// Run sweeps every partition for records updated since the given
	// watermark. It resumes from any persisted checkpoint, saves the
	// checkpoint after every page and clears it on clean completion.
	// Failures never escape: they are carried in the report's Outcome
	// and Errors so one source cannot abort its siblings.
	Run(ctx context.Context, since time.Time) domain.SourceReport
}

// Summariser generates summaries for admitted records. It is an external
// collaborator; the pipeline only records that generation is pending by
// inserting records with an empty summary.
type Summariser interface {
	// Summarise returns a generated summary for the given record text.
	Summarise(ctx context.Context, title, text string) (string, error)
}
