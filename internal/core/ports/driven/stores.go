package driven

import (
	"context"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
)

// LegislationStore persists Legislation records.
//
// Upsert filters by the record's ID, overwrites every provided field and
// sets createdAt (and id) only on first insert. Re-upserting identical
// input must produce no net change beyond updatedAt.
type LegislationStore interface {
	// Get returns the record with the given ID, or domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Legislation, error)

	// Upsert inserts or updates a record keyed by its ID.
	Upsert(ctx context.Context, record *domain.Legislation) error

	// UpsertSelective overwrites only sponsors, history, enactedAt and
	// the derived action fields of an existing record. Used by the
	// historical backfill so a full re-fetch does not clobber richer
	// data already present.
	UpsertSelective(ctx context.Context, record *domain.Legislation) error

	// ListIDs returns the IDs of all tracked records.
	ListIDs(ctx context.Context) ([]string, error)
}

// OrderStore persists ExecutiveOrder records with the same upsert
// semantics as LegislationStore.
type OrderStore interface {
	Get(ctx context.Context, id string) (*domain.ExecutiveOrder, error)
	Upsert(ctx context.Context, record *domain.ExecutiveOrder) error
}

// VoteStore persists Vote records.
type VoteStore interface {
	Upsert(ctx context.Context, record *domain.Vote) error
}

// LegislatorStore persists Legislator records.
type LegislatorStore interface {
	Upsert(ctx context.Context, record *domain.Legislator) error
}
