// Package memory provides in-memory store implementations for tests and
// dry runs. Semantics mirror the document store: upserts key on the
// record ID, createdAt is set once on insert and never touched again.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
)

// Ensure LegislationStore implements the interface.
var _ driven.LegislationStore = (*LegislationStore)(nil)

// LegislationStore is an in-memory implementation of driven.LegislationStore.
type LegislationStore struct {
	mu      sync.RWMutex
	records map[string]*domain.Legislation
}

// NewLegislationStore creates an empty in-memory legislation store.
func NewLegislationStore() *LegislationStore {
	return &LegislationStore{records: make(map[string]*domain.Legislation)}
}

// Get returns a copy of the stored record, or domain.ErrNotFound.
func (s *LegislationStore) Get(_ context.Context, id string) (*domain.Legislation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// Upsert inserts or fully overwrites a record keyed by ID. CreatedAt is
// preserved from the existing record on update.
func (s *LegislationStore) Upsert(_ context.Context, record *domain.Legislation) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		return domain.ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	clone.UpdatedAt = time.Now()
	if existing, ok := s.records[record.ID]; ok {
		clone.CreatedAt = existing.CreatedAt
	} else if clone.CreatedAt.IsZero() {
		clone.CreatedAt = time.Now()
	}
	s.records[record.ID] = &clone
	return nil
}

// UpsertSelective overwrites only sponsors, history, enactedAt and the
// derived action fields of an existing record. Missing records get a
// full insert instead.
func (s *LegislationStore) UpsertSelective(_ context.Context, record *domain.Legislation) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		return domain.ErrMissingID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[record.ID]
	if !ok {
		clone := *record
		if clone.CreatedAt.IsZero() {
			clone.CreatedAt = time.Now()
		}
		clone.UpdatedAt = time.Now()
		s.records[record.ID] = &clone
		return nil
	}

	updated := *existing
	updated.Sponsors = record.Sponsors
	updated.History = record.History
	updated.FirstActionAt = record.FirstActionAt
	updated.LatestActionAt = record.LatestActionAt
	updated.LatestActionDescription = record.LatestActionDescription
	updated.StatusText = record.StatusText
	updated.EnactedAt = record.EnactedAt
	updated.UpdatedAt = time.Now()
	s.records[record.ID] = &updated
	return nil
}

// ListIDs returns all stored record IDs, sorted for stable output.
func (s *LegislationStore) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Len reports the number of stored records. Test helper.
func (s *LegislationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
