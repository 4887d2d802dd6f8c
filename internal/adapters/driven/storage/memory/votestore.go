package memory

import (
	"context"
	"sync"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
)

// Ensure the stores implement their interfaces.
var (
	_ driven.VoteStore       = (*VoteStore)(nil)
	_ driven.LegislatorStore = (*LegislatorStore)(nil)
)

// VoteStore is an in-memory implementation of driven.VoteStore.
type VoteStore struct {
	mu      sync.RWMutex
	records map[string]*domain.Vote
}

// NewVoteStore creates an empty in-memory vote store.
func NewVoteStore() *VoteStore {
	return &VoteStore{records: make(map[string]*domain.Vote)}
}

// Upsert inserts or overwrites a vote keyed by ID.
func (s *VoteStore) Upsert(_ context.Context, record *domain.Vote) error {
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
	s.records[record.ID] = &clone
	return nil
}

// Get returns the stored vote, or domain.ErrNotFound. Test helper.
func (s *VoteStore) Get(id string) (*domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// Len reports the number of stored votes. Test helper.
func (s *VoteStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// LegislatorStore is an in-memory implementation of driven.LegislatorStore.
type LegislatorStore struct {
	mu      sync.RWMutex
	records map[string]*domain.Legislator
}

// NewLegislatorStore creates an empty in-memory legislator store.
func NewLegislatorStore() *LegislatorStore {
	return &LegislatorStore{records: make(map[string]*domain.Legislator)}
}

// Upsert inserts or overwrites a legislator keyed by ID.
func (s *LegislatorStore) Upsert(_ context.Context, record *domain.Legislator) error {
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
	s.records[record.ID] = &clone
	return nil
}

// Get returns the stored legislator, or domain.ErrNotFound. Test helper.
func (s *LegislatorStore) Get(id string) (*domain.Legislator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// Len reports the number of stored legislators. Test helper.
func (s *LegislatorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
