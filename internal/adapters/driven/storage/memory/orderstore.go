package memory

import (
	"context"
	"sync"
	"time"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
)

// Ensure OrderStore implements the interface.
var _ driven.OrderStore = (*OrderStore)(nil)

// OrderStore is an in-memory implementation of driven.OrderStore.
type OrderStore struct {
	mu      sync.RWMutex
	records map[string]*domain.ExecutiveOrder
}

// NewOrderStore creates an empty in-memory executive order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{records: make(map[string]*domain.ExecutiveOrder)}
}

// Get returns a copy of the stored order, or domain.ErrNotFound.
func (s *OrderStore) Get(_ context.Context, id string) (*domain.ExecutiveOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// Upsert inserts or overwrites an order keyed by ID, preserving
// createdAt on update.
func (s *OrderStore) Upsert(_ context.Context, record *domain.ExecutiveOrder) error {
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

// Len reports the number of stored orders. Test helper.
func (s *OrderStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
