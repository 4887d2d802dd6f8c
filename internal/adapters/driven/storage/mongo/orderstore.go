package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/statepulse/statepulse-ingest/internal/core/domain"
	"github.com/statepulse/statepulse-ingest/internal/core/ports/driven"
)

// Ensure the stores implement their interfaces.
var (
	_ driven.OrderStore      = (*OrderStore)(nil)
	_ driven.VoteStore       = (*VoteStore)(nil)
	_ driven.LegislatorStore = (*LegislatorStore)(nil)
)

// OrderStore persists ExecutiveOrder documents.
type OrderStore struct {
	coll *mongo.Collection
}

// Get returns the order with the given ID, or domain.ErrNotFound.
func (s *OrderStore) Get(ctx context.Context, id string) (*domain.ExecutiveOrder, error) {
	var record domain.ExecutiveOrder
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find executive order %s: %w", id, err)
	}
	return &record, nil
}

// Upsert inserts or updates an order keyed by its ID.
func (s *OrderStore) Upsert(ctx context.Context, record *domain.ExecutiveOrder) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		return domain.ErrMissingID
	}

	set, err := setDocument(record)
	if err != nil {
		return fmt.Errorf("encode executive order %s: %w", record.ID, err)
	}

	_, err = s.coll.UpdateOne(ctx,
		bson.M{"id": record.ID},
		bson.M{
			"$set": set,
			"$setOnInsert": bson.M{
				"id":        record.ID,
				"createdAt": time.Now(),
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert executive order %s: %w", record.ID, err)
	}
	return nil
}

// VoteStore persists Vote documents.
type VoteStore struct {
	coll *mongo.Collection
}

// Upsert inserts or updates a vote keyed by its ID.
func (s *VoteStore) Upsert(ctx context.Context, record *domain.Vote) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		return domain.ErrMissingID
	}

	set, err := setDocument(record)
	if err != nil {
		return fmt.Errorf("encode vote %s: %w", record.ID, err)
	}

	_, err = s.coll.UpdateOne(ctx,
		bson.M{"id": record.ID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"id": record.ID},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert vote %s: %w", record.ID, err)
	}
	return nil
}

// LegislatorStore persists Legislator documents.
type LegislatorStore struct {
	coll *mongo.Collection
}

// Upsert inserts or updates a legislator keyed by its ID.
func (s *LegislatorStore) Upsert(ctx context.Context, record *domain.Legislator) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		return domain.ErrMissingID
	}

	set, err := setDocument(record)
	if err != nil {
		return fmt.Errorf("encode legislator %s: %w", record.ID, err)
	}

	_, err = s.coll.UpdateOne(ctx,
		bson.M{"id": record.ID},
		bson.M{
			"$set":         set,
			"$setOnInsert": bson.M{"id": record.ID},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert legislator %s: %w", record.ID, err)
	}
	return nil
}
