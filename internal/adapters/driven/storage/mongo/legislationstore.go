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

// Ensure LegislationStore implements the interface.
var _ driven.LegislationStore = (*LegislationStore)(nil)

// LegislationStore persists Legislation documents in the legislation
// collection.
type LegislationStore struct {
	coll *mongo.Collection
}

// Get returns the record with the given ID, or domain.ErrNotFound.
func (s *LegislationStore) Get(ctx context.Context, id string) (*domain.Legislation, error) {
	var record domain.Legislation
	err := s.coll.FindOne(ctx, bson.M{"id": id}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find legislation %s: %w", id, err)
	}
	return &record, nil
}

// Upsert inserts or updates a record keyed by its ID. Every field is
// overwritten except createdAt and id, which are only set on insert.
func (s *LegislationStore) Upsert(ctx context.Context, record *domain.Legislation) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		return domain.ErrMissingID
	}

	set, err := setDocument(record)
	if err != nil {
		return fmt.Errorf("encode legislation %s: %w", record.ID, err)
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
		return fmt.Errorf("upsert legislation %s: %w", record.ID, err)
	}
	return nil
}

// UpsertSelective overwrites only sponsors, history, enactedAt and the
// derived action fields, leaving the rest of an existing document alone.
// The historical backfill uses this so a lean re-fetch does not clobber
// richer data written by the daily sweep.
func (s *LegislationStore) UpsertSelective(ctx context.Context, record *domain.Legislation) error {
	if record == nil {
		return domain.ErrInvalidInput
	}
	if record.ID == "" {
		return domain.ErrMissingID
	}

	set := bson.M{
		"sponsors":                record.Sponsors,
		"history":                 record.History,
		"firstActionAt":           record.FirstActionAt,
		"latestActionAt":          record.LatestActionAt,
		"latestActionDescription": record.LatestActionDescription,
		"statusText":              record.StatusText,
		"enactedAt":               record.EnactedAt,
		"updatedAt":               time.Now(),
	}

	_, err := s.coll.UpdateOne(ctx,
		bson.M{"id": record.ID},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update legislation %s: %w", record.ID, err)
	}
	return nil
}

// ListIDs returns the IDs of all tracked records.
func (s *LegislationStore) ListIDs(ctx context.Context) ([]string, error) {
	cursor, err := s.coll.Find(ctx,
		bson.M{},
		options.Find().SetProjection(bson.M{"id": 1, "_id": 0}),
	)
	if err != nil {
		return nil, fmt.Errorf("list legislation ids: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode legislation id: %w", err)
		}
		if doc.ID != "" {
			ids = append(ids, doc.ID)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list legislation ids: %w", err)
	}
	return ids, nil
}

// setDocument flattens a record into the $set payload, dropping the
// insert-only fields and stamping updatedAt.
func setDocument(record any) (bson.M, error) {
	raw, err := bson.Marshal(record)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	delete(doc, "id")
	delete(doc, "createdAt")
	doc["updatedAt"] = time.Now()
	return doc, nil
}
