// Package mongo implements the document store ports on MongoDB.
//
// Upserts filter on the "id" field (not Mongo's _id), $set every provided
// field and $setOnInsert createdAt and id, so re-ingesting a record never
// resets its creation time.
package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names. These are the collections the dashboard reads;
// renaming one silently orphans everything already stored under it.
const (
	legislationCollection = "legislation"
	ordersCollection      = "executive_orders"
	votesCollection       = "votes"
	legislatorsCollection = "legislators"
)

const connectTimeout = 10 * time.Second

// Connect opens a client, pings the primary and returns a handle to the
// named database. The caller owns Close.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	if uri == "" || dbName == "" {
		return nil, fmt.Errorf("mongo uri and database name are required")
	}

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &DB{client: client, db: client.Database(dbName)}, nil
}

// DB wraps a connected Mongo database and hands out store adapters.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Close disconnects the underlying client.
func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// Legislation returns the legislation store backed by this database.
func (d *DB) Legislation() *LegislationStore {
	return &LegislationStore{coll: d.db.Collection(legislationCollection)}
}

// Orders returns the executive order store backed by this database.
func (d *DB) Orders() *OrderStore {
	return &OrderStore{coll: d.db.Collection(ordersCollection)}
}

// Votes returns the vote store backed by this database.
func (d *DB) Votes() *VoteStore {
	return &VoteStore{coll: d.db.Collection(votesCollection)}
}

// Legislators returns the legislator store backed by this database.
func (d *DB) Legislators() *LegislatorStore {
	return &LegislatorStore{coll: d.db.Collection(legislatorsCollection)}
}
