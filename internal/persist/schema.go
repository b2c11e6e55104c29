package persist

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Collection names.
const (
	collRuns    = "runs"
	collSymbols = "symbol_stats"
	collBuckets = "buckets"
)

// EnsureIndexes creates idempotent indexes on all collections.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	type idx struct {
		collection string
		model      mongo.IndexModel
	}

	indexes := []idx{
		{
			collection: collRuns,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "run_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: collRuns,
			model: mongo.IndexModel{
				Keys: bson.D{{Key: "taken_at", Value: -1}},
			},
		},
		{
			collection: collSymbols,
			model: mongo.IndexModel{
				Keys: bson.D{
					{Key: "run_id", Value: 1},
					{Key: "symbol", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
		{
			collection: collBuckets,
			model: mongo.IndexModel{
				Keys: bson.D{
					{Key: "run_id", Value: 1},
					{Key: "symbol", Value: 1},
					{Key: "second", Value: 1},
				},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for _, i := range indexes {
		if _, err := db.Collection(i.collection).Indexes().CreateOne(ctx, i.model); err != nil {
			return fmt.Errorf("create index on %s: %w", i.collection, err)
		}
	}
	return nil
}
