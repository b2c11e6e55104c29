package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/feed"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

const insertBatch = 5000

// MongoSink stores runs in three collections: runs, symbol_stats, buckets.
type MongoSink struct {
	store *Store
	log   *zap.Logger
}

func NewMongoSink(store *Store, log *zap.Logger) *MongoSink {
	return &MongoSink{store: store, log: log}
}

// SaveRun writes the bucket series first, then replaces the run header and
// symbol stats in one transaction. Buckets stay outside the transaction: a
// full session can exceed its size limit. A run header only becomes visible
// once its buckets are in place.
func (m *MongoSink) SaveRun(ctx context.Context, runID string, snap feed.Snapshot) error {
	start := time.Now()
	db := m.store.db

	run, err := newRunDoc(runID, snap)
	if err != nil {
		return err
	}
	symbols := make([]any, 0, len(snap.Symbols))
	for _, s := range snap.Symbols {
		doc, err := newSymbolDoc(runID, s)
		if err != nil {
			return fmt.Errorf("symbol %s: %w", s.Symbol, err)
		}
		symbols = append(symbols, doc)
	}

	if _, err := db.Collection(collBuckets).DeleteMany(ctx, bson.M{"run_id": runID}); err != nil {
		return fmt.Errorf("delete buckets: %w", err)
	}
	nBuckets, err := m.insertBuckets(ctx, runID, snap.Symbols)
	if err != nil {
		return err
	}

	session, err := m.store.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc context.Context) (any, error) {
		if _, err := db.Collection(collSymbols).DeleteMany(sc, bson.M{"run_id": runID}); err != nil {
			return nil, fmt.Errorf("delete symbol stats: %w", err)
		}
		if len(symbols) > 0 {
			if _, err := db.Collection(collSymbols).InsertMany(sc, symbols); err != nil {
				return nil, fmt.Errorf("insert symbol stats: %w", err)
			}
		}
		opts := options.UpdateOne().SetUpsert(true)
		if _, err := db.Collection(collRuns).UpdateOne(sc, bson.M{"run_id": runID}, bson.M{"$set": run}, opts); err != nil {
			return nil, fmt.Errorf("upsert run: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("save run transaction: %w", err)
	}

	m.log.Info("run saved to MongoDB",
		zap.String("run", runID),
		zap.Int("symbols", len(symbols)),
		zap.Int("buckets", nBuckets),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

func (m *MongoSink) insertBuckets(ctx context.Context, runID string, syms []feed.SymbolSummary) (int, error) {
	coll := m.store.db.Collection(collBuckets)
	opts := options.InsertMany().SetOrdered(false)
	batch := make([]any, 0, insertBatch)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := coll.InsertMany(ctx, batch, opts); err != nil {
			return fmt.Errorf("insert buckets: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, s := range syms {
		for _, b := range s.Buckets {
			doc, err := newBucketDoc(runID, s.Symbol, b)
			if err != nil {
				return total, fmt.Errorf("bucket %s/%d: %w", s.Symbol, b.Second, err)
			}
			batch = append(batch, doc)
			if len(batch) == insertBatch {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
	return total, flush()
}

// ListRuns returns the most recent runs first.
func (m *MongoSink) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "taken_at", Value: -1}}).
		SetLimit(int64(clampLimit(limit)))

	cursor, err := m.store.db.Collection(collRuns).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []runDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode runs: %w", err)
	}
	runs := make([]RunInfo, len(docs))
	for i, d := range docs {
		runs[i] = d.info()
	}
	return runs, nil
}

// RunBuckets returns a symbol's stored per-second series in time order.
func (m *MongoSink) RunBuckets(ctx context.Context, runID, symbol string) ([]events.Bucket, error) {
	filter := bson.M{"run_id": runID, "symbol": symbol}
	opts := options.Find().SetSort(bson.D{{Key: "second", Value: 1}})

	cursor, err := m.store.db.Collection(collBuckets).Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []bucketDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode buckets: %w", err)
	}
	out := make([]events.Bucket, 0, len(docs))
	for _, d := range docs {
		b, err := d.bucket()
		if err != nil {
			return nil, fmt.Errorf("bucket %d: %w", d.Second, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// Prune deletes runs older than retentionDays together with their symbol
// stats and buckets. retentionDays <= 0 keeps everything.
func (m *MongoSink) Prune(ctx context.Context, retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	db := m.store.db

	cursor, err := db.Collection(collRuns).Find(ctx, bson.M{"taken_at": bson.M{"$lt": cutoff}},
		options.Find().SetProjection(bson.M{"run_id": 1}))
	if err != nil {
		return 0, fmt.Errorf("query expired runs: %w", err)
	}
	var expired []struct {
		RunID string `bson:"run_id"`
	}
	if err := cursor.All(ctx, &expired); err != nil {
		return 0, fmt.Errorf("decode expired runs: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make(bson.A, len(expired))
	for i, e := range expired {
		ids[i] = e.RunID
	}
	filter := bson.M{"run_id": bson.M{"$in": ids}}
	for _, coll := range []string{collBuckets, collSymbols, collRuns} {
		if _, err := db.Collection(coll).DeleteMany(ctx, filter); err != nil {
			return 0, fmt.Errorf("prune %s: %w", coll, err)
		}
	}

	m.log.Info("pruned expired runs", zap.Int("runs", len(expired)), zap.String("before", cutoff.Format(time.DateOnly)))
	return len(expired), nil
}

var (
	_ Sink      = (*MongoSink)(nil)
	_ RunReader = (*MongoSink)(nil)
	_ Sink      = (*SQLiteSink)(nil)
	_ RunReader = (*SQLiteSink)(nil)
)

