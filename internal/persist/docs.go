package persist

import (
	"fmt"
	"time"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/feed"
	"github.com/ndrandal/taqfeed/internal/stats"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// Stored decimals are rounded to this many places; Decimal128 holds 34
// significant digits.
const storedPlaces = 12

type runDoc struct {
	RunID         string           `bson:"run_id"`
	TakenAt       time.Time        `bson:"taken_at"`
	Messages      map[string]int64 `bson:"messages"`
	Excluded      int64            `bson:"excluded"`
	Trades        int64            `bson:"trades"`
	Volume        int64            `bson:"volume"`
	Symbols       int              `bson:"symbols"`
	ActiveSeconds int              `bson:"active_seconds"`
	AverageRate   bson.Decimal128  `bson:"average_rate"`
	TopActive     []stats.Rank     `bson:"top_active"`
	TopVolume     []stats.Rank     `bson:"top_volume"`
}

type symbolDoc struct {
	RunID             string          `bson:"run_id"`
	Symbol            string          `bson:"symbol"`
	Trades            int64           `bson:"trades"`
	Volume            int64           `bson:"volume"`
	AvgPrice          bson.Decimal128 `bson:"avg_price"`
	MinPrice          bson.Decimal128 `bson:"min_price"`
	MaxPrice          bson.Decimal128 `bson:"max_price"`
	MinVolume         int64           `bson:"min_volume"`
	MaxVolume         int64           `bson:"max_volume"`
	MaxTicksPerSecond int             `bson:"max_ticks_per_second"`
	Buckets           int             `bson:"buckets"`
	Halted            bool            `bson:"halted"`
}

type bucketDoc struct {
	RunID    string          `bson:"run_id"`
	Symbol   string          `bson:"symbol"`
	Second   int64           `bson:"second"`
	Time     string          `bson:"time"`
	AvgPrice bson.Decimal128 `bson:"avg_price"`
	MinPrice bson.Decimal128 `bson:"min_price"`
	MaxPrice bson.Decimal128 `bson:"max_price"`
	Volume   int64           `bson:"volume"`
	Ticks    int             `bson:"ticks"`
}

func dec128(d decimal.Decimal) (bson.Decimal128, error) {
	v, err := bson.ParseDecimal128(d.Round(storedPlaces).String())
	if err != nil {
		return bson.Decimal128{}, fmt.Errorf("decimal128 %s: %w", d, err)
	}
	return v, nil
}

func fromDec128(v bson.Decimal128) (decimal.Decimal, error) {
	return decimal.NewFromString(v.String())
}

func newRunDoc(runID string, snap feed.Snapshot) (runDoc, error) {
	rate, err := dec128(snap.AverageRate)
	if err != nil {
		return runDoc{}, err
	}
	return runDoc{
		RunID:         runID,
		TakenAt:       snap.TakenAt,
		Messages:      snap.Messages,
		Excluded:      snap.Excluded,
		Trades:        snap.Trades,
		Volume:        snap.Volume,
		Symbols:       snap.TradedSymbols,
		ActiveSeconds: snap.ActiveSeconds,
		AverageRate:   rate,
		TopActive:     snap.TopActive,
		TopVolume:     snap.TopVolume,
	}, nil
}

func newSymbolDoc(runID string, s feed.SymbolSummary) (symbolDoc, error) {
	doc := symbolDoc{
		RunID:             runID,
		Symbol:            s.Symbol,
		Trades:            s.Trades.Trades,
		Volume:            s.Trades.Volume,
		MinVolume:         s.MinMax.MinVolume,
		MaxVolume:         s.MinMax.MaxVolume,
		MaxTicksPerSecond: s.MaxTicksPerSecond,
		Buckets:           len(s.Buckets),
		Halted:            s.Halted,
	}
	var err error
	if doc.AvgPrice, err = dec128(s.Trades.AvgPrice); err != nil {
		return doc, err
	}
	if doc.MinPrice, err = dec128(s.MinMax.MinPrice); err != nil {
		return doc, err
	}
	if doc.MaxPrice, err = dec128(s.MinMax.MaxPrice); err != nil {
		return doc, err
	}
	return doc, nil
}

func newBucketDoc(runID, symbol string, b events.Bucket) (bucketDoc, error) {
	doc := bucketDoc{
		RunID:  runID,
		Symbol: symbol,
		Second: b.Second,
		Time:   b.Time,
		Volume: b.Volume,
		Ticks:  b.Ticks,
	}
	var err error
	if doc.AvgPrice, err = dec128(b.AvgPrice); err != nil {
		return doc, err
	}
	if doc.MinPrice, err = dec128(b.MinPrice); err != nil {
		return doc, err
	}
	if doc.MaxPrice, err = dec128(b.MaxPrice); err != nil {
		return doc, err
	}
	return doc, nil
}

func (d bucketDoc) bucket() (events.Bucket, error) {
	b := events.Bucket{Second: d.Second, Time: d.Time, Volume: d.Volume, Ticks: d.Ticks}
	var err error
	if b.AvgPrice, err = fromDec128(d.AvgPrice); err != nil {
		return b, err
	}
	if b.MinPrice, err = fromDec128(d.MinPrice); err != nil {
		return b, err
	}
	if b.MaxPrice, err = fromDec128(d.MaxPrice); err != nil {
		return b, err
	}
	return b, nil
}

func (d runDoc) info() RunInfo {
	return RunInfo{
		RunID:       d.RunID,
		TakenAt:     d.TakenAt,
		Trades:      d.Trades,
		Volume:      d.Volume,
		Symbols:     d.Symbols,
		Excluded:    d.Excluded,
		AverageRate: d.AverageRate.String(),
	}
}
