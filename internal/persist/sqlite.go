package persist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/feed"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		taken_at INTEGER NOT NULL,
		trades INTEGER NOT NULL,
		volume INTEGER NOT NULL,
		symbols INTEGER NOT NULL,
		excluded INTEGER NOT NULL,
		active_seconds INTEGER NOT NULL,
		average_rate TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS symbol_stats (
		run_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		trades INTEGER NOT NULL,
		volume INTEGER NOT NULL,
		avg_price TEXT NOT NULL,
		min_price TEXT NOT NULL,
		max_price TEXT NOT NULL,
		min_volume INTEGER NOT NULL,
		max_volume INTEGER NOT NULL,
		max_ticks_per_second INTEGER NOT NULL,
		halted INTEGER NOT NULL,
		PRIMARY KEY (run_id, symbol)
	)`,
	`CREATE TABLE IF NOT EXISTS buckets (
		run_id TEXT NOT NULL,
		symbol TEXT NOT NULL,
		second INTEGER NOT NULL,
		time TEXT NOT NULL,
		avg_price TEXT NOT NULL,
		min_price TEXT NOT NULL,
		max_price TEXT NOT NULL,
		volume INTEGER NOT NULL,
		ticks INTEGER NOT NULL,
		PRIMARY KEY (run_id, symbol, second)
	)`,
	`CREATE INDEX IF NOT EXISTS runs_taken_at ON runs (taken_at DESC)`,
}

// SQLiteSink stores runs in a local SQLite file. Prices are kept as
// decimal text.
type SQLiteSink struct {
	db  *sql.DB
	log *zap.Logger
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(path string, log *zap.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Warn("failed to set WAL mode", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		log.Warn("failed to set synchronous mode", zap.Error(err))
	}

	for _, q := range sqliteSchema {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}
	return &SQLiteSink{db: db, log: log}, nil
}

func (s *SQLiteSink) Close() error { return s.db.Close() }

// SaveRun replaces any earlier copy of runID in one transaction.
func (s *SQLiteSink) SaveRun(ctx context.Context, runID string, snap feed.Snapshot) error {
	start := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"buckets", "symbol_stats", "runs"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE run_id = ?", runID); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, taken_at, trades, volume, symbols, excluded, active_seconds, average_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, snap.TakenAt.UnixNano(), snap.Trades, snap.Volume, snap.TradedSymbols,
		snap.Excluded, snap.ActiveSeconds, snap.AverageRate.String())
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	symStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO symbol_stats (run_id, symbol, trades, volume, avg_price, min_price, max_price,
			min_volume, max_volume, max_ticks_per_second, halted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer symStmt.Close()

	bucketStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO buckets (run_id, symbol, second, time, avg_price, min_price, max_price, volume, ticks)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer bucketStmt.Close()

	nBuckets := 0
	for _, sym := range snap.Symbols {
		_, err := symStmt.ExecContext(ctx, runID, sym.Symbol, sym.Trades.Trades, sym.Trades.Volume,
			sym.Trades.AvgPrice.String(), sym.MinMax.MinPrice.String(), sym.MinMax.MaxPrice.String(),
			sym.MinMax.MinVolume, sym.MinMax.MaxVolume, sym.MaxTicksPerSecond, sym.Halted)
		if err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.Symbol, err)
		}
		for _, b := range sym.Buckets {
			_, err := bucketStmt.ExecContext(ctx, runID, sym.Symbol, b.Second, b.Time,
				b.AvgPrice.String(), b.MinPrice.String(), b.MaxPrice.String(), b.Volume, b.Ticks)
			if err != nil {
				return fmt.Errorf("insert bucket %s/%d: %w", sym.Symbol, b.Second, err)
			}
			nBuckets++
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.log.Info("run saved to SQLite",
		zap.String("run", runID),
		zap.Int("symbols", len(snap.Symbols)),
		zap.Int("buckets", nBuckets),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// ListRuns returns the most recent runs first.
func (s *SQLiteSink) ListRuns(ctx context.Context, limit int) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, taken_at, trades, volume, symbols, excluded, average_rate
		FROM runs ORDER BY taken_at DESC LIMIT ?`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunInfo{}
	for rows.Next() {
		var (
			r     RunInfo
			nanos int64
		)
		if err := rows.Scan(&r.RunID, &nanos, &r.Trades, &r.Volume, &r.Symbols, &r.Excluded, &r.AverageRate); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.TakenAt = time.Unix(0, nanos).UTC()
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunBuckets returns a symbol's stored per-second series in time order.
func (s *SQLiteSink) RunBuckets(ctx context.Context, runID, symbol string) ([]events.Bucket, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT second, time, avg_price, min_price, max_price, volume, ticks
		FROM buckets WHERE run_id = ? AND symbol = ? ORDER BY second`, runID, symbol)
	if err != nil {
		return nil, fmt.Errorf("query buckets: %w", err)
	}
	defer rows.Close()

	out := []events.Bucket{}
	for rows.Next() {
		var (
			b           events.Bucket
			avg, lo, hi string
		)
		if err := rows.Scan(&b.Second, &b.Time, &avg, &lo, &hi, &b.Volume, &b.Ticks); err != nil {
			return nil, fmt.Errorf("scan bucket: %w", err)
		}
		if b.AvgPrice, err = decimal.NewFromString(avg); err != nil {
			return nil, fmt.Errorf("bucket %d avg price: %w", b.Second, err)
		}
		if b.MinPrice, err = decimal.NewFromString(lo); err != nil {
			return nil, fmt.Errorf("bucket %d min price: %w", b.Second, err)
		}
		if b.MaxPrice, err = decimal.NewFromString(hi); err != nil {
			return nil, fmt.Errorf("bucket %d max price: %w", b.Second, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
