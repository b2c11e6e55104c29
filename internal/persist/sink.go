// Package persist stores finished runs. MongoDB keeps a history of runs for
// shared use; SQLite keeps a local file next to the plotting tools.
package persist

import (
	"context"
	"time"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/feed"
)

// Sink stores a finished run under runID. Saving the same runID twice
// replaces the earlier copy.
type Sink interface {
	SaveRun(ctx context.Context, runID string, snap feed.Snapshot) error
}

// RunReader abstracts read-only queries over stored runs.
type RunReader interface {
	ListRuns(ctx context.Context, limit int) ([]RunInfo, error)
	RunBuckets(ctx context.Context, runID, symbol string) ([]events.Bucket, error)
}

// RunInfo is the stored header of a run.
type RunInfo struct {
	RunID       string    `json:"runId"`
	TakenAt     time.Time `json:"takenAt"`
	Trades      int64     `json:"trades"`
	Volume      int64     `json:"volume"`
	Symbols     int       `json:"symbols"`
	Excluded    int64     `json:"excluded"`
	AverageRate string    `json:"averageRate"`
}

const (
	defaultListLimit = 20
	maxListLimit     = 500
)

func clampLimit(n int) int {
	if n <= 0 || n > maxListLimit {
		return defaultListLimit
	}
	return n
}
