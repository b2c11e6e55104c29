// Package api serves a finished run read-only over HTTP for plotting tools.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/feed"
	"github.com/ndrandal/taqfeed/internal/persist"
	"github.com/ndrandal/taqfeed/internal/stats"
	"github.com/ndrandal/taqfeed/internal/symbol"
	"github.com/ndrandal/taqfeed/internal/taq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultTop = 10

// Source is the read side of a processed run. *feed.Processor satisfies it.
type Source interface {
	Tickers() []string
	EventList(ticker string) (*events.EventList, bool)
	Entry(ticker string) (symbol.Entry, bool)
	TradeStats(ticker string) (stats.SymbolTrades, bool)
	Rank(ticker string) (stats.Rank, bool)
	TopActive(k int) []stats.Rank
	TopVolume(k int) []stats.Rank
	Summary(k int) feed.Summary
}

// Server provides REST API endpoints over one run.
type Server struct {
	src     Source
	runs    persist.RunReader // nil when no database is configured
	log     *zap.Logger
	startAt time.Time
}

// NewServer creates a new API server. runs may be nil.
func NewServer(src Source, runs persist.RunReader, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		src:     src,
		runs:    runs,
		log:     log,
		startAt: time.Now(),
	}
}

// Register attaches API routes to the given mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/symbols", s.handleSymbols)
	mux.HandleFunc("GET /api/symbols/{ticker}", s.handleSymbolDetail)
	mux.HandleFunc("GET /api/series/{ticker}", s.handleSeries)
	mux.HandleFunc("GET /api/buckets/{ticker}", s.handleBuckets)
	mux.HandleFunc("GET /api/minmax/{ticker}", s.handleMinMax)
	mux.HandleFunc("GET /api/top/active", s.handleTopActive)
	mux.HandleFunc("GET /api/top/volume", s.handleTopVolume)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/runs", s.handleRuns)
	mux.HandleFunc("GET /api/runs/{id}/buckets/{ticker}", s.handleRunBuckets)
	mux.HandleFunc("GET /api/stream/{ticker}", s.handleStream)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// resolveTicker looks up a symbol's event list, writing a 404 if the
// ticker was never mapped. Returns nil if not found (error already written).
func (s *Server) resolveTicker(w http.ResponseWriter, ticker string) *events.EventList {
	l, ok := s.src.EventList(ticker)
	if !ok {
		writeError(w, http.StatusNotFound, "symbol not found: "+ticker)
		return nil
	}
	return l
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// parseTimeParam parses an HH:MM:SS[.fff] query parameter into seconds
// since midnight.
func parseTimeParam(r *http.Request, key string) (decimal.Decimal, bool) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return decimal.Zero, false
	}
	d, err := taq.ParseTime(v)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// window is an optional [from, to) time filter.
type window struct {
	from, to       decimal.Decimal
	hasFrom, hasTo bool
}

func parseWindow(r *http.Request) window {
	var w window
	w.from, w.hasFrom = parseTimeParam(r, "from")
	w.to, w.hasTo = parseTimeParam(r, "to")
	return w
}

func (w window) contains(secs decimal.Decimal) bool {
	if w.hasFrom && secs.LessThan(w.from) {
		return false
	}
	if w.hasTo && !secs.LessThan(w.to) {
		return false
	}
	return true
}
