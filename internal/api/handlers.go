package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/feed"
	"github.com/ndrandal/taqfeed/internal/stats"
	"github.com/shopspring/decimal"
)

type symbolInfo struct {
	Ticker  string `json:"ticker"`
	Ticks   int64  `json:"ticks"`
	Volume  int64  `json:"volume"`
	Buckets int    `json:"buckets"`
	Halted  bool   `json:"halted"`
}

// handleSymbols returns every mapped symbol with its activity counters.
func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	tickers := s.src.Tickers()
	out := make([]symbolInfo, 0, len(tickers))
	for _, t := range tickers {
		out = append(out, s.info(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) info(ticker string) symbolInfo {
	si := symbolInfo{Ticker: ticker}
	if rk, ok := s.src.Rank(ticker); ok {
		si.Ticks = rk.Ticks
		si.Volume = rk.Volume
	}
	if l, ok := s.src.EventList(ticker); ok {
		si.Buckets = l.Len()
	}
	if e, ok := s.src.Entry(ticker); ok {
		si.Halted = e.Halted
	}
	return si
}

type symbolDetail struct {
	symbolInfo
	Market         string             `json:"market"`
	SecurityType   string             `json:"securityType"`
	PrevClosePrice decimal.Decimal    `json:"prevClosePrice"`
	Status         string             `json:"status,omitempty"`
	StatusUpdates  int                `json:"statusUpdates"`
	AvgPrice       decimal.Decimal    `json:"avgPrice"`
	MaxTicksPerSec int                `json:"maxTicksPerSecond"`
	Trades         stats.SymbolTrades `json:"trades"`
	FirstTradeTime string             `json:"firstTradeTime,omitempty"`
	LastTradeTime  string             `json:"lastTradeTime,omitempty"`
}

// handleSymbolDetail returns reference data, status and totals for one symbol.
func (s *Server) handleSymbolDetail(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	l := s.resolveTicker(w, ticker)
	if l == nil {
		return
	}

	d := symbolDetail{
		symbolInfo:     s.info(ticker),
		AvgPrice:       l.AveragePrice(),
		MaxTicksPerSec: l.MaxTicksPerSecond(),
	}
	if e, ok := s.src.Entry(ticker); ok {
		d.Market = e.Mapping.MarketID.String()
		d.SecurityType = e.Mapping.SecurityType.String()
		d.PrevClosePrice = e.Mapping.PrevClosePrice
		d.StatusUpdates = e.Updates
		if e.Status != nil {
			d.Status = e.Status.Status.String()
		}
	}
	if tr, ok := s.src.TradeStats(ticker); ok {
		d.Trades = tr
	}
	if b := l.BucketedSeries(); len(b) > 0 {
		d.FirstTradeTime = b[0].Time
		d.LastTradeTime = b[len(b)-1].Time
	}

	writeJSON(w, http.StatusOK, d)
}

// handleSeries returns the per-tick series, optionally within
// ?from=HH:MM:SS&to=HH:MM:SS and capped by ?limit.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	l := s.resolveTicker(w, r.PathValue("ticker"))
	if l == nil {
		return
	}
	win := parseWindow(r)
	limit := parseIntParam(r, "limit", 0)

	out := []events.MicroEvent{}
	for _, m := range l.TimeSeries() {
		if !win.contains(m.Seconds) {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleBuckets returns the per-second series.
func (s *Server) handleBuckets(w http.ResponseWriter, r *http.Request) {
	l := s.resolveTicker(w, r.PathValue("ticker"))
	if l == nil {
		return
	}
	win := parseWindow(r)

	out := []events.Bucket{}
	for _, b := range l.BucketedSeries() {
		if win.contains(decimal.NewFromInt(b.Second)) {
			out = append(out, b)
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMinMax returns price and volume extrema across a symbol's buckets.
func (s *Server) handleMinMax(w http.ResponseWriter, r *http.Request) {
	ticker := r.PathValue("ticker")
	l := s.resolveTicker(w, ticker)
	if l == nil {
		return
	}
	mm, ok := l.MinMax()
	if !ok {
		writeError(w, http.StatusNotFound, "no trades for symbol: "+ticker)
		return
	}
	writeJSON(w, http.StatusOK, mm)
}

func (s *Server) handleTopActive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.src.TopActive(parseIntParam(r, "k", defaultTop))))
}

func (s *Server) handleTopVolume(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, nonNil(s.src.TopVolume(parseIntParam(r, "k", defaultTop))))
}

func nonNil(r []stats.Rank) []stats.Rank {
	if r == nil {
		return []stats.Rank{}
	}
	return r
}

type statsResponse struct {
	feed.Summary
	Uptime string `json:"uptime"`
}

// handleStats returns the run summary.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statsResponse{
		Summary: s.src.Summary(parseIntParam(r, "k", defaultTop)),
		Uptime:  time.Since(s.startAt).Truncate(time.Second).String(),
	})
}

// handleRuns lists stored runs, newest first.
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	runs, err := s.runs.ListRuns(ctx, parseIntParam(r, "limit", 20))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleRunBuckets returns a stored run's per-second series for one symbol.
func (s *Server) handleRunBuckets(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusServiceUnavailable, "no run store configured")
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	buckets, err := s.runs.RunBuckets(ctx, r.PathValue("id"), r.PathValue("ticker"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(buckets) == 0 {
		writeError(w, http.StatusNotFound, "no buckets for run/symbol")
		return
	}
	writeJSON(w, http.StatusOK, buckets)
}
