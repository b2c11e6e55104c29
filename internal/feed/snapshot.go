package feed

import (
	"sort"
	"time"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/stats"
	"github.com/shopspring/decimal"
)

// Variety is how many distinct tick-to-tick price changes a symbol showed.
type Variety struct {
	Symbol   string `json:"symbol"`
	Distinct int    `json:"distinct"`
}

// Summary is the cross-symbol view of a run.
type Summary struct {
	Messages      map[string]int64 `json:"messages"`
	Excluded      int64            `json:"excluded"`
	StatusDropped int64            `json:"statusDropped"`
	Trades        int64            `json:"trades"`
	Volume        int64            `json:"volume"`
	Registered    int              `json:"registered"`
	TradedSymbols int              `json:"tradedSymbols"`
	ActiveSeconds int              `json:"activeSeconds"`
	AverageRate   decimal.Decimal  `json:"averageRate"`
	Halted        []string         `json:"halted"`
	TopActive     []stats.Rank     `json:"topActive"`
	TopVolume     []stats.Rank     `json:"topVolume"`
	TopVariety    []Variety        `json:"topVariety"`
}

// SymbolSummary is everything a sink stores for one symbol.
type SymbolSummary struct {
	Symbol            string             `json:"symbol"`
	Trades            stats.SymbolTrades `json:"trades"`
	Buckets           []events.Bucket    `json:"buckets"`
	MinMax            events.MinMax      `json:"minMax"`
	MaxTicksPerSecond int                `json:"maxTicksPerSecond"`
	Halted            bool               `json:"halted"`
}

// Snapshot is an immutable copy of a finished run.
type Snapshot struct {
	Summary
	TakenAt time.Time       `json:"takenAt"`
	Symbols []SymbolSummary `json:"symbols"`
}

// Summary computes the run totals and the top k rankings.
func (p *Processor) Summary(k int) Summary {
	return Summary{
		Messages:      p.msgs.Counts(),
		Excluded:      p.excluded,
		StatusDropped: p.statusDropped,
		Trades:        p.trades.TradeCount(),
		Volume:        p.trades.TotalVolume(),
		Registered:    p.agg.Len(),
		TradedSymbols: p.trades.SymbolCount(),
		ActiveSeconds: p.trades.ActiveSeconds(),
		AverageRate:   p.trades.AverageRate(),
		Halted:        p.directory.Halted(),
		TopActive:     p.ranks.TopActive(k),
		TopVolume:     p.ranks.TopVolume(k),
		TopVariety:    p.topVariety(k),
	}
}

// Snapshot copies the summary plus per-symbol series of every symbol that
// traded.
func (p *Processor) Snapshot(k int) Snapshot {
	snap := Snapshot{Summary: p.Summary(k), TakenAt: time.Now().UTC()}
	for _, sym := range p.agg.Symbols() {
		l, _ := p.agg.List(sym)
		if l.TickCount() == 0 {
			continue
		}
		tr, _ := p.trades.Symbol(sym)
		mm, _ := l.MinMax()
		e, _ := p.directory.Lookup(sym)
		snap.Symbols = append(snap.Symbols, SymbolSummary{
			Symbol:            sym,
			Trades:            tr,
			Buckets:           l.BucketedSeries(),
			MinMax:            mm,
			MaxTicksPerSecond: l.MaxTicksPerSecond(),
			Halted:            e.Halted,
		})
	}
	return snap
}

// topVariety ranks symbols by distinct price changes, ties by symbol.
func (p *Processor) topVariety(k int) []Variety {
	if k <= 0 {
		return nil
	}
	var vs []Variety
	for _, sym := range p.agg.Symbols() {
		l, _ := p.agg.List(sym)
		if n := len(l.PriceChanges()); n > 0 {
			vs = append(vs, Variety{Symbol: sym, Distinct: n})
		}
	}
	sort.SliceStable(vs, func(i, j int) bool { return vs[i].Distinct > vs[j].Distinct })
	if len(vs) > k {
		vs = vs[:k]
	}
	return vs
}
