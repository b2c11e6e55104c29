package stats

import (
	"sort"

	"github.com/ndrandal/taqfeed/internal/taq"
	"github.com/shopspring/decimal"
)

// SymbolTrades is the per-symbol view of TradeStats.
type SymbolTrades struct {
	Symbol   string          `json:"symbol"`
	Trades   int64           `json:"trades"`
	Volume   int64           `json:"volume"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
}

// SecondCount is one point of the arrival-rate histogram.
type SecondCount struct {
	Second int64 `json:"second"`
	Trades int64 `json:"trades"`
}

type symbolTrades struct {
	trades   int64
	volume   int64
	priceSum decimal.Decimal
}

// TradeStats accumulates accepted trades.
type TradeStats struct {
	symbols   map[string]*symbolTrades
	perSecond map[int64]int64
	trades    int64
	volume    int64
}

func NewTradeStats() *TradeStats {
	return &TradeStats{
		symbols:   make(map[string]*symbolTrades),
		perSecond: make(map[int64]int64),
	}
}

// Add records one accepted trade.
func (s *TradeStats) Add(t *taq.TradeRecord) {
	st, ok := s.symbols[t.Symbol]
	if !ok {
		st = &symbolTrades{}
		s.symbols[t.Symbol] = st
	}
	st.trades++
	st.volume += t.Volume
	st.priceSum = st.priceSum.Add(t.Price)

	s.perSecond[t.Second()]++
	s.trades++
	s.volume += t.Volume
}

func (s *TradeStats) TradeCount() int64 { return s.trades }

func (s *TradeStats) TotalVolume() int64 { return s.volume }

// SymbolCount is the number of distinct symbols that traded.
func (s *TradeStats) SymbolCount() int { return len(s.symbols) }

// ActiveSeconds is the number of distinct seconds with at least one trade.
func (s *TradeStats) ActiveSeconds() int { return len(s.perSecond) }

// AverageRate is trades per active second, zero before any trade.
func (s *TradeStats) AverageRate() decimal.Decimal {
	if len(s.perSecond) == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.trades).Div(decimal.NewFromInt(int64(len(s.perSecond))))
}

// Symbol returns one symbol's totals.
func (s *TradeStats) Symbol(symbol string) (SymbolTrades, bool) {
	st, ok := s.symbols[symbol]
	if !ok {
		return SymbolTrades{Symbol: symbol}, false
	}
	return SymbolTrades{
		Symbol:   symbol,
		Trades:   st.trades,
		Volume:   st.volume,
		AvgPrice: st.priceSum.Div(decimal.NewFromInt(st.trades)),
	}, true
}

// Histogram returns per-second trade counts in ascending time.
func (s *TradeStats) Histogram() []SecondCount {
	out := make([]SecondCount, 0, len(s.perSecond))
	for sec, n := range s.perSecond {
		out = append(out, SecondCount{Second: sec, Trades: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Second < out[j].Second })
	return out
}
