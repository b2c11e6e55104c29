// Package feed drives TAQ lines through decoding, filtering, aggregation and
// statistics.
package feed

import (
	"fmt"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/stats"
	"github.com/ndrandal/taqfeed/internal/symbol"
	"github.com/ndrandal/taqfeed/internal/taq"

	"go.uber.org/zap"
)

// Processor owns all state of one run. It is not safe for concurrent use
// while lines are being processed; once a run is finished its read methods
// may be called from any goroutine.
type Processor struct {
	Policy Policy

	log       *zap.Logger
	msgs      *stats.MsgStats
	trades    *stats.TradeStats
	ranks     *stats.SymbolStats
	agg       *events.Aggregator
	directory *symbol.Directory

	excluded      int64
	statusDropped int64
}

// NewProcessor creates an empty processor. A nil logger discards output.
func NewProcessor(log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		log:       log,
		msgs:      stats.NewMsgStats(),
		trades:    stats.NewTradeStats(),
		ranks:     stats.NewSymbolStats(),
		agg:       events.NewAggregator(),
		directory: symbol.NewDirectory(),
	}
}

// ProcessLine classifies, decodes and applies one raw line. Every line is
// counted by kind before decoding, so lines that fail still show up in the
// message counts.
func (p *Processor) ProcessLine(line string) error {
	tokens := taq.Split(line)
	kind := taq.Classify(tokens[0])
	p.msgs.Add(kind)

	switch kind {
	case taq.MsgSymbolIndexMapping:
		m, err := taq.DecodeSymbolMapping(tokens)
		if err != nil {
			return err
		}
		p.register(m)
		return nil

	case taq.MsgSecurityStatus:
		s, err := taq.DecodeSecurityStatus(tokens)
		if err != nil {
			return err
		}
		if !p.directory.ApplyStatus(s) {
			p.statusDropped++
			p.log.Debug("status for unmapped symbol", zap.String("symbol", s.Symbol))
		}
		return nil

	case taq.MsgTrade:
		t, err := taq.DecodeTrade(tokens)
		if err != nil {
			return err
		}
		return p.addTrade(t)

	default:
		return fmt.Errorf("%w: %q", taq.ErrUnknownMessageType, tokens[0])
	}
}

func (p *Processor) register(m *taq.SymbolMapping) {
	p.directory.Map(m)
	if p.agg.Register(m.Symbol) {
		p.ranks.Register(m.Symbol)
	}
}

// addTrade applies the administrative-print filter, then updates the
// aggregator before any counter so that a rejected trade changes nothing.
func (p *Processor) addTrade(t *taq.TradeRecord) error {
	if t.Excluded() {
		p.excluded++
		return nil
	}
	if err := p.agg.AddTrade(t); err != nil {
		return err
	}
	p.trades.Add(t)
	return p.ranks.Update(t.Symbol, t.Volume)
}

// Tickers returns registered symbols in lexical order.
func (p *Processor) Tickers() []string { return p.agg.Symbols() }

// EventList returns the symbol's bucketed events.
func (p *Processor) EventList(ticker string) (*events.EventList, bool) {
	return p.agg.List(ticker)
}

// Entry returns the symbol's directory entry.
func (p *Processor) Entry(ticker string) (symbol.Entry, bool) {
	return p.directory.Lookup(ticker)
}

// TradeStats returns one symbol's trade totals.
func (p *Processor) TradeStats(ticker string) (stats.SymbolTrades, bool) {
	return p.trades.Symbol(ticker)
}

// Rank returns one symbol's activity counters.
func (p *Processor) Rank(ticker string) (stats.Rank, bool) {
	return p.ranks.Get(ticker)
}

func (p *Processor) Messages() *stats.MsgStats { return p.msgs }

// Histogram returns per-second trade counts across all symbols.
func (p *Processor) Histogram() []stats.SecondCount { return p.trades.Histogram() }

func (p *Processor) TopActive(k int) []stats.Rank { return p.ranks.TopActive(k) }

func (p *Processor) TopVolume(k int) []stats.Rank { return p.ranks.TopVolume(k) }
