package events

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ndrandal/taqfeed/internal/taq"
)

var (
	ErrUnknownSymbol  = errors.New("unknown symbol")
	errNegativeVolume = errors.New("negative")
)

// Aggregator owns one EventList per registered symbol. Symbols are
// registered by Symbol Index Mapping messages; trades for any other symbol
// are rejected with ErrUnknownSymbol. Lists of different symbols share no
// state.
type Aggregator struct {
	lists map[string]*EventList
}

func NewAggregator() *Aggregator {
	return &Aggregator{lists: make(map[string]*EventList)}
}

// Register creates an empty list for symbol. It reports whether the symbol
// was new; registering twice keeps the existing list.
func (a *Aggregator) Register(symbol string) bool {
	if _, ok := a.lists[symbol]; ok {
		return false
	}
	a.lists[symbol] = NewEventList()
	return true
}

func (a *Aggregator) Registered(symbol string) bool {
	_, ok := a.lists[symbol]
	return ok
}

// Update adds a tick given in wire form.
func (a *Aggregator) Update(symbol, timeStr, priceStr string, volume int64) error {
	l, err := a.lookup(symbol)
	if err != nil {
		return err
	}
	return l.Update(timeStr, priceStr, volume)
}

// AddTrade adds a decoded trade without re-parsing its fields.
func (a *Aggregator) AddTrade(t *taq.TradeRecord) error {
	l, err := a.lookup(t.Symbol)
	if err != nil {
		return err
	}
	l.Add(MicroEvent{Time: t.TimeText, Seconds: t.SourceTime, Price: t.Price, Volume: t.Volume})
	return nil
}

// List returns the symbol's EventList.
func (a *Aggregator) List(symbol string) (*EventList, bool) {
	l, ok := a.lists[symbol]
	return l, ok
}

// Symbols returns registered symbols in lexical order.
func (a *Aggregator) Symbols() []string {
	out := make([]string, 0, len(a.lists))
	for s := range a.lists {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (a *Aggregator) Len() int { return len(a.lists) }

func (a *Aggregator) lookup(symbol string) (*EventList, error) {
	l, ok := a.lists[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	return l, nil
}
