package stats

import (
	"container/heap"
	"fmt"

	"github.com/ndrandal/taqfeed/internal/events"
)

// Rank is a symbol's position data in the activity rankings.
type Rank struct {
	Symbol string `json:"symbol"`
	Ticks  int64  `json:"ticks"`
	Volume int64  `json:"volume"`
}

// SymbolStats ranks registered symbols by tick count and by cumulative
// volume. Both orderings are indexed heaps so each trade costs O(log n).
// Reads copy the heap before popping; they never change the rankings.
type SymbolStats struct {
	ranks    map[string]*Rank
	byTicks  *ranking
	byVolume *ranking
}

func NewSymbolStats() *SymbolStats {
	return &SymbolStats{
		ranks:    make(map[string]*Rank),
		byTicks:  newRanking(func(r *Rank) int64 { return r.Ticks }),
		byVolume: newRanking(func(r *Rank) int64 { return r.Volume }),
	}
}

// Register adds symbol at priority zero in both rankings. It reports whether
// the symbol was new.
func (s *SymbolStats) Register(symbol string) bool {
	if _, ok := s.ranks[symbol]; ok {
		return false
	}
	r := &Rank{Symbol: symbol}
	s.ranks[symbol] = r
	heap.Push(s.byTicks, r)
	heap.Push(s.byVolume, r)
	return true
}

// Update counts one trade of volume shares for symbol.
func (s *SymbolStats) Update(symbol string, volume int64) error {
	r, ok := s.ranks[symbol]
	if !ok {
		return fmt.Errorf("%w: %s", events.ErrUnknownSymbol, symbol)
	}
	r.Ticks++
	r.Volume += volume
	heap.Fix(s.byTicks, s.byTicks.pos[symbol])
	heap.Fix(s.byVolume, s.byVolume.pos[symbol])
	return nil
}

// Get returns a copy of symbol's counters.
func (s *SymbolStats) Get(symbol string) (Rank, bool) {
	r, ok := s.ranks[symbol]
	if !ok {
		return Rank{}, false
	}
	return *r, true
}

func (s *SymbolStats) Len() int { return len(s.ranks) }

// TopActive returns up to k symbols by descending tick count, ties by symbol.
func (s *SymbolStats) TopActive(k int) []Rank { return s.byTicks.top(k) }

// TopVolume returns up to k symbols by descending volume, ties by symbol.
func (s *SymbolStats) TopVolume(k int) []Rank { return s.byVolume.top(k) }

// ranking implements heap.Interface as a max-heap over key, tracking each
// symbol's index so heap.Fix can be used after an update.
type ranking struct {
	items []*Rank
	pos   map[string]int
	key   func(*Rank) int64
}

func newRanking(key func(*Rank) int64) *ranking {
	return &ranking{pos: make(map[string]int), key: key}
}

func (h *ranking) Len() int { return len(h.items) }

func (h *ranking) Less(i, j int) bool {
	a, b := h.items[i], h.items[j]
	ka, kb := h.key(a), h.key(b)
	if ka != kb {
		return ka > kb
	}
	return a.Symbol < b.Symbol
}

func (h *ranking) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i].Symbol] = i
	h.pos[h.items[j].Symbol] = j
}

func (h *ranking) Push(x any) {
	r := x.(*Rank)
	h.pos[r.Symbol] = len(h.items)
	h.items = append(h.items, r)
}

func (h *ranking) Pop() any {
	n := len(h.items)
	r := h.items[n-1]
	h.items[n-1] = nil
	h.items = h.items[:n-1]
	delete(h.pos, r.Symbol)
	return r
}

// top pops k entries from a copy. The copy holds snapshots of the ranks so
// the result is stable even if the caller keeps it past later updates.
func (h *ranking) top(k int) []Rank {
	k = min(k, len(h.items))
	if k <= 0 {
		return nil
	}
	c := &ranking{
		items: make([]*Rank, len(h.items)),
		pos:   make(map[string]int, len(h.items)),
		key:   h.key,
	}
	for i, r := range h.items {
		snap := *r
		c.items[i] = &snap
		c.pos[r.Symbol] = i
	}

	out := make([]Rank, 0, k)
	for range k {
		out = append(out, *heap.Pop(c).(*Rank))
	}
	return out
}
