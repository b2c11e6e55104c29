// Package symbol tracks what the feed has said about each ticker: its
// Symbol Index Mapping reference data and its latest Security Status.
package symbol

import (
	"sort"

	"github.com/ndrandal/taqfeed/internal/taq"
)

// Entry is the directory's view of one ticker.
type Entry struct {
	Symbol  string
	Mapping taq.SymbolMapping
	Status  *taq.SecurityStatusRecord // latest, nil until one arrives
	Halted  bool
	Updates int // status messages applied
}

// Directory indexes entries by ticker.
type Directory struct {
	entries map[string]*Entry
}

func NewDirectory() *Directory {
	return &Directory{entries: make(map[string]*Entry)}
}

// Map records a Symbol Index Mapping. A repeated mapping replaces the
// reference data but keeps status history. It reports whether the ticker
// was new.
func (d *Directory) Map(m *taq.SymbolMapping) bool {
	if e, ok := d.entries[m.Symbol]; ok {
		e.Mapping = *m
		return false
	}
	d.entries[m.Symbol] = &Entry{Symbol: m.Symbol, Mapping: *m}
	return true
}

// ApplyStatus stores s as the ticker's latest status. Halt and Resume
// toggle Halted. Statuses for unmapped tickers are dropped and reported
// as false.
func (d *Directory) ApplyStatus(s *taq.SecurityStatusRecord) bool {
	e, ok := d.entries[s.Symbol]
	if !ok {
		return false
	}
	switch s.Status {
	case taq.StatusHalt:
		e.Halted = true
	case taq.StatusResume:
		e.Halted = false
	}
	cp := *s
	e.Status = &cp
	e.Updates++
	return true
}

// Lookup returns a copy of the ticker's entry.
func (d *Directory) Lookup(ticker string) (Entry, bool) {
	e, ok := d.entries[ticker]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Tickers returns mapped tickers in lexical order.
func (d *Directory) Tickers() []string {
	out := make([]string, 0, len(d.entries))
	for t := range d.entries {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Halted returns tickers currently halted, in lexical order.
func (d *Directory) Halted() []string {
	var out []string
	for t, e := range d.entries {
		if e.Halted {
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}

func (d *Directory) Len() int { return len(d.entries) }
