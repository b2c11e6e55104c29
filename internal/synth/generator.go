// Package synth generates deterministic synthetic TAQ feeds: symbol index
// mappings, security status changes and trades in the comma-separated
// layout the decoder reads.
package synth

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ndrandal/taqfeed/internal/symbol"
	"github.com/ndrandal/taqfeed/internal/taq"
	"github.com/shopspring/decimal"
)

// Config controls a Generator.
type Config struct {
	Seed int64
	// Start is the first trade time in nanoseconds since midnight.
	Start int64
	// ExcludedRate is the share of trades printed as official open/close or
	// market center open/close prints.
	ExcludedRate float64
	// HaltRate is the per-line chance of a halt or resume.
	HaltRate float64
	// OddLotRate is the share of trades under one round lot.
	OddLotRate float64
	Pace       PaceConfig
}

// DefaultConfig starts at the 09:30 open.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:         seed,
		Start:        (9*3600 + 30*60) * 1e9,
		ExcludedRate: 0.01,
		HaltRate:     0.0005,
		OddLotRate:   0.15,
		Pace:         DefaultPaceConfig(),
	}
}

// Generator produces one feed. Not safe for concurrent use.
type Generator struct {
	cfg      Config
	rng      *RNG
	walk     *walk
	pace     *pace
	listings []symbol.Listing
	weights  []int

	clock   int64 // nanoseconds since midnight
	seq     int64
	tradeID int64
	symSeq  map[string]int64
	halted  map[string]bool
	started bool
}

// New creates a generator over the listing universe.
func New(cfg Config) *Generator {
	rng := NewRNG(cfg.Seed)
	ls := symbol.Universe()
	weights := make([]int, len(ls))
	for i, l := range ls {
		weights[i] = l.Weight
	}
	return &Generator{
		cfg:      cfg,
		rng:      rng,
		walk:     newWalk(rng, ls),
		pace:     newPace(rng, cfg.Pace),
		listings: ls,
		weights:  weights,
		clock:    cfg.Start,
		symSeq:   make(map[string]int64, len(ls)),
		halted:   make(map[string]bool),
	}
}

// Header returns one full Symbol Index Mapping per listing followed by a
// pre-open status for each, stamped one minute before Start.
func (g *Generator) Header() []string {
	out := make([]string, 0, 2*len(g.listings))
	for i, l := range g.listings {
		g.seq++
		out = append(out, strings.Join([]string{
			"3",
			strconv.FormatInt(g.seq, 10),
			l.Ticker,
			"1", // NYSE
			strconv.Itoa(i%4 + 1),
			"N",
			securityType(l.Ticker),
			"100",
			l.BasePrice.StringFixed(2),
			strconv.Itoa(100_000 * l.Weight),
			"1",
			"Y",
			l.TickSize.String(),
			"1",
		}, ","))
	}
	preOpen := taq.FormatHHMMSSNanos(decimal.New(g.cfg.Start-60e9, -9))
	for _, l := range g.listings {
		out = append(out, g.status(preOpen, l.Ticker, "P", "~", "P"))
	}
	return out
}

func securityType(ticker string) string {
	if ticker == "SPY" {
		return "E"
	}
	return "C"
}

// Next returns the next body line: a trade, or occasionally a halt or resume.
func (g *Generator) Next() string {
	if g.rng.Chance(g.cfg.HaltRate) {
		l := g.listings[g.rng.Intn(len(g.listings))]
		now := taq.FormatHHMMSSNanos(decimal.New(g.clock, -9))
		if g.halted[l.Ticker] {
			delete(g.halted, l.Ticker)
			return g.status(now, l.Ticker, "5", "~", "O")
		}
		g.halted[l.Ticker] = true
		return g.status(now, l.Ticker, "4", "M", "O")
	}
	return g.trade()
}

func (g *Generator) status(ts, ticker, status, halt, state string) string {
	g.seq++
	g.symSeq[ticker]++
	return strings.Join([]string{
		"34",
		strconv.FormatInt(g.seq, 10),
		ts,
		ticker,
		strconv.FormatInt(g.symSeq[ticker], 10),
		status,
		halt,
		"", "", "", "", "", // prices, SSR exchange and volume, time
		state,
	}, ",")
}

func (g *Generator) trade() string {
	var l symbol.Listing
	for {
		l = g.listings[g.rng.WeightedPick(g.weights)]
		if !g.halted[l.Ticker] || len(g.halted) == len(g.listings) {
			break
		}
	}

	if g.started {
		g.clock += g.pace.next()
	}
	g.started = true
	if g.rng.Intn(20) == 0 {
		g.walk.marketShock()
	}

	price := g.walk.step(l.Ticker)
	volume, c4 := int64(100*g.rng.IntRange(1, 10)), " "
	if g.rng.Chance(g.cfg.OddLotRate) {
		volume, c4 = int64(g.rng.IntRange(1, 99)), "I"
	}
	c2 := " "
	if g.rng.Chance(g.cfg.ExcludedRate) {
		switch g.rng.Intn(4) {
		case 0:
			c2 = "O"
		case 1:
			c2 = "6"
		case 2:
			c4 = "Q"
		default:
			c4 = "M"
		}
	}

	g.seq++
	g.tradeID++
	g.symSeq[l.Ticker]++
	return strings.Join([]string{
		"220",
		strconv.FormatInt(g.seq, 10),
		taq.FormatHHMMSSNanos(decimal.New(g.clock, -9)),
		l.Ticker,
		strconv.FormatInt(g.symSeq[l.Ticker], 10),
		strconv.FormatInt(g.tradeID, 10),
		price.StringFixed(2),
		strconv.FormatInt(volume, 10),
		"@", c2, " ", c4,
	}, ",")
}

// Lines returns the header followed by n body lines.
func (g *Generator) Lines(n int) []string {
	out := g.Header()
	for range n {
		out = append(out, g.Next())
	}
	return out
}

// Write streams the header and n body lines to w.
func (g *Generator) Write(w io.Writer, n int) error {
	bw := bufio.NewWriter(w)
	for _, line := range g.Header() {
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	for range n {
		if _, err := fmt.Fprintln(bw, g.Next()); err != nil {
			return err
		}
	}
	return bw.Flush()
}
