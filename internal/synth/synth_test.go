package synth

import (
	"bytes"
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/ndrandal/taqfeed/internal/feed"
	"github.com/ndrandal/taqfeed/internal/symbol"
	"github.com/ndrandal/taqfeed/internal/taq"
	"github.com/shopspring/decimal"
)

func TestRNGDeterminism(t *testing.T) {
	r1 := NewRNG(42)
	r2 := NewRNG(42)
	for i := range 1000 {
		if r1.Uint32() != r2.Uint32() {
			t.Fatalf("determinism broken at iteration %d", i)
		}
	}
}

func TestRNGDifferentSeeds(t *testing.T) {
	r1 := NewRNG(42)
	r2 := NewRNG(43)
	same := 0
	for range 100 {
		if r1.Uint32() == r2.Uint32() {
			same++
		}
	}
	if same > 5 {
		t.Fatalf("different seeds produced %d/100 identical values", same)
	}
}

func TestRNGBounds(t *testing.T) {
	r := NewRNG(7)
	for i := range 10000 {
		if v := r.Float64(); v < 0 || v >= 1 {
			t.Fatalf("Float64() = %f at %d, out of [0, 1)", v, i)
		}
		if v := r.IntRange(3, 5); v < 3 || v > 5 {
			t.Fatalf("IntRange(3, 5) = %d at %d", v, i)
		}
	}
	if r.Chance(0) {
		t.Fatal("Chance(0) returned true")
	}
}

func TestWeightedPick(t *testing.T) {
	r := NewRNG(1)
	counts := make([]int, 3)
	for range 30000 {
		counts[r.WeightedPick([]int{1, 0, 2})]++
	}
	if counts[1] != 0 {
		t.Fatalf("zero weight picked %d times", counts[1])
	}
	if counts[2] < counts[0] {
		t.Fatalf("counts = %v, heavier weight picked less often", counts)
	}
}

func TestPhaseString(t *testing.T) {
	cases := []struct {
		phase Phase
		want  string
	}{
		{PhaseCalm, "calm"},
		{PhaseActive, "active"},
		{PhaseBurst, "burst"},
		{Phase(99), "unknown"},
	}
	for _, c := range cases {
		if got := c.phase.String(); got != c.want {
			t.Errorf("Phase(%d).String() = %q, want %q", c.phase, got, c.want)
		}
	}
}

func TestPaceBounds(t *testing.T) {
	cfg := DefaultPaceConfig()
	p := newPace(NewRNG(42), cfg)
	for i := range 20000 {
		gap := p.next()
		if p.intensity < 0 || p.intensity > 1 {
			t.Fatalf("intensity = %f at %d, out of [0, 1]", p.intensity, i)
		}
		if gap < cfg.BurstMin || gap > cfg.CalmMax {
			t.Fatalf("gap = %d at %d, outside [%d, %d]", gap, i, cfg.BurstMin, cfg.CalmMax)
		}
	}
}

func TestGeneratorDeterministic(t *testing.T) {
	a := New(DefaultConfig(99)).Lines(2000)
	b := New(DefaultConfig(99)).Lines(2000)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different feeds")
	}
	c := New(DefaultConfig(100)).Lines(2000)
	if reflect.DeepEqual(a, c) {
		t.Fatal("different seeds produced identical feeds")
	}
}

func TestGeneratorLinesDecode(t *testing.T) {
	cfg := DefaultConfig(5)
	cfg.ExcludedRate = 0.05
	cfg.HaltRate = 0.01
	lines := New(cfg).Lines(5000)

	universe := symbol.ByTicker()
	var (
		last     decimal.Decimal
		trades   int
		excluded int
		statuses int
	)
	for i, line := range lines {
		rec, err := taq.Decode(taq.Split(line))
		if err != nil {
			t.Fatalf("line %d %q: %v", i, line, err)
		}
		switch r := rec.(type) {
		case *taq.SymbolMapping:
			if _, ok := universe[r.Symbol]; !ok {
				t.Fatalf("mapping for unknown ticker %q", r.Symbol)
			}
			if r.MarketID != taq.MarketNYSE || r.LotSize != 100 {
				t.Fatalf("mapping = %+v", r)
			}
		case *taq.SecurityStatusRecord:
			statuses++
			if r.Status == taq.StatusInvalid {
				t.Fatalf("status line %q decoded as Invalid", line)
			}
		case *taq.TradeRecord:
			trades++
			if r.SourceTime.LessThan(last) {
				t.Fatalf("line %d: time went backwards: %s < %s", i, r.SourceTime, last)
			}
			last = r.SourceTime
			if !r.Price.IsPositive() || !r.Price.Mod(decimal.New(1, -2)).IsZero() {
				t.Fatalf("line %d: price %s off tick", i, r.Price)
			}
			if r.Volume <= 0 {
				t.Fatalf("line %d: volume %d", i, r.Volume)
			}
			if r.Excluded() {
				excluded++
			}
		}
	}
	if trades == 0 || excluded == 0 {
		t.Fatalf("trades = %d, excluded = %d", trades, excluded)
	}
	if statuses <= len(universe) {
		t.Fatalf("statuses = %d, want pre-open plus halts", statuses)
	}
}

func TestGeneratorFeedsProcessor(t *testing.T) {
	var buf bytes.Buffer
	if err := New(DefaultConfig(11)).Write(&buf, 20000); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := strings.Count(buf.String(), "\n220,")

	p := feed.NewProcessor(nil)
	rep, err := p.Run(context.Background(), &buf, "synthetic")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.Skipped != 0 {
		t.Fatalf("skipped %d lines", rep.Skipped)
	}

	sum := p.Summary(5)
	if got := sum.Messages["trade"]; got != int64(want) {
		t.Fatalf("trade messages = %d, want %d", got, want)
	}
	if sum.Trades+sum.Excluded != int64(want) {
		t.Fatalf("trades %d + excluded %d != %d", sum.Trades, sum.Excluded, want)
	}
	if sum.Registered != len(symbol.Universe()) {
		t.Fatalf("registered = %d", sum.Registered)
	}
	if len(sum.TopActive) != 5 || sum.TopActive[0].Ticks < sum.TopActive[4].Ticks {
		t.Fatalf("top active = %+v", sum.TopActive)
	}
}
