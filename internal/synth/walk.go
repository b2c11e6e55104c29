package synth

import (
	"math"

	"github.com/ndrandal/taqfeed/internal/symbol"
	"github.com/shopspring/decimal"
)

const (
	baseDailyVol = 0.02  // 2% daily volatility
	marketBlend  = 0.50  // share of each step driven by the market-wide shock
	ticksPerDay  = 23400 // one regular session in seconds
)

// walk moves each listing's price with geometric Brownian motion, snapped
// to the listing's tick size.
type walk struct {
	rng    *RNG
	prices map[string]float64
	byTick map[string]*symbol.Listing
	shock  float64
}

func newWalk(rng *RNG, ls []symbol.Listing) *walk {
	w := &walk{
		rng:    rng,
		prices: make(map[string]float64, len(ls)),
		byTick: make(map[string]*symbol.Listing, len(ls)),
	}
	for i := range ls {
		w.prices[ls[i].Ticker] = ls[i].BasePrice.InexactFloat64()
		w.byTick[ls[i].Ticker] = &ls[i]
	}
	return w
}

// marketShock draws the shared component for the next trades.
func (w *walk) marketShock() {
	w.shock = w.rng.Gaussian()
}

// step advances ticker one trade and returns its new price.
func (w *walk) step(ticker string) decimal.Decimal {
	l := w.byTick[ticker]
	tick := l.TickSize.InexactFloat64()

	vol := baseDailyVol / math.Sqrt(ticksPerDay) * l.Volatility
	z := marketBlend*w.shock + (1-marketBlend)*w.rng.Gaussian()
	price := w.prices[ticker] * math.Exp(vol*z)

	// Snap to tick size, floor at 1 tick.
	price = math.Max(math.Round(price/tick)*tick, tick)
	w.prices[ticker] = price

	steps := decimal.NewFromFloat(price / tick).Round(0)
	return steps.Mul(l.TickSize)
}
