package symbol

import "github.com/shopspring/decimal"

// Listing describes an instrument the synthetic feed generator trades.
type Listing struct {
	Ticker     string
	BasePrice  decimal.Decimal
	TickSize   decimal.Decimal
	Volatility float64 // relative step size multiplier
	Weight     int     // relative trade frequency
}

func listing(ticker, price string, vol float64, weight int) Listing {
	return Listing{
		Ticker:     ticker,
		BasePrice:  decimal.RequireFromString(price),
		TickSize:   decimal.New(1, -2),
		Volatility: vol,
		Weight:     weight,
	}
}

// Universe returns the generator's instruments.
func Universe() []Listing {
	return []Listing{
		listing("AAPL", "189.50", 1.2, 20),
		listing("MSFT", "410.25", 1.0, 16),
		listing("IBM", "165.00", 0.7, 6),
		listing("JPM", "182.40", 0.8, 8),
		listing("XOM", "112.10", 0.9, 7),
		listing("KO", "61.35", 0.5, 5),
		listing("GE", "158.90", 1.1, 6),
		listing("TSLA", "245.00", 2.0, 18),
		listing("F", "12.15", 1.3, 9),
		listing("SPY", "512.30", 0.4, 25),
		listing("BRK.B", "405.75", 0.6, 3),
		listing("T", "17.05", 0.9, 4),
	}
}

// ByTicker returns the universe indexed by ticker.
func ByTicker() map[string]*Listing {
	ls := Universe()
	m := make(map[string]*Listing, len(ls))
	for i := range ls {
		m[ls[i].Ticker] = &ls[i]
	}
	return m
}
