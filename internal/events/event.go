// Package events buckets accepted trades per symbol into one Event per
// integer second and serves the time series built from them.
package events

import (
	"github.com/shopspring/decimal"
)

// expectedTics is the initial capacity of an Event's tick slice.
const expectedTics = 16

// MicroEvent is one accepted trade tick.
type MicroEvent struct {
	Time    string          `json:"time"`
	Seconds decimal.Decimal `json:"seconds"`
	Price   decimal.Decimal `json:"price"`
	Volume  int64           `json:"volume"`
}

// Event holds every tick of one symbol that falls in the same second.
// Totals and extrema are maintained on insert; TickCount == len(Tics).
type Event struct {
	Second      int64
	Tics        []MicroEvent
	TotalPrice  decimal.Decimal
	TotalVolume int64
	TickCount   int
	MinPrice    decimal.Decimal
	MaxPrice    decimal.Decimal
	MinVolume   int64
	MaxVolume   int64
}

func newEvent(sec int64, m MicroEvent) *Event {
	tics := make([]MicroEvent, 1, expectedTics)
	tics[0] = m
	return &Event{
		Second:      sec,
		Tics:        tics,
		TotalPrice:  m.Price,
		TotalVolume: m.Volume,
		TickCount:   1,
		MinPrice:    m.Price,
		MaxPrice:    m.Price,
		MinVolume:   m.Volume,
		MaxVolume:   m.Volume,
	}
}

func (e *Event) add(m MicroEvent) {
	e.Tics = append(e.Tics, m)
	e.TotalPrice = e.TotalPrice.Add(m.Price)
	e.TotalVolume += m.Volume
	e.TickCount++

	if m.Price.LessThan(e.MinPrice) {
		e.MinPrice = m.Price
	}
	if m.Price.GreaterThan(e.MaxPrice) {
		e.MaxPrice = m.Price
	}
	e.MinVolume = min(e.MinVolume, m.Volume)
	e.MaxVolume = max(e.MaxVolume, m.Volume)
}

// AvgPrice is the unweighted mean price of the bucket's ticks.
func (e *Event) AvgPrice() decimal.Decimal {
	return e.TotalPrice.Div(decimal.NewFromInt(int64(e.TickCount)))
}
