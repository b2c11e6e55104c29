package events

import (
	"sort"
	"strconv"

	"github.com/ndrandal/taqfeed/internal/taq"
	"github.com/shopspring/decimal"
)

// Bucket is one point of the per-second series.
type Bucket struct {
	Second   int64           `json:"second"`
	Time     string          `json:"time"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
	MinPrice decimal.Decimal `json:"minPrice"`
	MaxPrice decimal.Decimal `json:"maxPrice"`
	Volume   int64           `json:"volume"`
	Ticks    int             `json:"ticks"`
}

// MinMax holds the extrema across every bucket of a list.
type MinMax struct {
	MinPrice  decimal.Decimal `json:"minPrice"`
	MaxPrice  decimal.Decimal `json:"maxPrice"`
	MinVolume int64           `json:"minVolume"`
	MaxVolume int64           `json:"maxVolume"`
}

// EventList maps integer-second buckets to Events, kept in ascending key
// order. It only grows.
type EventList struct {
	keys   []int64 // sorted ascending
	events map[int64]*Event
	ticks  int
	volume int64
}

func NewEventList() *EventList {
	return &EventList{events: make(map[int64]*Event)}
}

// Update parses a tick's time and price and adds it.
func (l *EventList) Update(timeStr, priceStr string, volume int64) error {
	secs, err := taq.ParseTime(timeStr)
	if err != nil {
		return err
	}
	price, err := taq.ParsePrice(priceStr)
	if err != nil {
		return &taq.FieldParseError{Field: "price", Value: priceStr, Err: err}
	}
	if volume < 0 {
		return &taq.FieldParseError{Field: "volume", Value: strconv.FormatInt(volume, 10), Err: errNegativeVolume}
	}
	l.Add(MicroEvent{Time: timeStr, Seconds: secs, Price: price, Volume: volume})
	return nil
}

// Add appends an already decoded tick to its bucket.
func (l *EventList) Add(m MicroEvent) {
	sec := taq.BucketOf(m.Seconds)
	l.ticks++
	l.volume += m.Volume

	if ev, ok := l.events[sec]; ok {
		ev.add(m)
		return
	}
	l.events[sec] = newEvent(sec, m)

	// Feeds are time ordered, so the common case is a new last bucket.
	n := len(l.keys)
	if n == 0 || l.keys[n-1] < sec {
		l.keys = append(l.keys, sec)
		return
	}
	i := sort.Search(n, func(i int) bool { return l.keys[i] >= sec })
	l.keys = append(l.keys, 0)
	copy(l.keys[i+1:], l.keys[i:])
	l.keys[i] = sec
}

// Len returns the number of buckets.
func (l *EventList) Len() int { return len(l.keys) }

// Keys returns the bucket seconds in ascending order.
func (l *EventList) Keys() []int64 {
	out := make([]int64, len(l.keys))
	copy(out, l.keys)
	return out
}

// Event returns the bucket for sec.
func (l *EventList) Event(sec int64) (*Event, bool) {
	ev, ok := l.events[sec]
	return ev, ok
}

// TickCount is the number of ticks across all buckets.
func (l *EventList) TickCount() int { return l.ticks }

// TotalVolume is the summed volume across all buckets.
func (l *EventList) TotalVolume() int64 { return l.volume }

// TimeSeries returns every tick, bucket by bucket, in arrival order within
// each bucket.
func (l *EventList) TimeSeries() []MicroEvent {
	out := make([]MicroEvent, 0, l.ticks)
	for _, k := range l.keys {
		out = append(out, l.events[k].Tics...)
	}
	return out
}

// BucketedSeries returns one point per second: average price and summed volume.
func (l *EventList) BucketedSeries() []Bucket {
	out := make([]Bucket, 0, len(l.keys))
	for _, k := range l.keys {
		ev := l.events[k]
		out = append(out, Bucket{
			Second:   k,
			Time:     taq.FormatSecond(k),
			AvgPrice: ev.AvgPrice(),
			MinPrice: ev.MinPrice,
			MaxPrice: ev.MaxPrice,
			Volume:   ev.TotalVolume,
			Ticks:    ev.TickCount,
		})
	}
	return out
}

// MinMax returns price and volume extrema over all buckets. ok is false for
// an empty list.
func (l *EventList) MinMax() (mm MinMax, ok bool) {
	for i, k := range l.keys {
		ev := l.events[k]
		if i == 0 {
			mm = MinMax{MinPrice: ev.MinPrice, MaxPrice: ev.MaxPrice, MinVolume: ev.MinVolume, MaxVolume: ev.MaxVolume}
			continue
		}
		if ev.MinPrice.LessThan(mm.MinPrice) {
			mm.MinPrice = ev.MinPrice
		}
		if ev.MaxPrice.GreaterThan(mm.MaxPrice) {
			mm.MaxPrice = ev.MaxPrice
		}
		mm.MinVolume = min(mm.MinVolume, ev.MinVolume)
		mm.MaxVolume = max(mm.MaxVolume, ev.MaxVolume)
	}
	return mm, len(l.keys) > 0
}

// AveragePrice is the mean price over every tick, zero when empty.
func (l *EventList) AveragePrice() decimal.Decimal {
	if l.ticks == 0 {
		return decimal.Zero
	}
	total := decimal.Zero
	for _, k := range l.keys {
		total = total.Add(l.events[k].TotalPrice)
	}
	return total.Div(decimal.NewFromInt(int64(l.ticks)))
}

// MaxTicksPerSecond is the largest tick count of any one bucket.
func (l *EventList) MaxTicksPerSecond() int {
	n := 0
	for _, ev := range l.events {
		n = max(n, ev.TickCount)
	}
	return n
}

// PriceChange counts how often a tick-to-tick price difference occurred.
type PriceChange struct {
	Delta decimal.Decimal `json:"delta"`
	Count int             `json:"count"`
}

// PriceChanges tallies consecutive price differences over the time series,
// ordered by ascending delta. Fewer than three ticks yield nil.
func (l *EventList) PriceChanges() []PriceChange {
	if l.ticks < 3 {
		return nil
	}
	counts := make(map[string]*PriceChange)
	var prev decimal.Decimal
	first := true
	for _, k := range l.keys {
		for _, m := range l.events[k].Tics {
			if first {
				prev, first = m.Price, false
				continue
			}
			d := m.Price.Sub(prev)
			prev = m.Price
			key := d.String()
			if pc, ok := counts[key]; ok {
				pc.Count++
				continue
			}
			counts[key] = &PriceChange{Delta: d, Count: 1}
		}
	}

	out := make([]PriceChange, 0, len(counts))
	for _, pc := range counts {
		out = append(out, *pc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Delta.LessThan(out[j].Delta) })
	return out
}
