package taq

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Source times are HH:MM:SS.nnnnnnnnn. They are carried as exact decimal
// seconds since midnight so that nanosecond ticks can be summed over a full
// session without drift.

// ParseTime converts HH:MM:SS or HH:MM:SS.fraction into seconds since
// midnight. Each component is an unsigned digit string within its clock
// range and the fraction carries 1 to 9 digits.
func ParseTime(s string) (decimal.Decimal, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return decimal.Zero, &TimeError{Value: s, Reason: fmt.Sprintf("want 3 colon-separated parts, got %d", len(parts))}
	}

	secs, frac, hasFrac := strings.Cut(parts[2], ".")
	fields := [3]struct {
		name string
		v    string
		max  int64
	}{
		{"hours", parts[0], 23},
		{"minutes", parts[1], 59},
		{"seconds", secs, 59},
	}
	var total int64
	for _, f := range fields {
		if f.v == "" {
			return decimal.Zero, &TimeError{Value: s, Reason: f.name + " empty"}
		}
		if !allDigits(f.v) {
			return decimal.Zero, &TimeError{Value: s, Reason: f.name + " not numeric"}
		}
		n, err := strconv.ParseInt(f.v, 10, 64)
		if err != nil {
			return decimal.Zero, &TimeError{Value: s, Reason: f.name + " out of range"}
		}
		if n > f.max {
			return decimal.Zero, &TimeError{Value: s, Reason: fmt.Sprintf("%s %d above %d", f.name, n, f.max)}
		}
		total = total*60 + n
	}

	out := decimal.NewFromInt(total)
	if !hasFrac {
		return out, nil
	}
	if frac == "" || len(frac) > maxFractionDigits || !allDigits(frac) {
		return decimal.Zero, &TimeError{Value: s, Reason: "fraction must be 1 to 9 digits"}
	}
	n, _ := strconv.ParseInt(frac, 10, 64)
	return out.Add(decimal.New(n, -int32(len(frac)))), nil
}

const maxFractionDigits = 9

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

// BucketOf truncates seconds to the whole second containing it.
func BucketOf(secs decimal.Decimal) int64 {
	return secs.Floor().IntPart()
}

// FormatHHMMSS renders whole seconds as HH:MM:SS, with a leading '-' for
// negative durations.
func FormatHHMMSS(secs decimal.Decimal) string {
	sign, whole, _ := split(secs)
	h, m, s := hms(whole)
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}

// FormatHHMMSSNanos renders seconds as HH:MM:SS.nnnnnnnnn. Digits below one
// nanosecond are truncated.
func FormatHHMMSSNanos(secs decimal.Decimal) string {
	sign, whole, nanos := split(secs)
	h, m, s := hms(whole)
	return fmt.Sprintf("%s%02d:%02d:%02d.%09d", sign, h, m, s, nanos)
}

// FormatSecond renders an integer-second bucket key as HH:MM:SS.
func FormatSecond(sec int64) string {
	return FormatHHMMSS(decimal.NewFromInt(sec))
}

func split(secs decimal.Decimal) (sign string, whole, nanos int64) {
	if secs.IsNegative() {
		sign = "-"
		secs = secs.Abs()
	}
	w := secs.Truncate(0)
	return sign, w.IntPart(), secs.Sub(w).Shift(9).Truncate(0).IntPart()
}

func hms(whole int64) (h, m, s int64) {
	h, whole = whole/3600, whole%3600
	m, s = whole/60, whole%60
	return h, m, s
}
