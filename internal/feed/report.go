package feed

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/ndrandal/taqfeed/internal/stats"
	"github.com/ndrandal/taqfeed/internal/taq"
)

// WriteReport prints the run summary in human-readable form.
func WriteReport(w io.Writer, s Summary) error {
	ew := &errWriter{w: w}
	ew.printf("Symbol Index Mapping Messages %s\n", humanize.Comma(s.Messages[taq.MsgSymbolIndexMapping.String()]))
	ew.printf("Security Status Messages %s\n", humanize.Comma(s.Messages[taq.MsgSecurityStatus.String()]))
	ew.printf("Trade Messages %s\n", humanize.Comma(s.Messages[taq.MsgTrade.String()]))
	if n := s.Messages[taq.MsgUnknown.String()]; n > 0 {
		ew.printf("Unknown Messages %s\n", humanize.Comma(n))
	}
	ew.printf("Excluded Trades %s\n", humanize.Comma(s.Excluded))
	ew.printf("Trade Message details: Number of symbols %s\n", humanize.Comma(int64(s.TradedSymbols)))
	ew.printf("Trade Message details: Trade Volume %s\n", humanize.Comma(s.Volume))
	rate, _ := s.AverageRate.Round(2).Float64()
	ew.printf("Trade Message details: average_rate %s/second\n", humanize.CommafWithDigits(rate, 2))
	if len(s.Halted) > 0 {
		ew.printf("Halted at end of run: %v\n", s.Halted)
	}

	writeRanks(ew, fmt.Sprintf("%d Most Active Symbols", len(s.TopActive)), s.TopActive)
	writeRanks(ew, fmt.Sprintf("%d Highest Volume Symbols", len(s.TopVolume)), s.TopVolume)

	if len(s.TopVariety) > 0 {
		ew.printf("%d Symbols With Most Distinct Price Changes\n", len(s.TopVariety))
		for i, v := range s.TopVariety {
			ew.printf("%4d. %-8s %s\n", i+1, v.Symbol, humanize.Comma(int64(v.Distinct)))
		}
	}
	return ew.err
}

func writeRanks(ew *errWriter, title string, ranks []stats.Rank) {
	ew.printf("%s\n", title)
	for i, r := range ranks {
		ew.printf("%4d. %-8s ticks %12s  volume %15s\n", i+1, r.Symbol, humanize.Comma(r.Ticks), humanize.Comma(r.Volume))
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
