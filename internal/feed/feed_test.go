package feed

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/ndrandal/taqfeed/internal/events"
	"github.com/ndrandal/taqfeed/internal/taq"
	"github.com/shopspring/decimal"
)

const session = `3,1,IBM
3,2,MSFT
34,3,09:29:00.000000000,IBM,1,O,~
220,4,09:30:00.100000000,IBM,2,1,10.00,1,@, , , 
220,5,09:30:00.900000000,IBM,3,2,10.00,2,@, , , 
220,6,09:30:01.000000000,IBM,4,3,12.00,3,@, , , 
220,7,09:30:01.500000000,MSFT,1,4,400.00,1000,@, , , 
220,8,09:30:02.000000000,MSFT,2,5,401.00,500,@, , , 
`

func run(t *testing.T, p *Processor, input string) Report {
	t.Helper()
	rep, err := p.Run(context.Background(), strings.NewReader(input), "test")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	return rep
}

func TestMessageCounts(t *testing.T) {
	p := NewProcessor(nil)
	rep := run(t, p, `3,1,IBM
34,2,09:29:00.000000000,IBM,1,O,~
220,3,09:30:00.1,IBM,1,1,10,1,@, , , 
220,4,09:30:00.2,IBM,2,2,10,1,@, , , 
220,5,09:30:00.3,IBM,3,3,10,1,@, , , 
220,6,09:30:01.4,IBM,4,4,10,1,@, , , 
220,7,09:30:02.5,IBM,5,5,10,1,@, , , 
`)
	want := map[string]int64{"symbol_index_mapping": 1, "security_status": 1, "trade": 5}
	if got := p.Messages().Counts(); !reflect.DeepEqual(got, want) {
		t.Fatalf("counts = %v, want %v", got, want)
	}
	if rep.Lines != 7 || rep.Applied != 7 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestBucketedSeriesThroughPipeline(t *testing.T) {
	p := NewProcessor(nil)
	run(t, p, session)

	l, ok := p.EventList("IBM")
	if !ok {
		t.Fatal("IBM not registered")
	}
	b := l.BucketedSeries()
	if len(b) != 2 {
		t.Fatalf("buckets = %+v", b)
	}
	if b[0].Second != 34200 || !b[0].AvgPrice.Equal(decimal.NewFromInt(10)) || b[0].Volume != 3 {
		t.Errorf("bucket 0 = %+v", b[0])
	}
	if b[1].Second != 34201 || !b[1].AvgPrice.Equal(decimal.NewFromInt(12)) || b[1].Volume != 3 {
		t.Errorf("bucket 1 = %+v", b[1])
	}
	e, _ := p.Entry("IBM")
	if e.Status == nil || e.Status.Status != taq.StatusCoreSession {
		t.Errorf("IBM status = %+v", e.Status)
	}
}

func TestUnknownSymbolLeavesVolume(t *testing.T) {
	p := NewProcessor(nil)
	run(t, p, "3,1,IBM\n220,2,09:30:00.1,IBM,1,1,10,100,@, , , \n")
	before := p.Summary(5)

	err := p.ProcessLine("220,3,09:30:00.2,GE,1,2,20,700,@, , , ")
	if !errors.Is(err, events.ErrUnknownSymbol) {
		t.Fatalf("err = %v, want ErrUnknownSymbol", err)
	}
	after := p.Summary(5)
	if after.Volume != before.Volume || after.Trades != before.Trades {
		t.Fatalf("volume %d -> %d, trades %d -> %d", before.Volume, after.Volume, before.Trades, after.Trades)
	}
	if after.Messages["trade"] != 2 {
		t.Fatalf("failed trade still counts as a message: %v", after.Messages)
	}
	if _, ok := p.TradeStats("GE"); ok {
		t.Fatal("GE must not appear in trade stats")
	}
}

func TestExcludedTrades(t *testing.T) {
	p := NewProcessor(nil)
	run(t, p, `3,1,IBM
220,2,09:30:00.1,IBM,1,1,10,100,@, , ,M
220,3,09:30:00.2,IBM,2,2,11,100,@,O, , 
220,4,09:30:00.3,IBM,3,3,12,100,@,6, ,Q
220,5,09:30:00.4,IBM,4,4,13,100,@, , , 
`)
	s := p.Summary(5)
	if s.Excluded != 3 || s.Trades != 1 || s.Volume != 100 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Messages["trade"] != 4 {
		t.Fatalf("excluded trades must still be counted: %v", s.Messages)
	}
	l, _ := p.EventList("IBM")
	for _, m := range l.TimeSeries() {
		if !m.Price.Equal(decimal.NewFromInt(13)) {
			t.Fatalf("excluded trade in series: %+v", m)
		}
	}
}

func TestUnknownMessageType(t *testing.T) {
	p := NewProcessor(nil)
	err := p.ProcessLine("999,1,2")
	if !errors.Is(err, taq.ErrUnknownMessageType) {
		t.Fatalf("err = %v, want ErrUnknownMessageType", err)
	}
	if p.Messages().Count(taq.MsgUnknown) != 1 {
		t.Fatal("unknown line not tallied")
	}
}

func TestPolicyAbort(t *testing.T) {
	p := NewProcessor(nil)
	input := "3,1,IBM\n220,2,bad-time,IBM,1,1,10,1,@, , , \n220,3,09:30:00,IBM,2,2,10,1,@, , , \n"
	rep, err := p.Run(context.Background(), strings.NewReader(input), "day.txt")
	var le *LineError
	if !errors.As(err, &le) {
		t.Fatalf("err = %v, want *LineError", err)
	}
	if le.Line != 2 || le.Path != "day.txt" || !errors.Is(err, taq.ErrMalformedTime) {
		t.Fatalf("line error = %v", le)
	}
	if rep.Lines != 2 || p.Summary(1).Trades != 0 {
		t.Fatalf("run continued past the bad line: %+v", rep)
	}
}

func TestPolicySkip(t *testing.T) {
	p := NewProcessor(nil)
	p.Policy = PolicySkip
	input := "3,1,IBM\n220,2,bad-time,IBM,1,1,10,1,@, , , \n\n220,3,09:30:00,IBM,2,2,10,1,@, , , \n7,1\n"
	rep, err := p.Run(context.Background(), strings.NewReader(input), "day.txt")
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if rep.Skipped != 2 || rep.Applied != 2 || rep.Blank != 1 || rep.Lines != 5 {
		t.Fatalf("report = %+v", rep)
	}
	if rep.FirstFail == nil || rep.FirstFail.Line != 2 {
		t.Fatalf("first failure = %v", rep.FirstFail)
	}
	if p.Summary(1).Trades != 1 {
		t.Fatal("good trade after a bad line was not applied")
	}
}

func TestParsePolicy(t *testing.T) {
	if p, err := ParsePolicy("skip"); err != nil || p != PolicySkip {
		t.Fatalf("skip = %v, %v", p, err)
	}
	if p, err := ParsePolicy(""); err != nil || p != PolicyAbort {
		t.Fatalf("default = %v, %v", p, err)
	}
	if _, err := ParsePolicy("retry"); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunHonoursContext(t *testing.T) {
	var b strings.Builder
	b.WriteString("3,1,IBM\n")
	for range 5000 {
		b.WriteString("220,2,09:30:00.1,IBM,1,1,10,1,@, , , \n")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := NewProcessor(nil).Run(ctx, strings.NewReader(b.String()), "big")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if rep.Lines >= 5001 {
		t.Fatalf("read every line despite cancellation")
	}
}

func TestRunOversizedLine(t *testing.T) {
	for _, policy := range []Policy{PolicyAbort, PolicySkip} {
		input := "3,1,IBM\n220,2,09:30:00.1,IBM,1,1,10,1,@, , , \n" + strings.Repeat("x", maxLineBytes+1) + "\n"
		p := NewProcessor(nil)
		p.Policy = policy
		rep, err := p.Run(context.Background(), strings.NewReader(input), "long")
		if !errors.Is(err, bufio.ErrTooLong) {
			t.Fatalf("%s: err = %v, want bufio.ErrTooLong", policy, err)
		}
		var le *LineError
		if !errors.As(err, &le) {
			t.Fatalf("%s: err %T is not *LineError", policy, err)
		}
		if le.Line != 3 || le.Path != "long" {
			t.Fatalf("%s: line error = %+v, want long:3", policy, le)
		}
		if rep.Applied != 2 {
			t.Fatalf("%s: applied = %d, want 2", policy, rep.Applied)
		}
	}
}

func TestRunFilesAndListFiles(t *testing.T) {
	dir := t.TempDir()
	lines := strings.SplitAfter(session, "\n")
	write := func(name, body string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("a_mappings.txt", strings.Join(lines[:3], ""))
	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	zw.Write([]byte(strings.Join(lines[3:], "")))
	zw.Close()
	write("b_trades.txt.gz", gz.String())
	write(".hidden", "garbage\n")
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	write(".git/HEAD", "garbage\n")

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatalf("ListFiles error: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "a_mappings.txt" || filepath.Base(files[1]) != "b_trades.txt.gz" {
		t.Fatalf("files = %v", files)
	}

	p := NewProcessor(nil)
	reports, err := p.RunFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("RunFiles error: %v", err)
	}
	if len(reports) != 2 || reports[1].Applied != 5 {
		t.Fatalf("reports = %+v", reports)
	}
	if s := p.Summary(2); s.Volume != 1506 || s.TradedSymbols != 2 {
		t.Fatalf("summary = %+v", s)
	}

	if _, err := p.RunFiles(context.Background(), []string{filepath.Join(dir, "missing")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSummaryRankings(t *testing.T) {
	p := NewProcessor(nil)
	run(t, p, session)
	s := p.Summary(2)
	if len(s.TopActive) != 2 || s.TopActive[0].Symbol != "IBM" || s.TopActive[0].Ticks != 3 {
		t.Fatalf("TopActive = %+v", s.TopActive)
	}
	if s.TopVolume[0].Symbol != "MSFT" || s.TopVolume[0].Volume != 1500 {
		t.Fatalf("TopVolume = %+v", s.TopVolume)
	}
	if !reflect.DeepEqual(p.TopActive(2), p.TopActive(2)) {
		t.Fatal("rankings changed between reads")
	}
	if len(s.TopVariety) != 1 || s.TopVariety[0].Symbol != "IBM" {
		t.Fatalf("TopVariety = %+v", s.TopVariety)
	}
}

func TestSnapshot(t *testing.T) {
	p := NewProcessor(nil)
	run(t, p, "3,1,GE\n"+session)
	snap := p.Snapshot(10)
	if len(snap.Symbols) != 2 {
		t.Fatalf("snapshot should skip symbols without trades: %d", len(snap.Symbols))
	}
	ibm := snap.Symbols[0]
	if ibm.Symbol != "IBM" || len(ibm.Buckets) != 2 || ibm.Trades.Volume != 6 || ibm.MaxTicksPerSecond != 2 {
		t.Fatalf("IBM = %+v", ibm)
	}
	if snap.Registered != 3 {
		t.Fatalf("registered symbols = %d", snap.Registered)
	}
}

func TestWriteReport(t *testing.T) {
	p := NewProcessor(nil)
	run(t, p, session)
	var buf bytes.Buffer
	if err := WriteReport(&buf, p.Summary(50)); err != nil {
		t.Fatalf("WriteReport error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Symbol Index Mapping Messages 2",
		"Trade Messages 5",
		"Trade Volume 1,506",
		"average_rate 1.67/second",
		"2 Most Active Symbols",
		"MSFT",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
