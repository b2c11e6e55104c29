package archive

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ndrandal/taqfeed/internal/feed"
	"github.com/shopspring/decimal"
)

const session = `3,1,IBM
3,2,MSFT
220,3,09:30:00.100000000,IBM,1,1,10.00,1,@, , , 
220,4,09:30:00.900000000,IBM,2,2,10.00,2,@, , , 
220,5,09:30:01.000000000,IBM,3,3,12.00,3,@, , , 
220,6,09:30:01.500000000,MSFT,1,4,400.00,1000,@, , , 
`

func snapshot(t *testing.T) feed.Snapshot {
	t.Helper()
	p := feed.NewProcessor(nil)
	if _, err := p.Run(context.Background(), strings.NewReader(session), "test"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return p.Snapshot(5)
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, 0, nil)

	runDir, err := e.Export("run-1", snapshot(t))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if runDir != filepath.Join(dir, "run-1") {
		t.Fatalf("runDir = %q", runDir)
	}

	buckets, err := ReadSeries(filepath.Join(runDir, "IBM.jsonl.gz"))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	if buckets[0].Time != "09:30:00" || buckets[0].Ticks != 2 || !buckets[0].AvgPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("bucket[0] = %+v", buckets[0])
	}
	if buckets[1].Second != 34201 || !buckets[1].MaxPrice.Equal(decimal.NewFromInt(12)) {
		t.Fatalf("bucket[1] = %+v", buckets[1])
	}

	if _, err := os.Stat(filepath.Join(runDir, "MSFT.jsonl.gz")); err != nil {
		t.Fatalf("MSFT export missing: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(runDir, summaryFile))
	if err != nil {
		t.Fatalf("read summary: %v", err)
	}
	var sum feed.Summary
	if err := json.Unmarshal(raw, &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.Trades != 4 || sum.Volume != 1006 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestExportKeepsSymbolsInsideRunDir(t *testing.T) {
	p := feed.NewProcessor(nil)
	feedLines := "3,1,../../ESC\n220,2,09:30:00.1,../../ESC,1,1,10.00,5,@, , , \n"
	if _, err := p.Run(context.Background(), strings.NewReader(feedLines), "test"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	root := t.TempDir()
	e := New(filepath.Join(root, "exports"), 0, nil)
	runDir, err := e.Export("run-1", p.Snapshot(5))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	for _, escaped := range []string{filepath.Join(root, "ESC.jsonl.gz"), filepath.Join(root, "exports", "ESC.jsonl.gz")} {
		if _, err := os.Stat(escaped); !os.IsNotExist(err) {
			t.Fatalf("%s written outside the run directory", escaped)
		}
	}
	name := SeriesFile("../../ESC")
	if filepath.Base(name) != name {
		t.Fatalf("SeriesFile = %q, contains a separator", name)
	}
	buckets, err := ReadSeries(filepath.Join(runDir, name))
	if err != nil {
		t.Fatalf("ReadSeries: %v", err)
	}
	if len(buckets) != 1 || buckets[0].Volume != 5 {
		t.Fatalf("buckets = %+v", buckets)
	}
}

func TestExportRejectsBadRunID(t *testing.T) {
	e := New(t.TempDir(), 0, nil)
	for _, id := range []string{"", "..", ".hidden", "a/b", "../x"} {
		if _, err := e.Export(id, feed.Snapshot{}); !errors.Is(err, ErrBadRunID) {
			t.Errorf("Export(%q) err = %v, want ErrBadRunID", id, err)
		}
	}
}

func TestRotateRemovesOldestRuns(t *testing.T) {
	dir := t.TempDir()

	// Two old runs of 600KB each, the first older than the second.
	old := time.Now().Add(-2 * time.Hour)
	for i, name := range []string{"old-a", "old-b"} {
		p := filepath.Join(dir, name, "IBM.jsonl.gz")
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, make([]byte, 600<<10), 0o644); err != nil {
			t.Fatal(err)
		}
		ts := old.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(p, ts, ts); err != nil {
			t.Fatal(err)
		}
	}

	e := New(dir, 1, nil)
	if _, err := e.Export("new", snapshot(t)); err != nil {
		t.Fatalf("Export: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "old-a")); !os.IsNotExist(err) {
		t.Fatalf("old-a should be rotated out, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "old-b")); err != nil {
		t.Fatalf("old-b should survive: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "new")); err != nil {
		t.Fatalf("new run should survive: %v", err)
	}
}

func TestRotateNeverRemovesCurrentRun(t *testing.T) {
	dir := t.TempDir()
	e := New(dir, 1, nil)
	// Pad the current run past the cap.
	if err := os.MkdirAll(filepath.Join(dir, "big"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "big", "pad"), make([]byte, 2<<20), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Export("big", snapshot(t)); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "big", summaryFile)); err != nil {
		t.Fatalf("current run removed: %v", err)
	}
}
