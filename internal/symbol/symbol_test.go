package symbol

import (
	"reflect"
	"testing"

	"github.com/ndrandal/taqfeed/internal/taq"
)

func mapping(t *testing.T, line string) *taq.SymbolMapping {
	t.Helper()
	m, err := taq.DecodeSymbolMapping(taq.Split(line))
	if err != nil {
		t.Fatalf("DecodeSymbolMapping error: %v", err)
	}
	return m
}

func status(t *testing.T, line string) *taq.SecurityStatusRecord {
	t.Helper()
	s, err := taq.DecodeSecurityStatus(taq.Split(line))
	if err != nil {
		t.Fatalf("DecodeSecurityStatus error: %v", err)
	}
	return s
}

func TestDirectoryMap(t *testing.T) {
	d := NewDirectory()
	if !d.Map(mapping(t, "3,1,IBM")) {
		t.Fatal("first mapping should be new")
	}
	if d.Map(mapping(t, "3,2,IBM,1,12,N,C,100,150.25,1000,1,Y,0.01,1")) {
		t.Fatal("second mapping should not be new")
	}
	e, ok := d.Lookup("IBM")
	if !ok {
		t.Fatal("IBM not found")
	}
	if e.Mapping.SeqNum != 2 || e.Mapping.MarketID != taq.MarketNYSE {
		t.Fatalf("mapping not replaced: %+v", e.Mapping)
	}
	if _, ok := d.Lookup("ZZZZ"); ok {
		t.Fatal("expected ZZZZ to be missing")
	}
}

func TestDirectoryHaltResume(t *testing.T) {
	d := NewDirectory()
	d.Map(mapping(t, "3,1,IBM"))
	d.Map(mapping(t, "3,2,AAPL"))

	if !d.ApplyStatus(status(t, "34,3,10:00:00,IBM,1,4,M")) {
		t.Fatal("status for mapped ticker rejected")
	}
	if got := d.Halted(); !reflect.DeepEqual(got, []string{"IBM"}) {
		t.Fatalf("Halted = %v", got)
	}
	d.ApplyStatus(status(t, "34,4,10:05:00,IBM,2,5,~"))
	if len(d.Halted()) != 0 {
		t.Fatalf("IBM still halted after resume")
	}
	e, _ := d.Lookup("IBM")
	if e.Updates != 2 || e.Status.Status != taq.StatusResume {
		t.Fatalf("entry = %+v", e)
	}
}

func TestDirectoryStatusForUnmapped(t *testing.T) {
	d := NewDirectory()
	if d.ApplyStatus(status(t, "34,3,10:00:00,GE,1,4,M")) {
		t.Fatal("status for unmapped ticker should be dropped")
	}
	if d.Len() != 0 {
		t.Fatal("status must not register a ticker")
	}
}

func TestTickersSorted(t *testing.T) {
	d := NewDirectory()
	for _, s := range []string{"MSFT", "AAPL", "IBM"} {
		d.Map(&taq.SymbolMapping{Symbol: s})
	}
	if got := d.Tickers(); !reflect.DeepEqual(got, []string{"AAPL", "IBM", "MSFT"}) {
		t.Fatalf("Tickers = %v", got)
	}
}

func TestUniverse(t *testing.T) {
	seen := make(map[string]bool)
	for _, l := range Universe() {
		if seen[l.Ticker] {
			t.Fatalf("duplicate ticker %s", l.Ticker)
		}
		seen[l.Ticker] = true
		if !l.BasePrice.IsPositive() || l.Weight <= 0 {
			t.Fatalf("bad listing %+v", l)
		}
	}
	if _, ok := ByTicker()["IBM"]; !ok {
		t.Fatal("IBM not found in ByTicker")
	}
}
