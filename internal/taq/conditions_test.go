package taq

import "testing"

func TestParseConditions(t *testing.T) {
	if ParseCond1("@") != Cond1RegularSale || ParseCond1(" ") != Cond1RegularSaleTRF {
		t.Error("cond1 table")
	}
	if ParseCond1("") != Cond1RegularSaleTRF {
		t.Error("empty cond1 should read as the blank code")
	}
	if ParseCond2("O") != Cond2MarketCenterOpeningTrade || ParseCond2("6") != Cond2MarketCenterClosingTrade {
		t.Error("cond2 table")
	}
	if ParseCond3("Z") != Cond3Sold || ParseCond3("Q") != Cond3Invalid {
		t.Error("cond3 table")
	}
	if ParseCond4("M") != Cond4OfficialClosePrice || ParseCond4("Q") != Cond4OfficialOpenPrice {
		t.Error("cond4 table")
	}
	if ParseCond4("MM") != Cond4Invalid {
		t.Error("multi-character code should be Invalid")
	}
}

func TestExcluded(t *testing.T) {
	cases := []struct {
		name string
		c2   Cond2
		c4   Cond4
		want bool
	}{
		{"regular", Cond2NA, Cond4NA, false},
		{"official close", Cond2NA, Cond4OfficialClosePrice, true},
		{"official open", Cond2IntermarketSweep, Cond4OfficialOpenPrice, true},
		{"market center open", Cond2MarketCenterOpeningTrade, Cond4NA, true},
		{"market center close", Cond2MarketCenterClosingTrade, Cond4OddLotTrade, true},
		{"reopening", Cond2ReopeningTrade, Cond4NA, false},
		{"invalid codes", Cond2Invalid, Cond4Invalid, false},
	}
	for _, c := range cases {
		if got := Excluded(c.c2, c.c4); got != c.want {
			t.Errorf("%s: Excluded = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestOfficialCloseAlwaysExcluded(t *testing.T) {
	for c2 := Cond2Invalid; c2 <= Cond2CorrectedConsolidatedClose; c2++ {
		if !Excluded(c2, Cond4OfficialClosePrice) {
			t.Fatalf("cond2 %v with official close not excluded", c2)
		}
	}
}
