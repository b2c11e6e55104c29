package taq

// Trade condition codes for type 220 messages. Each field is decoded on its
// own; a code outside its table becomes the field's Invalid value. An empty
// token is read as the space code, since some exports strip trailing blanks.

// Cond1 is Trade Condition 1 (sale condition).
type Cond1 uint8

const (
	Cond1Invalid Cond1 = iota
	Cond1RegularSale
	Cond1Cash
	Cond1NextDayTrade
	Cond1RegularSaleTRF
	Cond1Seller
)

var cond1Codes = map[string]Cond1{
	"@": Cond1RegularSale,
	"C": Cond1Cash,
	"N": Cond1NextDayTrade,
	" ": Cond1RegularSaleTRF,
	"R": Cond1Seller,
}

// ParseCond1 decodes a Trade Condition 1 token.
func ParseCond1(tok string) Cond1 { return lookup(cond1Codes, tok, Cond1Invalid) }

func (c Cond1) String() string {
	switch c {
	case Cond1RegularSale:
		return "RegularSale"
	case Cond1Cash:
		return "Cash"
	case Cond1NextDayTrade:
		return "NextDayTrade"
	case Cond1RegularSaleTRF:
		return "RegularSaleTRF"
	case Cond1Seller:
		return "Seller"
	default:
		return "Invalid"
	}
}

// Cond2 is Trade Condition 2 (trade through exempt / session prints).
type Cond2 uint8

const (
	Cond2Invalid Cond2 = iota
	Cond2NA
	Cond2IntermarketSweep
	Cond2MarketCenterOpeningTrade
	Cond2DerivativelyPriced
	Cond2ReopeningTrade
	Cond2MarketCenterClosingTrade
	Cond2QualifiedContingentTrade
	Cond2CorrectedConsolidatedClose
)

var cond2Codes = map[string]Cond2{
	" ": Cond2NA,
	"F": Cond2IntermarketSweep,
	"O": Cond2MarketCenterOpeningTrade,
	"4": Cond2DerivativelyPriced,
	"5": Cond2ReopeningTrade,
	"6": Cond2MarketCenterClosingTrade,
	"7": Cond2QualifiedContingentTrade,
	"9": Cond2CorrectedConsolidatedClose,
}

// ParseCond2 decodes a Trade Condition 2 token.
func ParseCond2(tok string) Cond2 { return lookup(cond2Codes, tok, Cond2Invalid) }

func (c Cond2) String() string {
	switch c {
	case Cond2NA:
		return "NA"
	case Cond2IntermarketSweep:
		return "IntermarketSweep"
	case Cond2MarketCenterOpeningTrade:
		return "MarketCenterOpeningTrade"
	case Cond2DerivativelyPriced:
		return "DerivativelyPriced"
	case Cond2ReopeningTrade:
		return "ReopeningTrade"
	case Cond2MarketCenterClosingTrade:
		return "MarketCenterClosingTrade"
	case Cond2QualifiedContingentTrade:
		return "QualifiedContingentTrade"
	case Cond2CorrectedConsolidatedClose:
		return "CorrectedConsolidatedClose"
	default:
		return "Invalid"
	}
}

// Cond3 is Trade Condition 3 (extended hours).
type Cond3 uint8

const (
	Cond3Invalid Cond3 = iota
	Cond3NA
	Cond3ExtendedHoursTrade
	Cond3ExtendedHoursSold
	Cond3Sold
)

var cond3Codes = map[string]Cond3{
	" ": Cond3NA,
	"T": Cond3ExtendedHoursTrade,
	"U": Cond3ExtendedHoursSold,
	"Z": Cond3Sold,
}

// ParseCond3 decodes a Trade Condition 3 token.
func ParseCond3(tok string) Cond3 { return lookup(cond3Codes, tok, Cond3Invalid) }

func (c Cond3) String() string {
	switch c {
	case Cond3NA:
		return "NA"
	case Cond3ExtendedHoursTrade:
		return "ExtendedHoursTrade"
	case Cond3ExtendedHoursSold:
		return "ExtendedHoursSold"
	case Cond3Sold:
		return "Sold"
	default:
		return "Invalid"
	}
}

// Cond4 is Trade Condition 4 (odd lot, official prices, etc).
type Cond4 uint8

const (
	Cond4Invalid Cond4 = iota
	Cond4NA
	Cond4OddLotTrade
	Cond4OfficialClosePrice
	Cond4OfficialOpenPrice
	Cond4ContingentTrade
	Cond4PriorReferencePrice
	Cond4WeightedAveragePrice
)

var cond4Codes = map[string]Cond4{
	" ": Cond4NA,
	"I": Cond4OddLotTrade,
	"M": Cond4OfficialClosePrice,
	"Q": Cond4OfficialOpenPrice,
	"V": Cond4ContingentTrade,
	"P": Cond4PriorReferencePrice,
	"W": Cond4WeightedAveragePrice,
}

// ParseCond4 decodes a Trade Condition 4 token.
func ParseCond4(tok string) Cond4 { return lookup(cond4Codes, tok, Cond4Invalid) }

func (c Cond4) String() string {
	switch c {
	case Cond4NA:
		return "NA"
	case Cond4OddLotTrade:
		return "OddLotTrade"
	case Cond4OfficialClosePrice:
		return "OfficialClosePrice"
	case Cond4OfficialOpenPrice:
		return "OfficialOpenPrice"
	case Cond4ContingentTrade:
		return "ContingentTrade"
	case Cond4PriorReferencePrice:
		return "PriorReferencePrice"
	case Cond4WeightedAveragePrice:
		return "WeightedAveragePrice"
	default:
		return "Invalid"
	}
}

// Excluded reports whether a trade is an administrative print (official
// open/close price, market center open/close trade) that must stay out of
// aggregation. It is still counted as a trade message.
func Excluded(c2 Cond2, c4 Cond4) bool {
	switch c4 {
	case Cond4OfficialOpenPrice, Cond4OfficialClosePrice:
		return true
	}
	switch c2 {
	case Cond2MarketCenterClosingTrade, Cond2MarketCenterOpeningTrade:
		return true
	}
	return false
}

// Excluded applies the administrative-print rule to t.
func (t *TradeRecord) Excluded() bool {
	return Excluded(t.Cond2, t.Cond4)
}

func lookup[T any](table map[string]T, tok string, invalid T) T {
	if tok == "" {
		tok = " "
	}
	if v, ok := table[tok]; ok {
		return v
	}
	return invalid
}
