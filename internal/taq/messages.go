package taq

import "github.com/shopspring/decimal"

// MsgKind identifies a TAQ Pillar message type. The zero value is MsgUnknown.
type MsgKind uint8

const (
	MsgUnknown            MsgKind = iota
	MsgSymbolIndexMapping         // "3"
	MsgSecurityStatus             // "34"
	MsgTrade                      // "220"
)

// Wire tokens for the message types this decoder understands.
const (
	TokenSymbolIndexMapping = "3"
	TokenSecurityStatus     = "34"
	TokenTrade              = "220"
)

// Kinds lists the recognised message kinds in wire order.
func Kinds() []MsgKind {
	return []MsgKind{MsgSymbolIndexMapping, MsgSecurityStatus, MsgTrade}
}

func (k MsgKind) String() string {
	switch k {
	case MsgSymbolIndexMapping:
		return "symbol_index_mapping"
	case MsgSecurityStatus:
		return "security_status"
	case MsgTrade:
		return "trade"
	default:
		return "unknown"
	}
}

// Classify maps the leading token of a line to a message kind.
// It never fails: anything unrecognised is MsgUnknown.
func Classify(token string) MsgKind {
	switch token {
	case TokenSymbolIndexMapping:
		return MsgSymbolIndexMapping
	case TokenSecurityStatus:
		return MsgSecurityStatus
	case TokenTrade:
		return MsgTrade
	default:
		return MsgUnknown
	}
}

// Record is implemented by every decoded message.
type Record interface {
	Kind() MsgKind
}

// TradeRecord is a decoded type 220 message.
type TradeRecord struct {
	SeqNum       int64
	SourceTime   decimal.Decimal // seconds since midnight
	TimeText     string          // source time exactly as it appeared on the wire
	Symbol       string
	SymbolSeqNum int64
	TradeID      int64
	Price        decimal.Decimal
	Volume       int64
	Cond1        Cond1
	Cond2        Cond2
	Cond3        Cond3
	Cond4        Cond4
}

func (TradeRecord) Kind() MsgKind { return MsgTrade }

// Second returns the integer-second bucket of the trade.
func (t *TradeRecord) Second() int64 {
	return BucketOf(t.SourceTime)
}

// SymbolMapping is a decoded type 3 message. Only SeqNum and Symbol are
// guaranteed; the reference fields are zero/Invalid when the line is short.
type SymbolMapping struct {
	SeqNum          int64
	Symbol          string
	MarketID        MarketID
	SystemID        int64
	ExchangeCode    string
	SecurityType    SecurityType
	LotSize         int64
	PrevClosePrice  decimal.Decimal
	PrevCloseVolume int64
	PriceResolution PriceResolution
	RoundLot        string
	MPV             decimal.Decimal
	UnitOfTrade     int64
}

func (SymbolMapping) Kind() MsgKind { return MsgSymbolIndexMapping }

// SecurityStatusRecord is a decoded type 34 message.
type SecurityStatusRecord struct {
	SeqNum        int64
	SourceTime    decimal.Decimal
	TimeText      string
	Symbol        string
	SymbolSeqNum  int64
	Status        SecurityStatus
	HaltCondition HaltCondition
	Price1        decimal.Decimal
	Price2        decimal.Decimal
	SSRExchange   SSRExchange
	SSRVolume     int64
	Time          string
	MarketState   MarketState
}

func (SecurityStatusRecord) Kind() MsgKind { return MsgSecurityStatus }
