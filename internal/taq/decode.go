package taq

import (
	"errors"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Positional layout of a type 220 Trade line.
const (
	tradeSeq = iota + 1
	tradeTime
	tradeSymbol
	tradeSymbolSeq
	tradeID
	tradePrice
	tradeVolume
	tradeCond1
	tradeCond2
	tradeCond3
	tradeCond4

	TradeFields = tradeCond4 + 1
)

// Type 3 needs only type, seq and symbol; the reference fields after it are
// decoded when present.
const (
	MappingMinFields  = 3
	MappingFullFields = 14
)

// Type 34 needs everything through the halt condition; price, SSR and
// market-state fields are decoded when present.
const (
	StatusMinFields  = 7
	StatusFullFields = 13
)

var (
	errEmpty    = errors.New("empty")
	errNegative = errors.New("negative")
	errNotPlain = errors.New("not a plain decimal")
)

// Split tokenizes a raw comma-separated line.
func Split(line string) []string {
	return strings.Split(strings.TrimRight(line, "\r\n"), ",")
}

// Decode classifies tokens and dispatches to the matching decoder.
func Decode(tokens []string) (Record, error) {
	if len(tokens) == 0 {
		return nil, ErrUnknownMessageType
	}
	switch Classify(tokens[0]) {
	case MsgTrade:
		return DecodeTrade(tokens)
	case MsgSymbolIndexMapping:
		return DecodeSymbolMapping(tokens)
	case MsgSecurityStatus:
		return DecodeSecurityStatus(tokens)
	default:
		return nil, ErrUnknownMessageType
	}
}

// DecodeTrade decodes a type 220 Trade line. Condition codes never fail.
func DecodeTrade(tokens []string) (*TradeRecord, error) {
	if len(tokens) < TradeFields {
		return nil, &FieldCountError{Kind: MsgTrade, Got: len(tokens), Want: TradeFields}
	}

	var (
		t   = &TradeRecord{TimeText: tokens[tradeTime]}
		err error
	)
	if t.SeqNum, err = parseInt("seq_num", tokens[tradeSeq]); err != nil {
		return nil, err
	}
	if t.SourceTime, err = parseTime("source_time", tokens[tradeTime]); err != nil {
		return nil, err
	}
	if t.Symbol, err = parseSymbol(tokens[tradeSymbol]); err != nil {
		return nil, err
	}
	if t.SymbolSeqNum, err = parseInt("symbol_seq_num", tokens[tradeSymbolSeq]); err != nil {
		return nil, err
	}
	if t.TradeID, err = parseInt("trade_id", tokens[tradeID]); err != nil {
		return nil, err
	}
	if t.Price, err = parseDecimal("price", tokens[tradePrice]); err != nil {
		return nil, err
	}
	if t.Volume, err = parseVolume("volume", tokens[tradeVolume]); err != nil {
		return nil, err
	}

	t.Cond1 = ParseCond1(tokens[tradeCond1])
	t.Cond2 = ParseCond2(tokens[tradeCond2])
	t.Cond3 = ParseCond3(tokens[tradeCond3])
	t.Cond4 = ParseCond4(tokens[tradeCond4])
	return t, nil
}

// DecodeSymbolMapping decodes a type 3 Symbol Index Mapping line.
func DecodeSymbolMapping(tokens []string) (*SymbolMapping, error) {
	if len(tokens) < MappingMinFields {
		return nil, &FieldCountError{Kind: MsgSymbolIndexMapping, Got: len(tokens), Want: MappingMinFields}
	}

	var (
		m   = &SymbolMapping{}
		err error
	)
	if m.SeqNum, err = parseInt("seq_num", tokens[1]); err != nil {
		return nil, err
	}
	if m.Symbol, err = parseSymbol(tokens[2]); err != nil {
		return nil, err
	}
	if len(tokens) < MappingFullFields {
		return m, nil
	}

	m.MarketID = ParseMarketID(tokens[3])
	if m.SystemID, err = parseInt("system_id", tokens[4]); err != nil {
		return nil, err
	}
	m.ExchangeCode = tokens[5]
	m.SecurityType = ParseSecurityType(tokens[6])
	if m.LotSize, err = parseInt("lot_size", tokens[7]); err != nil {
		return nil, err
	}
	if m.PrevClosePrice, err = parseDecimal("prev_close_price", tokens[8]); err != nil {
		return nil, err
	}
	if m.PrevCloseVolume, err = parseVolume("prev_close_volume", tokens[9]); err != nil {
		return nil, err
	}
	m.PriceResolution = ParsePriceResolution(tokens[10])
	m.RoundLot = tokens[11]
	if m.MPV, err = parseDecimal("mpv", tokens[12]); err != nil {
		return nil, err
	}
	if m.UnitOfTrade, err = parseInt("unit_of_trade", tokens[13]); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodeSecurityStatus decodes a type 34 Security Status line.
func DecodeSecurityStatus(tokens []string) (*SecurityStatusRecord, error) {
	if len(tokens) < StatusMinFields {
		return nil, &FieldCountError{Kind: MsgSecurityStatus, Got: len(tokens), Want: StatusMinFields}
	}

	var (
		s   = &SecurityStatusRecord{TimeText: tokens[2]}
		err error
	)
	if s.SeqNum, err = parseInt("seq_num", tokens[1]); err != nil {
		return nil, err
	}
	if s.SourceTime, err = parseTime("source_time", tokens[2]); err != nil {
		return nil, err
	}
	if s.Symbol, err = parseSymbol(tokens[3]); err != nil {
		return nil, err
	}
	if s.SymbolSeqNum, err = parseInt("symbol_seq_num", tokens[4]); err != nil {
		return nil, err
	}
	s.Status = ParseSecurityStatus(tokens[5])
	s.HaltCondition = ParseHaltCondition(tokens[6])
	if len(tokens) < StatusFullFields {
		return s, nil
	}

	if s.Price1, err = parseOptionalDecimal("price_1", tokens[7]); err != nil {
		return nil, err
	}
	if s.Price2, err = parseOptionalDecimal("price_2", tokens[8]); err != nil {
		return nil, err
	}
	s.SSRExchange = ParseSSRExchange(tokens[9])
	if tokens[10] != "" {
		if s.SSRVolume, err = parseVolume("ssr_volume", tokens[10]); err != nil {
			return nil, err
		}
	}
	s.Time = tokens[11]
	s.MarketState = ParseMarketState(tokens[12])
	return s, nil
}

func parseInt(field, v string) (int64, error) {
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, &FieldParseError{Field: field, Value: v, Err: err}
	}
	return n, nil
}

func parseVolume(field, v string) (int64, error) {
	n, err := parseInt(field, v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &FieldParseError{Field: field, Value: v, Err: errNegative}
	}
	return n, nil
}

func parseDecimal(field, v string) (decimal.Decimal, error) {
	d, err := ParsePrice(v)
	if err != nil {
		return decimal.Zero, &FieldParseError{Field: field, Value: v, Err: err}
	}
	return d, nil
}

// ParsePrice parses an unsigned plain decimal such as "150" or "150.25".
// Signs, exponents and bare dots are rejected.
func ParsePrice(v string) (decimal.Decimal, error) {
	whole, frac, hasFrac := strings.Cut(v, ".")
	if strings.HasPrefix(v, "-") {
		return decimal.Zero, errNegative
	}
	if !allDigits(whole) || (hasFrac && !allDigits(frac)) {
		return decimal.Zero, errNotPlain
	}
	return decimal.NewFromString(v)
}

// Status prices are blank when not applicable.
func parseOptionalDecimal(field, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	return parseDecimal(field, v)
}

func parseTime(field, v string) (decimal.Decimal, error) {
	d, err := ParseTime(v)
	if err != nil {
		return decimal.Zero, &FieldParseError{Field: field, Value: v, Err: err}
	}
	return d, nil
}

func parseSymbol(v string) (string, error) {
	s := strings.TrimSpace(v)
	if s == "" {
		return "", &FieldParseError{Field: "symbol", Value: v, Err: errEmpty}
	}
	return s, nil
}
