package taq

import (
	"encoding/json"
	"fmt"
)

// JSON mirror of decoded records. Prices stay decimal strings so nothing is
// lost to float formatting; times are rendered HH:MM:SS.nnnnnnnnn.

// EncodeJSON encodes a decoded record into JSON bytes.
func EncodeJSON(r Record) ([]byte, error) {
	obj := recordToMap(r)
	if obj == nil {
		return nil, fmt.Errorf("unsupported record: %T", r)
	}
	return json.Marshal(obj)
}

func recordToMap(r Record) map[string]any {
	switch m := r.(type) {
	case *TradeRecord:
		return map[string]any{
			"type":         MsgTrade.String(),
			"seqNum":       m.SeqNum,
			"sourceTime":   FormatHHMMSSNanos(m.SourceTime),
			"symbol":       m.Symbol,
			"symbolSeqNum": m.SymbolSeqNum,
			"tradeId":      m.TradeID,
			"price":        m.Price.String(),
			"volume":       m.Volume,
			"cond1":        m.Cond1.String(),
			"cond2":        m.Cond2.String(),
			"cond3":        m.Cond3.String(),
			"cond4":        m.Cond4.String(),
			"excluded":     m.Excluded(),
		}

	case *SymbolMapping:
		return map[string]any{
			"type":            MsgSymbolIndexMapping.String(),
			"seqNum":          m.SeqNum,
			"symbol":          m.Symbol,
			"marketId":        m.MarketID.String(),
			"systemId":        m.SystemID,
			"exchangeCode":    m.ExchangeCode,
			"securityType":    m.SecurityType.String(),
			"lotSize":         m.LotSize,
			"prevClosePrice":  m.PrevClosePrice.String(),
			"prevCloseVolume": m.PrevCloseVolume,
			"priceResolution": m.PriceResolution.String(),
			"roundLot":        m.RoundLot,
			"mpv":             m.MPV.String(),
			"unitOfTrade":     m.UnitOfTrade,
		}

	case *SecurityStatusRecord:
		return map[string]any{
			"type":          MsgSecurityStatus.String(),
			"seqNum":        m.SeqNum,
			"sourceTime":    FormatHHMMSSNanos(m.SourceTime),
			"symbol":        m.Symbol,
			"symbolSeqNum":  m.SymbolSeqNum,
			"status":        m.Status.String(),
			"haltCondition": m.HaltCondition.String(),
			"price1":        m.Price1.String(),
			"price2":        m.Price2.String(),
			"ssrExchange":   m.SSRExchange.String(),
			"ssrVolume":     m.SSRVolume,
			"time":          m.Time,
			"marketState":   m.MarketState.String(),
		}
	}
	return nil
}
