package taq

import (
	"encoding/json"
	"testing"
)

func decodeJSON(t *testing.T, r Record) map[string]any {
	t.Helper()
	data, err := EncodeJSON(r)
	if err != nil {
		t.Fatalf("EncodeJSON error: %v", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		t.Fatalf("json.Unmarshal error: %v", err)
	}
	return obj
}

func TestEncodeJSONTrade(t *testing.T) {
	tr, err := DecodeTrade(Split(tradeLine))
	if err != nil {
		t.Fatalf("DecodeTrade error: %v", err)
	}
	obj := decodeJSON(t, tr)
	if obj["type"] != "trade" {
		t.Fatalf("type = %v, want trade", obj["type"])
	}
	if obj["price"] != "125.25" {
		t.Fatalf("price = %v, want 125.25", obj["price"])
	}
	if obj["sourceTime"] != "09:30:00.100000000" {
		t.Fatalf("sourceTime = %v", obj["sourceTime"])
	}
	if obj["cond1"] != "RegularSale" || obj["excluded"] != false {
		t.Fatalf("cond1/excluded = %v/%v", obj["cond1"], obj["excluded"])
	}
}

func TestEncodeJSONStatus(t *testing.T) {
	s, err := DecodeSecurityStatus(Split("34,5,09:29:00.000000000,IBM,2,4,M"))
	if err != nil {
		t.Fatalf("DecodeSecurityStatus error: %v", err)
	}
	obj := decodeJSON(t, s)
	if obj["status"] != "Halt" || obj["haltCondition"] != "LULDPause" {
		t.Fatalf("status = %v/%v", obj["status"], obj["haltCondition"])
	}
}

func TestEncodeJSONUnsupported(t *testing.T) {
	if _, err := EncodeJSON(SymbolMapping{}); err == nil {
		t.Fatal("value record should be unsupported")
	}
}
