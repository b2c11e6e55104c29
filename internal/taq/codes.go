package taq

// Reference tables for Symbol Index Mapping (type 3) and Security Status
// (type 34) messages, per the NYSE TAQ Pillar client spec.

type MarketID uint8

const (
	MarketInvalid MarketID = iota
	MarketNYSE
	MarketNYSEArcaEquities
	MarketNYSEArcaOptions
	MarketNYSEBonds
	MarketNYSEAmexOptions
	MarketNYSEAmericanEquities
	MarketNYSENationalEquities
	MarketNYSEChicagoEquities
)

var marketIDs = map[string]MarketID{
	"1":  MarketNYSE,
	"3":  MarketNYSEArcaEquities,
	"4":  MarketNYSEArcaOptions,
	"5":  MarketNYSEBonds,
	"8":  MarketNYSEAmexOptions,
	"9":  MarketNYSEAmericanEquities,
	"10": MarketNYSENationalEquities,
	"11": MarketNYSEChicagoEquities,
}

func ParseMarketID(tok string) MarketID { return code(marketIDs, tok, MarketInvalid) }

var marketNames = [...]string{"Invalid", "NYSE", "NYSEArcaEquities", "NYSEArcaOptions", "NYSEBonds",
	"NYSEAmexOptions", "NYSEAmericanEquities", "NYSENationalEquities", "NYSEChicagoEquities"}

func (m MarketID) String() string { return name(marketNames[:], int(m)) }

type SecurityType uint8

const (
	SecurityInvalid SecurityType = iota
	SecurityADR
	SecurityCommonStock
	SecurityDebentures
	SecurityETF
	SecurityForeign
	SecurityUSDepositaryShares
	SecurityUnits
	SecurityIndexLinkedNotes
	SecurityOther
	SecurityOrdinaryShares
	SecurityPreferred
	SecurityRights
	SecuritySharesOfBeneficialInterest
	SecurityTest
	SecurityClosedEndFund
	SecurityIndex
	SecurityWarrant
)

var securityTypes = map[string]SecurityType{
	"A": SecurityADR,
	"C": SecurityCommonStock,
	"D": SecurityDebentures,
	"E": SecurityETF,
	"F": SecurityForeign,
	"H": SecurityUSDepositaryShares,
	"I": SecurityUnits,
	"L": SecurityIndexLinkedNotes,
	"M": SecurityOther,
	"O": SecurityOrdinaryShares,
	"P": SecurityPreferred,
	"R": SecurityRights,
	"S": SecuritySharesOfBeneficialInterest,
	"T": SecurityTest,
	"U": SecurityClosedEndFund,
	"X": SecurityIndex,
	"Y": SecurityWarrant,
}

func ParseSecurityType(tok string) SecurityType { return code(securityTypes, tok, SecurityInvalid) }

var securityNames = [...]string{"Invalid", "ADR", "CommonStock", "Debentures", "ETF", "Foreign",
	"USDepositaryShares", "Units", "IndexLinkedNotes", "Other", "OrdinaryShares", "Preferred",
	"Rights", "SharesOfBeneficialInterest", "Test", "ClosedEndFund", "Index", "Warrant"}

func (s SecurityType) String() string { return name(securityNames[:], int(s)) }

type PriceResolution uint8

const (
	ResolutionInvalid PriceResolution = iota
	ResolutionAllPenny
	ResolutionPennyNickel
	ResolutionNickelDime
)

var resolutions = map[string]PriceResolution{
	"0": ResolutionAllPenny,
	"1": ResolutionPennyNickel,
	"5": ResolutionNickelDime,
}

func ParsePriceResolution(tok string) PriceResolution {
	return code(resolutions, tok, ResolutionInvalid)
}

var resolutionNames = [...]string{"Invalid", "AllPenny", "PennyNickel", "NickelDime"}

func (p PriceResolution) String() string { return name(resolutionNames[:], int(p)) }

type SecurityStatus uint8

const (
	StatusInvalid SecurityStatus = iota
	StatusHalt
	StatusResume
	StatusSSRActivated
	StatusSSRContinued
	StatusSSRDeactivated
	StatusPreOpening
	StatusBeginAcceptingOrders
	StatusEarlySession
	StatusCoreSession
	StatusLateSession
	StatusClosed
	StatusPriceIndication
	StatusPreOpeningPriceIndication
)

var securityStatuses = map[string]SecurityStatus{
	"4": StatusHalt,
	"5": StatusResume,
	"A": StatusSSRActivated,
	"C": StatusSSRContinued,
	"D": StatusSSRDeactivated,
	"P": StatusPreOpening,
	"B": StatusBeginAcceptingOrders,
	"E": StatusEarlySession,
	"O": StatusCoreSession,
	"L": StatusLateSession,
	"X": StatusClosed,
	"I": StatusPriceIndication,
	"G": StatusPreOpeningPriceIndication,
}

func ParseSecurityStatus(tok string) SecurityStatus {
	return code(securityStatuses, tok, StatusInvalid)
}

var statusNames = [...]string{"Invalid", "Halt", "Resume", "SSRActivated", "SSRContinued",
	"SSRDeactivated", "PreOpening", "BeginAcceptingOrders", "EarlySession", "CoreSession",
	"LateSession", "Closed", "PriceIndication", "PreOpeningPriceIndication"}

func (s SecurityStatus) String() string { return name(statusNames[:], int(s)) }

type HaltCondition uint8

const (
	HaltInvalid HaltCondition = iota
	HaltNotDelayed
	HaltNewsReleased
	HaltOrderImbalance
	HaltNewsPending
	HaltLULDPause
	HaltEquipmentChangeover
	HaltNoOpenNoResume
	HaltAdditionalInfoRequested
	HaltRegulatoryConcern
	HaltMergerEffective
	HaltETFComponentPricesUnavailable
	HaltCorporateAction
	HaltNewSecurityOffering
	HaltIntradayIndicativeValueUnavailable
	HaltCircuitBreakerLevel1
	HaltCircuitBreakerLevel2
	HaltCircuitBreakerLevel3
)

var haltConditions = map[string]HaltCondition{
	"~": HaltNotDelayed,
	"D": HaltNewsReleased,
	"I": HaltOrderImbalance,
	"P": HaltNewsPending,
	"M": HaltLULDPause,
	"X": HaltEquipmentChangeover,
	"Z": HaltNoOpenNoResume,
	"A": HaltAdditionalInfoRequested,
	"C": HaltRegulatoryConcern,
	"E": HaltMergerEffective,
	"F": HaltETFComponentPricesUnavailable,
	"N": HaltCorporateAction,
	"O": HaltNewSecurityOffering,
	"V": HaltIntradayIndicativeValueUnavailable,
	"1": HaltCircuitBreakerLevel1,
	"2": HaltCircuitBreakerLevel2,
	"3": HaltCircuitBreakerLevel3,
}

func ParseHaltCondition(tok string) HaltCondition { return code(haltConditions, tok, HaltInvalid) }

var haltNames = [...]string{"Invalid", "NotDelayed", "NewsReleased", "OrderImbalance", "NewsPending",
	"LULDPause", "EquipmentChangeover", "NoOpenNoResume", "AdditionalInfoRequested",
	"RegulatoryConcern", "MergerEffective", "ETFComponentPricesUnavailable", "CorporateAction",
	"NewSecurityOffering", "IntradayIndicativeValueUnavailable", "CircuitBreakerLevel1",
	"CircuitBreakerLevel2", "CircuitBreakerLevel3"}

func (h HaltCondition) String() string { return name(haltNames[:], int(h)) }

// SSRExchange is the exchange that triggered a short sale restriction.
type SSRExchange uint8

const (
	SSRExchangeInvalid SSRExchange = iota
	SSRExchangeNYSE
	SSRExchangeNYSEArca
	SSRExchangeNYSENational
	SSRExchangeNASDAQ
	SSRExchangeNYSEAmerican
	SSRExchangeNASDAQOMXBX
	SSRExchangeFINRA
	SSRExchangeISE
	SSRExchangeEDGA
	SSRExchangeEDGX
	SSRExchangeLTSE
	SSRExchangeNYSEChicago
	SSRExchangeCTS
	SSRExchangeNASDAQOMX
	SSRExchangeIEX
	SSRExchangeCBSX
	SSRExchangeNASDAQOMXPSX
	SSRExchangeCboeBYX
	SSRExchangeCboeBZX
)

// 'C' is listed for both NSX and NYSE National; it maps to NYSE National.
var ssrExchanges = map[string]SSRExchange{
	"N": SSRExchangeNYSE,
	"P": SSRExchangeNYSEArca,
	"C": SSRExchangeNYSENational,
	"Q": SSRExchangeNASDAQ,
	"A": SSRExchangeNYSEAmerican,
	"B": SSRExchangeNASDAQOMXBX,
	"D": SSRExchangeFINRA,
	"I": SSRExchangeISE,
	"J": SSRExchangeEDGA,
	"K": SSRExchangeEDGX,
	"L": SSRExchangeLTSE,
	"M": SSRExchangeNYSEChicago,
	"S": SSRExchangeCTS,
	"T": SSRExchangeNASDAQOMX,
	"V": SSRExchangeIEX,
	"W": SSRExchangeCBSX,
	"X": SSRExchangeNASDAQOMXPSX,
	"Y": SSRExchangeCboeBYX,
	"Z": SSRExchangeCboeBZX,
}

func ParseSSRExchange(tok string) SSRExchange { return code(ssrExchanges, tok, SSRExchangeInvalid) }

var ssrExchangeNames = [...]string{"Invalid", "NYSE", "NYSEArca", "NYSENational", "NASDAQ",
	"NYSEAmerican", "NASDAQOMXBX", "FINRA", "ISE", "EDGA", "EDGX", "LTSE", "NYSEChicago", "CTS",
	"NASDAQOMX", "IEX", "CBSX", "NASDAQOMXPSX", "CboeBYX", "CboeBZX"}

func (x SSRExchange) String() string { return name(ssrExchangeNames[:], int(x)) }

type SSRState uint8

const (
	SSRStateInvalid SSRState = iota
	SSRStateNone
	SSRStateInEffect
)

var ssrStates = map[string]SSRState{
	"~": SSRStateNone,
	"E": SSRStateInEffect,
}

func ParseSSRState(tok string) SSRState { return code(ssrStates, tok, SSRStateInvalid) }

func (s SSRState) String() string {
	return name([]string{"Invalid", "None", "InEffect"}, int(s))
}

type MarketState uint8

const (
	MarketStateInvalid MarketState = iota
	MarketStatePreOpening
	MarketStateEarlySession
	MarketStateCoreSession
	MarketStateLateSession
	MarketStateClosed
)

var marketStates = map[string]MarketState{
	"P": MarketStatePreOpening,
	"E": MarketStateEarlySession,
	"O": MarketStateCoreSession,
	"L": MarketStateLateSession,
	"X": MarketStateClosed,
}

func ParseMarketState(tok string) MarketState { return code(marketStates, tok, MarketStateInvalid) }

func (s MarketState) String() string {
	return name([]string{"Invalid", "PreOpening", "EarlySession", "CoreSession", "LateSession", "Closed"}, int(s))
}

// code looks tok up exactly; unlike trade conditions there is no blank code.
func code[T any](table map[string]T, tok string, invalid T) T {
	if v, ok := table[tok]; ok {
		return v
	}
	return invalid
}

func name(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return names[0]
	}
	return names[i]
}
