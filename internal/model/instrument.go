package model

// InstrumentType groups instruments that share a threshold calibration.
type InstrumentType string

const (
	InstrumentForex  InstrumentType = "FOREX"
	InstrumentCrypto InstrumentType = "CRYPTO"
	InstrumentEquity InstrumentType = "EQUITY"
)

// Instrument identifies what the analyzer is watching.
type Instrument struct {
	Symbol        string         `json:"symbol"`
	Type          InstrumentType `json:"type"`
	PriceDecimals int            `json:"price_decimals"` // rounding precision for emitted prices
}
