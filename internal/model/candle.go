package model

import "time"

// Candle represents one OHLCV bar for a fixed interval.
// Prices are float64 because the analyzer serves instruments ranging from
// sub-unit forex pairs to five-figure crypto; decimal precision is applied
// per instrument at signal emission, not at storage.
type Candle struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"timestamp"` // epoch milliseconds, bucket start
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

// Time returns the candle timestamp as a UTC time.Time.
func (c *Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// Closes extracts the close-price series from a candle history, oldest first.
func Closes(candles []Candle) []float64 {
	out := make([]float64, len(candles))
	for i := range candles {
		out[i] = candles[i].Close
	}
	return out
}
