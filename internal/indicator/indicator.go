// Package indicator provides technical indicator calculations over candle data.
//
// Every function is pure: a fresh computation over the supplied slice with no
// retained state, so identical input always yields identical output. When a
// series is too short for a meaningful value, functions return a defined
// neutral sentinel (0, or 50 for RSI) instead of an error; insufficient data
// is never a hard failure in this package. Callers read the sentinel as
// "indicator unavailable".
package indicator

// Default periods shared by the snapshot builder and the scorer.
const (
	DefaultRSIPeriod = 14
	DefaultATRPeriod = 14
	MACDFastPeriod   = 12
	MACDSlowPeriod   = 26
	MACDSignalPeriod = 9
	RSINeutral       = 50.0
)
