// Package model defines the domain types shared across the analyzer:
// candles, indicator snapshots, trading signals, and market analyses.
package model

import (
	"encoding/json"
	"time"
)

// Trend classifies the prevailing price direction.
type Trend string

const (
	TrendBullish   Trend = "BULLISH"
	TrendBearish   Trend = "BEARISH"
	TrendSideways  Trend = "SIDEWAYS"
	TrendUndefined Trend = "UNDEFINED"
)

// Momentum classifies the strength and direction of recent price movement.
type Momentum string

const (
	MomentumStrongUp   Momentum = "STRONG_UP"
	MomentumUp         Momentum = "UP"
	MomentumNeutral    Momentum = "NEUTRAL"
	MomentumDown       Momentum = "DOWN"
	MomentumStrongDown Momentum = "STRONG_DOWN"
	MomentumUndefined  Momentum = "UNDEFINED"
)

// Volatility buckets realized volatility into coarse regimes.
type Volatility string

const (
	VolatilityHigh   Volatility = "HIGH"
	VolatilityMedium Volatility = "MEDIUM"
	VolatilityLow    Volatility = "LOW"
)

// Action is the discrete trading recommendation.
type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Strength tiers a signal by scoring magnitude.
type Strength string

const (
	StrengthWeak       Strength = "WEAK"
	StrengthModerate   Strength = "MODERATE"
	StrengthStrong     Strength = "STRONG"
	StrengthVeryStrong Strength = "VERY_STRONG"
)

// IndicatorSnapshot is one consistent bundle of indicator values computed
// from a full candle history. Recomputed fresh on every analysis cycle;
// never mutated.
type IndicatorSnapshot struct {
	SMA20         float64  `json:"sma20"`
	SMA50         float64  `json:"sma50"`
	EMA12         float64  `json:"ema12"`
	EMA26         float64  `json:"ema26"`
	RSI           float64  `json:"rsi"`
	MACD          float64  `json:"macd"`
	MACDSignal    float64  `json:"macd_signal"`
	MACDHistogram float64  `json:"macd_histogram"`
	ATR           float64  `json:"atr"`
	CurrentVolume float64  `json:"current_volume"`
	AverageVolume float64  `json:"average_volume"`
	Trend         Trend    `json:"trend"`
	Momentum      Momentum `json:"momentum"`
}

// TradingSignal is the decision record produced once per analysis cycle.
// It is immutable; an advisory override produces a replacement record,
// never an in-place mutation.
type TradingSignal struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Action      Action    `json:"action"`
	Confidence  int       `json:"confidence"`  // 0-100
	Probability int       `json:"probability"` // 0-100, win-probability estimate
	Strength    Strength  `json:"strength"`
	Reason      string    `json:"reason"`
	Timestamp   time.Time `json:"timestamp"`
	EntryPrice  float64   `json:"entry_price"`
	StopLoss    float64   `json:"stop_loss"`
	TakeProfit  float64   `json:"take_profit"`
}

// Actionable reports whether the signal recommends opening a position.
func (s *TradingSignal) Actionable() bool {
	return s.Action == ActionBuy || s.Action == ActionSell
}

// MarketAnalysis is the top-level output of one analysis cycle.
// Signals is ordered and currently always holds exactly one element;
// it is a slice for forward extensibility.
type MarketAnalysis struct {
	Symbol     string          `json:"symbol"`
	Trend      Trend           `json:"trend"`
	Momentum   Momentum        `json:"momentum"`
	Volatility Volatility      `json:"volatility"`
	Signals    []TradingSignal `json:"signals"`
}

// Signal returns the current trading signal, or nil if none was produced.
func (a *MarketAnalysis) Signal() *TradingSignal {
	if len(a.Signals) == 0 {
		return nil
	}
	return &a.Signals[0]
}

// JSON returns the JSON-encoded analysis (ignoring errors for hot-path usage).
func (a *MarketAnalysis) JSON() []byte {
	b, _ := json.Marshal(a)
	return b
}
