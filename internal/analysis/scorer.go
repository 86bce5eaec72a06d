package analysis

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"market-analyzer/internal/model"
)

// Score thresholds mapping the summed rule contributions to an action and
// strength tier. The BUY and SELL sides are mirror images by construction.
const (
	scoreVeryStrong = 8
	scoreStrong     = 6
	scoreModerate   = 4
)

// Probability base values per strength tier, before the accuracy heuristic.
const (
	probModerate   = 65
	probStrong     = 80
	probVeryStrong = 90
)

// rsiApproachBand widens the deep oversold/overbought bounds into the
// weaker "approaching" zones.
const rsiApproachBand = 10

// Score converts a candle history plus its indicator snapshot into a
// trading signal by summing weighted rule contributions. Each fired rule
// appends its label to the signal's reason. Below MinScoringHistory candles
// the scorer returns a fixed low-confidence HOLD pinned to the latest close.
func Score(candles []model.Candle, snap model.IndicatorSnapshot, cfg Config) model.TradingSignal {
	symbol := ""
	price := 0.0
	if len(candles) > 0 {
		symbol = candles[len(candles)-1].Symbol
		price = candles[len(candles)-1].Close
	}

	if len(candles) < MinScoringHistory {
		entry := roundTo(price, cfg.PriceDecimals)
		return model.TradingSignal{
			ID:          uuid.NewString(),
			Symbol:      symbol,
			Action:      model.ActionHold,
			Confidence:  25,
			Probability: 50,
			Strength:    model.StrengthWeak,
			Reason:      "insufficient data",
			Timestamp:   time.Now().UTC(),
			EntryPrice:  entry,
			StopLoss:    entry,
			TakeProfit:  entry,
		}
	}

	score := 0
	var reasons []string
	fire := func(points int, label string) {
		score += points
		reasons = append(reasons, label)
	}

	// RSI zones
	switch {
	case snap.RSI < cfg.RSIOversold:
		fire(3, "RSI deep oversold")
	case snap.RSI < cfg.RSIOversold+rsiApproachBand:
		fire(1, "RSI approaching oversold")
	case snap.RSI > cfg.RSIOverbought:
		fire(-3, "RSI deep overbought")
	case snap.RSI > cfg.RSIOverbought-rsiApproachBand:
		fire(-1, "RSI approaching overbought")
	}

	// MACD histogram against the calibrated threshold
	hist := snap.MACDHistogram
	switch {
	case hist > cfg.MACDThreshold && snap.MACD > snap.MACDSignal:
		fire(2, "MACD bullish crossover")
	case hist > 0 && hist <= cfg.MACDThreshold:
		fire(1, "MACD mild positive")
	case hist < -cfg.MACDThreshold && snap.MACD < snap.MACDSignal:
		fire(-2, "MACD bearish crossover")
	case hist < 0 && hist >= -cfg.MACDThreshold:
		fire(-1, "MACD mild negative")
	}

	// Price vs SMA20
	if price > snap.SMA20 {
		fire(2, "price above SMA20")
	} else {
		fire(-2, "price below SMA20")
	}

	// EMA cross
	if snap.EMA12 > snap.EMA26 {
		fire(2, "EMA12 above EMA26")
	} else {
		fire(-2, "EMA12 below EMA26")
	}

	// Trend confirmation
	switch snap.Trend {
	case model.TrendBullish:
		fire(2, "bullish trend")
	case model.TrendBearish:
		fire(-2, "bearish trend")
	}

	// Volume spike amplifies whichever side is already winning.
	if snap.AverageVolume > 0 && snap.CurrentVolume > snap.AverageVolume*cfg.VolumeMultiplier {
		if score > 0 {
			fire(1, "volume spike confirms buying")
		} else if score < 0 {
			fire(-1, "volume spike confirms selling")
		}
	}

	action, strength := mapScore(score)
	confidence, probability := rateSignal(strength, snap, cfg)

	entry := roundTo(price, cfg.PriceDecimals)
	stop, target := bracket(action, price, snap.ATR, cfg)

	reason := strings.Join(reasons, "; ")
	if reason == "" {
		reason = "no rules fired"
	}

	return model.TradingSignal{
		ID:          uuid.NewString(),
		Symbol:      symbol,
		Action:      action,
		Confidence:  confidence,
		Probability: probability,
		Strength:    strength,
		Reason:      reason,
		Timestamp:   time.Now().UTC(),
		EntryPrice:  entry,
		StopLoss:    stop,
		TakeProfit:  target,
	}
}

// mapScore applies the symmetric action/strength policy.
func mapScore(score int) (model.Action, model.Strength) {
	switch {
	case score >= scoreVeryStrong:
		return model.ActionBuy, model.StrengthVeryStrong
	case score >= scoreStrong:
		return model.ActionBuy, model.StrengthStrong
	case score >= scoreModerate:
		return model.ActionBuy, model.StrengthModerate
	case score <= -scoreVeryStrong:
		return model.ActionSell, model.StrengthVeryStrong
	case score <= -scoreStrong:
		return model.ActionSell, model.StrengthStrong
	case score <= -scoreModerate:
		return model.ActionSell, model.StrengthModerate
	default:
		return model.ActionHold, model.StrengthWeak
	}
}

// rateSignal derives confidence and win probability from the strength tier.
// The probability is scaled by heuristicAccuracy; see that function for the
// caveat on what the number does and does not mean.
func rateSignal(strength model.Strength, snap model.IndicatorSnapshot, cfg Config) (confidence, probability int) {
	var base float64
	switch strength {
	case model.StrengthVeryStrong:
		confidence, base = 90, probVeryStrong
	case model.StrengthStrong:
		confidence, base = 75, probStrong
	case model.StrengthModerate:
		confidence, base = 60, probModerate
	default:
		return 25, 50
	}
	probability = int(math.Round(base * heuristicAccuracy(snap, cfg)))
	return confidence, probability
}

// heuristicAccuracy is a static rule-of-thumb multiplier, NOT a backtested
// or learned accuracy estimate: a 0.75 base nudged upward when RSI sits in
// an extreme zone and when the MACD histogram magnitude clears the strong
// calibration threshold, capped at 0.95. Treat the resulting probabilities
// as relative ranking between signals, not validated win rates.
func heuristicAccuracy(snap model.IndicatorSnapshot, cfg Config) float64 {
	acc := 0.75
	if snap.RSI < cfg.RSIOversold || snap.RSI > cfg.RSIOverbought {
		acc += 0.10
	}
	if math.Abs(snap.MACDHistogram) > cfg.MACDStrongThreshold {
		acc += 0.10
	}
	if acc > 0.95 {
		acc = 0.95
	}
	return acc
}

// bracket derives stop-loss and take-profit from the entry price and ATR.
// For HOLD both collapse onto the entry. A zero ATR (degenerate history)
// is floored to a fraction of price, and the resulting risk is floored to
// one price tick so the rounded brackets never coincide with the entry on
// an actionable signal.
func bracket(action model.Action, price, atr float64, cfg Config) (stop, target float64) {
	entry := roundTo(price, cfg.PriceDecimals)
	if action == model.ActionHold {
		return entry, entry
	}

	if atr <= 0 {
		atr = price * 0.001 // sentinel floor, keeps brackets non-degenerate
	}

	risk := atr * cfg.ATRMultiplier
	if tick := math.Pow(10, -float64(cfg.PriceDecimals)); risk < tick {
		risk = tick
	}
	reward := risk * cfg.RiskRewardRatio

	if action == model.ActionBuy {
		stop = roundTo(price-risk, cfg.PriceDecimals)
		target = roundTo(price+reward, cfg.PriceDecimals)
		return stop, target
	}
	stop = roundTo(price+risk, cfg.PriceDecimals)
	target = roundTo(price-reward, cfg.PriceDecimals)
	return stop, target
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
