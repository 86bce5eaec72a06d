package analysis

import (
	"market-analyzer/internal/indicator"
	"market-analyzer/internal/model"
)

// volumeWindow is the trailing window for the average-volume baseline.
const volumeWindow = 20

// BuildSnapshot computes one consistent indicator bundle from the full
// candle history and classifies trend and momentum. An empty history yields
// the neutral snapshot (trend/momentum UNDEFINED, RSI 50, everything else 0).
// The snapshot is a fresh computation on every call; nothing is retained
// between invocations.
func BuildSnapshot(candles []model.Candle, cfg Config) model.IndicatorSnapshot {
	if len(candles) == 0 {
		return model.IndicatorSnapshot{
			RSI:      indicator.RSINeutral,
			Trend:    model.TrendUndefined,
			Momentum: model.MomentumUndefined,
		}
	}

	closes := model.Closes(candles)
	macd := indicator.MACD(closes)

	snap := model.IndicatorSnapshot{
		SMA20:         indicator.SMA(closes, 20),
		SMA50:         indicator.SMA(closes, 50),
		EMA12:         indicator.EMA(closes, indicator.MACDFastPeriod),
		EMA26:         indicator.EMA(closes, indicator.MACDSlowPeriod),
		RSI:           indicator.RSI(closes, indicator.DefaultRSIPeriod),
		MACD:          macd.MACD,
		MACDSignal:    macd.Signal,
		MACDHistogram: macd.Histogram,
		ATR:           indicator.ATR(candles, indicator.DefaultATRPeriod, cfg.ATRMethod),
		CurrentVolume: candles[len(candles)-1].Volume,
		AverageVolume: averageVolume(candles),
	}

	snap.Trend = classifyTrend(snap, closes[len(closes)-1])
	snap.Momentum = classifyMomentum(snap, closes, cfg)
	return snap
}

// averageVolume is the mean of the trailing volumeWindow volumes, or of the
// whole history when it is shorter. Always defined for non-empty input.
func averageVolume(candles []model.Candle) float64 {
	n := volumeWindow
	if len(candles) < n {
		n = len(candles)
	}
	sum := 0.0
	for _, c := range candles[len(candles)-n:] {
		sum += c.Volume
	}
	return sum / float64(n)
}

// classifyTrend labels the prevailing direction from the EMA pair and the
// price's position against both SMAs. Any unavailable indicator (zero
// sentinel from insufficient history) makes the trend UNDEFINED.
func classifyTrend(snap model.IndicatorSnapshot, price float64) model.Trend {
	if snap.SMA20 == 0 || snap.SMA50 == 0 || snap.EMA12 == 0 || snap.EMA26 == 0 {
		return model.TrendUndefined
	}

	switch {
	case snap.EMA12 > snap.EMA26 && price > snap.SMA20 && price > snap.SMA50:
		return model.TrendBullish
	case snap.EMA12 < snap.EMA26 && price < snap.SMA20 && price < snap.SMA50:
		return model.TrendBearish
	default:
		return model.TrendSideways
	}
}

// classifyMomentum maps the MACD histogram magnitude against the strong and
// weak thresholds, requiring the latest price change to agree in direction
// for the strong tiers. UNDEFINED until MACD has enough history.
func classifyMomentum(snap model.IndicatorSnapshot, closes []float64, cfg Config) model.Momentum {
	if len(closes) < indicator.MACDSlowPeriod {
		return model.MomentumUndefined
	}

	change := 0.0
	if len(closes) >= 2 {
		change = closes[len(closes)-1] - closes[len(closes)-2]
	}

	hist := snap.MACDHistogram
	switch {
	case hist > cfg.MACDStrongThreshold && change > 0:
		return model.MomentumStrongUp
	case hist > cfg.MACDThreshold:
		return model.MomentumUp
	case hist < -cfg.MACDStrongThreshold && change < 0:
		return model.MomentumStrongDown
	case hist < -cfg.MACDThreshold:
		return model.MomentumDown
	default:
		return model.MomentumNeutral
	}
}
