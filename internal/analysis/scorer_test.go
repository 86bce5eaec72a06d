package analysis

import (
	"strings"
	"testing"

	"market-analyzer/internal/model"
)

// bullishSnapshot fabricates a snapshot in which every directional rule
// leans BUY against a last close of 100.
func bullishSnapshot() model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		SMA20:         95,  // price above SMA20
		SMA50:         90,
		EMA12:         99,  // EMA12 above EMA26
		EMA26:         97,
		RSI:           30,  // deep oversold
		MACD:          0.5, // bullish crossover: hist > threshold, macd > signal
		MACDSignal:    0.1,
		MACDHistogram: 0.4,
		ATR:           2,
		CurrentVolume: 1000,
		AverageVolume: 1000, // no spike
		Trend:         model.TrendBullish,
	}
}

// bearishSnapshot is the exact mirror of bullishSnapshot around 100.
func bearishSnapshot() model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		SMA20:         105, // price below SMA20
		SMA50:         110,
		EMA12:         101, // EMA12 below EMA26
		EMA26:         103,
		RSI:           70,  // deep overbought
		MACD:          -0.5,
		MACDSignal:    -0.1,
		MACDHistogram: -0.4,
		ATR:           2,
		CurrentVolume: 1000,
		AverageVolume: 1000,
		Trend:         model.TrendBearish,
	}
}

// ────────────────────────────────────────────────────────────
// History floor
// ────────────────────────────────────────────────────────────

func TestScore_InsufficientHistory(t *testing.T) {
	cfg := equityConfig()

	// Below 50 candles: fixed HOLD/25 regardless of price content.
	histories := [][]model.Candle{
		linear(49, 100, 5),   // violent uptrend
		linear(49, 5000, -50), // violent downtrend
		series(100),
	}

	for i, candles := range histories {
		snap := BuildSnapshot(candles, cfg)
		sig := Score(candles, snap, cfg)

		if sig.Action != model.ActionHold {
			t.Errorf("history %d: action = %v, want HOLD", i, sig.Action)
		}
		if sig.Confidence != 25 {
			t.Errorf("history %d: confidence = %d, want 25", i, sig.Confidence)
		}
		if sig.Probability != 50 {
			t.Errorf("history %d: probability = %d, want 50", i, sig.Probability)
		}
		if sig.Reason != "insufficient data" {
			t.Errorf("history %d: reason = %q", i, sig.Reason)
		}

		// Entry/stop/target all pinned to the latest close.
		last := candles[len(candles)-1].Close
		if sig.EntryPrice != last || sig.StopLoss != last || sig.TakeProfit != last {
			t.Errorf("history %d: prices %v/%v/%v not pinned to close %v",
				i, sig.EntryPrice, sig.StopLoss, sig.TakeProfit, last)
		}
	}
}

// ────────────────────────────────────────────────────────────
// Symmetry
// ────────────────────────────────────────────────────────────

func TestScore_BuySellSymmetry(t *testing.T) {
	cfg := equityConfig()
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100
	}
	candles := series(closes...)

	buy := Score(candles, bullishSnapshot(), cfg)
	sell := Score(candles, bearishSnapshot(), cfg)

	if buy.Action != model.ActionBuy {
		t.Fatalf("bullish snapshot: action = %v (reason %q), want BUY", buy.Action, buy.Reason)
	}
	if sell.Action != model.ActionSell {
		t.Fatalf("bearish snapshot: action = %v (reason %q), want SELL", sell.Action, sell.Reason)
	}

	// Mirrored inputs must land in the same strength tier with the same
	// confidence and probability.
	if buy.Strength != sell.Strength {
		t.Errorf("strength asymmetry: BUY %v vs SELL %v", buy.Strength, sell.Strength)
	}
	if buy.Confidence != sell.Confidence {
		t.Errorf("confidence asymmetry: %d vs %d", buy.Confidence, sell.Confidence)
	}
	if buy.Probability != sell.Probability {
		t.Errorf("probability asymmetry: %d vs %d", buy.Probability, sell.Probability)
	}
}

// ────────────────────────────────────────────────────────────
// Bracket ordering
// ────────────────────────────────────────────────────────────

func TestScore_BracketOrdering(t *testing.T) {
	cfg := equityConfig()
	candles := linear(60, 100, 0.1)

	buy := Score(candles, bullishSnapshot(), cfg)
	if !(buy.StopLoss < buy.EntryPrice && buy.EntryPrice < buy.TakeProfit) {
		t.Errorf("BUY ordering violated: SL %v, entry %v, TP %v",
			buy.StopLoss, buy.EntryPrice, buy.TakeProfit)
	}

	sell := Score(candles, bearishSnapshot(), cfg)
	if !(sell.TakeProfit < sell.EntryPrice && sell.EntryPrice < sell.StopLoss) {
		t.Errorf("SELL ordering violated: TP %v, entry %v, SL %v",
			sell.TakeProfit, sell.EntryPrice, sell.StopLoss)
	}

	// A balanced snapshot lands in the dead zone: HOLD with all three equal.
	// (price above SMA20 +2, EMA12 below EMA26 -2, nothing else fires)
	flat := model.IndicatorSnapshot{
		SMA20: 100, SMA50: 100, EMA12: 99, EMA26: 100,
		RSI: 50, ATR: 2, Trend: model.TrendSideways,
	}
	hold := Score(candles, flat, cfg)
	if hold.Action != model.ActionHold {
		t.Fatalf("flat snapshot: action = %v (reason %q), want HOLD", hold.Action, hold.Reason)
	}
	if hold.StopLoss != hold.EntryPrice || hold.TakeProfit != hold.EntryPrice {
		t.Errorf("HOLD prices not equal: %v/%v/%v",
			hold.EntryPrice, hold.StopLoss, hold.TakeProfit)
	}
}

func TestScore_TinyATRStillSeparatesBrackets(t *testing.T) {
	// An ATR below half a price tick would round both brackets onto the
	// entry on a 2-decimal instrument. The risk floor keeps them apart.
	cfg := equityConfig()
	candles := linear(60, 100, 0.1)

	snap := bullishSnapshot()
	snap.ATR = 0.001

	sig := Score(candles, snap, cfg)
	if sig.Action == model.ActionHold {
		t.Fatalf("bullish snapshot scored HOLD (reason %q)", sig.Reason)
	}
	if !(sig.StopLoss < sig.EntryPrice && sig.EntryPrice < sig.TakeProfit) {
		t.Errorf("brackets collapsed: SL %v, entry %v, TP %v",
			sig.StopLoss, sig.EntryPrice, sig.TakeProfit)
	}
}

// ────────────────────────────────────────────────────────────
// Rule additivity
// ────────────────────────────────────────────────────────────

func TestScore_OverboughtRSIDoesNotOverrideBullishTrend(t *testing.T) {
	// A monotonically rising 60-candle forex series pushes RSI above 65,
	// but EMA/SMA/trend all remain bullish. The additive rule system must
	// not let the single RSI rule flip the decision to SELL.
	cfg := ConfigFor(model.InstrumentForex)
	candles := linear(60, 1.0900, 0.0100/59) // 1.0900 → 1.1000

	snap := BuildSnapshot(candles, cfg)
	if snap.RSI <= 65 {
		t.Fatalf("setup: RSI = %v, expected > 65 for a monotone uptrend", snap.RSI)
	}
	if snap.Trend != model.TrendBullish {
		t.Fatalf("setup: trend = %v, expected BULLISH", snap.Trend)
	}

	sig := Score(candles, snap, cfg)
	if sig.Action == model.ActionSell {
		t.Errorf("action = SELL (reason %q); overbought RSI alone must not override a bullish trend", sig.Reason)
	}
}

func TestScore_VolumeSpikeAmplifies(t *testing.T) {
	cfg := equityConfig()
	candles := linear(60, 100, 0.1)

	base := bullishSnapshot()
	spiked := base
	spiked.CurrentVolume = base.AverageVolume * cfg.VolumeMultiplier * 2

	without := Score(candles, base, cfg)
	with := Score(candles, spiked, cfg)

	if !strings.Contains(with.Reason, "volume spike") {
		t.Errorf("spiked reason %q missing volume rule", with.Reason)
	}
	if strings.Contains(without.Reason, "volume spike") {
		t.Errorf("un-spiked reason %q fired volume rule", without.Reason)
	}
}

func TestScore_ReasonListsFiredRules(t *testing.T) {
	cfg := equityConfig()
	candles := linear(60, 100, 0.1)
	sig := Score(candles, bullishSnapshot(), cfg)

	for _, want := range []string{"RSI deep oversold", "MACD bullish crossover", "price above SMA20", "EMA12 above EMA26", "bullish trend"} {
		if !strings.Contains(sig.Reason, want) {
			t.Errorf("reason %q missing %q", sig.Reason, want)
		}
	}
}
