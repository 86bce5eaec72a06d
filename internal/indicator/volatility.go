package indicator

import (
	"math"

	"market-analyzer/internal/model"
)

// Volatility returns the realized volatility of the candle history: the
// standard deviation of log-returns ln(close_i/close_{i-1}) over the full
// supplied window, scaled to a percentage. A constant-price series yields
// exactly 0. Returns 0 when fewer than two candles are supplied.
func Volatility(candles []model.Candle) float64 {
	if len(candles) < 2 {
		return 0
	}

	returns := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		prev := candles[i-1].Close
		if prev <= 0 || candles[i].Close <= 0 {
			continue
		}
		returns = append(returns, math.Log(candles[i].Close/prev))
	}
	if len(returns) == 0 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance) * 100
}
