package indicator

import (
	"math"

	"market-analyzer/internal/model"
)

// ATRMethod selects the smoothing applied to the true-range series.
// Published ATR variants disagree on this, so it is a configuration choice
// rather than a fixed behavior.
type ATRMethod string

const (
	// ATRWilder smooths true ranges with a period-length EMA.
	ATRWilder ATRMethod = "WILDER"
	// ATRSimple averages the last period true ranges.
	ATRSimple ATRMethod = "SIMPLE"
)

// ATR returns the Average True Range of the candle history, where the true
// range per step is max(high-low, |high-prevClose|, |low-prevClose|).
// Returns 0 when fewer than period+1 candles are supplied.
func ATR(candles []model.Candle, period int, method ATRMethod) float64 {
	if period <= 0 || len(candles) < period+1 {
		return 0
	}

	trs := trueRanges(candles)
	if method == ATRSimple {
		return SMA(trs, period)
	}
	return EMA(trs, period)
}

// trueRanges computes the true-range series from the second candle onward.
func trueRanges(candles []model.Candle) []float64 {
	trs := make([]float64, 0, len(candles)-1)
	for i := 1; i < len(candles); i++ {
		c := candles[i]
		prevClose := candles[i-1].Close

		tr := c.High - c.Low
		if hc := math.Abs(c.High - prevClose); hc > tr {
			tr = hc
		}
		if lc := math.Abs(c.Low - prevClose); lc > tr {
			tr = lc
		}
		trs = append(trs, tr)
	}
	return trs
}
