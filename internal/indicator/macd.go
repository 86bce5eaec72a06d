package indicator

// MACDResult bundles the MACD line, its signal line, and the histogram
// (histogram = macd - signal).
type MACDResult struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

// MACD computes moving-average convergence-divergence over closes:
// macd = EMA(closes,12) - EMA(closes,26), signal = 9-period EMA of the
// macd line rebuilt at each historical point from index 25 onward.
//
// Requires at least 26 closes; returns the all-zero sentinel otherwise.
// While the macd series is still shorter than the signal period, the signal
// line stays at the 0 sentinel and the histogram equals the macd line.
func MACD(closes []float64) MACDResult {
	if len(closes) < MACDSlowPeriod {
		return MACDResult{}
	}

	fast := emaSeries(closes, MACDFastPeriod)
	slow := emaSeries(closes, MACDSlowPeriod)

	// macd line exists wherever both EMAs do: from index slow-1 onward.
	macdLine := make([]float64, 0, len(closes)-MACDSlowPeriod+1)
	for i := MACDSlowPeriod - 1; i < len(closes); i++ {
		macdLine = append(macdLine, fast[i]-slow[i])
	}

	macd := macdLine[len(macdLine)-1]
	signal := EMA(macdLine, MACDSignalPeriod)

	return MACDResult{
		MACD:      macd,
		Signal:    signal,
		Histogram: macd - signal,
	}
}
