package indicator

// EMA returns the exponential moving average of series, seeded with the SMA
// of the first period values and recurred forward with multiplier
// 2/(period+1). With len(series) == period the result equals the SMA seed.
// Returns 0 when series is shorter than period.
func EMA(series []float64, period int) float64 {
	s := emaSeries(series, period)
	if s == nil {
		return 0
	}
	return s[len(s)-1]
}

// emaSeries computes the EMA at every index from period-1 onward.
// Indices before period-1 hold 0 (no value yet). Returns nil when series
// is shorter than period.
func emaSeries(series []float64, period int) []float64 {
	if period <= 0 || len(series) < period {
		return nil
	}

	out := make([]float64, len(series))
	multiplier := 2.0 / float64(period+1)

	// SMA seed
	sum := 0.0
	for i := 0; i < period; i++ {
		sum += series[i]
	}
	out[period-1] = sum / float64(period)

	for i := period; i < len(series); i++ {
		out[i] = series[i]*multiplier + out[i-1]*(1-multiplier)
	}
	return out
}
