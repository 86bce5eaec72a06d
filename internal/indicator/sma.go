package indicator

// SMA returns the simple moving average of the last period values of series.
// Returns 0 when series is shorter than period.
func SMA(series []float64, period int) float64 {
	if period <= 0 || len(series) < period {
		return 0
	}
	sum := 0.0
	for _, v := range series[len(series)-period:] {
		sum += v
	}
	return sum / float64(period)
}
