package indicator

// RSI returns the Relative Strength Index over the trailing period price
// changes, using Wilder's formula RSI = 100 - 100/(1 + avgGain/avgLoss).
//
// Edge cases: fewer than period+1 closes returns the neutral 50; avgLoss == 0
// returns 100 (no losses, maximal strength); avgGain == 0 returns 0.
// Output is always within [0, 100].
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return RSINeutral
	}

	gains := 0.0
	losses := 0.0
	start := len(closes) - period
	for i := start; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(period)
	avgLoss := losses / float64(period)

	if avgLoss == 0 {
		return 100
	}
	if avgGain == 0 {
		return 0
	}

	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}
