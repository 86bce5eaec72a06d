package analysis

import (
	"market-analyzer/internal/indicator"
	"market-analyzer/internal/model"
)

// MinScoringHistory is the candle floor below which the scorer refuses to
// take a position and emits a low-confidence HOLD.
const MinScoringHistory = 50

// Config calibrates classification and scoring thresholds for one
// instrument. Histogram and volume thresholds are price-scale dependent:
// a currency pair near 1.0 needs values orders of magnitude smaller than
// an asset priced in the thousands, so there is no universal constant;
// pick the profile matching the instrument category.
type Config struct {
	RSIOversold   float64 // deep oversold bound; approach band is +10 above
	RSIOverbought float64 // deep overbought bound; approach band is -10 below

	MACDThreshold       float64 // histogram magnitude for crossover rules / weak momentum
	MACDStrongThreshold float64 // histogram magnitude for strong momentum

	VolumeMultiplier float64 // current vs average volume spike factor
	ATRMultiplier    float64 // stop-loss distance in ATRs
	RiskRewardRatio  float64 // take-profit distance relative to stop distance

	ATRMethod     indicator.ATRMethod
	PriceDecimals int // rounding precision for entry/stop/take-profit

	// Realized-volatility bucket bounds (percent per candle).
	VolatilityHigh   float64
	VolatilityMedium float64
}

// ConfigFor returns the documented default profile for an instrument
// category. Defaults are scaled to typical price magnitudes: forex pairs
// near 1.0, crypto in the tens of thousands, equities in the hundreds.
func ConfigFor(t model.InstrumentType) Config {
	switch t {
	case model.InstrumentForex:
		return Config{
			RSIOversold:         35,
			RSIOverbought:       65,
			MACDThreshold:       0.0001,
			MACDStrongThreshold: 0.0004,
			VolumeMultiplier:    1.5,
			ATRMultiplier:       1.5,
			RiskRewardRatio:     2.0,
			ATRMethod:           indicator.ATRWilder,
			PriceDecimals:       5,
			VolatilityHigh:      0.5,
			VolatilityMedium:    0.2,
		}
	case model.InstrumentCrypto:
		return Config{
			RSIOversold:         35,
			RSIOverbought:       65,
			MACDThreshold:       5.0,
			MACDStrongThreshold: 20.0,
			VolumeMultiplier:    2.0,
			ATRMultiplier:       1.5,
			RiskRewardRatio:     2.0,
			ATRMethod:           indicator.ATRWilder,
			PriceDecimals:       2,
			VolatilityHigh:      2.0,
			VolatilityMedium:    0.8,
		}
	default: // equities
		return Config{
			RSIOversold:         35,
			RSIOverbought:       65,
			MACDThreshold:       0.05,
			MACDStrongThreshold: 0.2,
			VolumeMultiplier:    1.8,
			ATRMultiplier:       1.5,
			RiskRewardRatio:     2.0,
			ATRMethod:           indicator.ATRWilder,
			PriceDecimals:       2,
			VolatilityHigh:      1.5,
			VolatilityMedium:    0.6,
		}
	}
}
