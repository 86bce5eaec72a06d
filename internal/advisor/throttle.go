package advisor

import (
	"context"
	"sync"
	"time"

	"market-analyzer/internal/model"
)

// Throttled wraps an advisor with a per-symbol minimum interval between
// remote reviews. Calls inside the interval decline immediately so the core
// signal stands without a round trip.
type Throttled struct {
	inner    model.Advisor
	interval time.Duration

	mu   sync.Mutex
	last map[string]time.Time
	now  func() time.Time
}

// NewThrottled wraps inner, allowing at most one review per symbol per
// interval.
func NewThrottled(inner model.Advisor, interval time.Duration) *Throttled {
	return &Throttled{
		inner:    inner,
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

func (t *Throttled) Review(ctx context.Context, analysis model.MarketAnalysis, candles []model.Candle) (*model.TradingSignal, error) {
	t.mu.Lock()
	now := t.now()
	if last, ok := t.last[analysis.Symbol]; ok && now.Sub(last) < t.interval {
		t.mu.Unlock()
		return nil, nil
	}
	t.last[analysis.Symbol] = now
	t.mu.Unlock()

	return t.inner.Review(ctx, analysis, candles)
}
