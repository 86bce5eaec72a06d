package notification

import (
	"context"
	"fmt"
	"log"
	"time"

	"market-analyzer/internal/model"
)

// minAlertProbability is the win-probability floor for outbound alerts.
// Signals below it are still recorded and broadcast, just not pushed.
const minAlertProbability = 75.0

// Cooldown rate-limits alerts per key. Acquire returns true when the key was
// free and is now held for ttl.
type Cooldown interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Dispatcher gates trading signals and fans accepted alerts out to every
// configured notifier.
type Dispatcher struct {
	notifiers []Notifier
	cooldown  Cooldown
	window    time.Duration
}

// NewDispatcher creates a dispatcher. cooldown may be nil, in which case no
// rate limiting is applied.
func NewDispatcher(cooldown Cooldown, window time.Duration, notifiers ...Notifier) *Dispatcher {
	return &Dispatcher{
		notifiers: notifiers,
		cooldown:  cooldown,
		window:    window,
	}
}

// Dispatch pushes the signal to all notifiers when it clears the alert gate:
// an actionable BUY/SELL, at least STRONG, with win probability at or above
// the floor, and not inside the per-symbol-action cooldown window. Returns
// whether the alert was delivered.
func (d *Dispatcher) Dispatch(ctx context.Context, sig model.TradingSignal) (bool, error) {
	if !shouldAlert(sig) {
		return false, nil
	}

	if d.cooldown != nil {
		key := fmt.Sprintf("alert:%s:%s", sig.Symbol, sig.Action)
		ok, err := d.cooldown.Acquire(ctx, key, d.window)
		if err != nil {
			return false, fmt.Errorf("notification: cooldown: %w", err)
		}
		if !ok {
			log.Printf("[notify] suppressed %s %s: cooldown active", sig.Action, sig.Symbol)
			return false, nil
		}
	}

	alert := SignalAlert(sig)
	var firstErr error
	for _, n := range d.notifiers {
		if err := n.Send(ctx, alert); err != nil {
			log.Printf("[notify] delivery failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr == nil, firstErr
}

func shouldAlert(sig model.TradingSignal) bool {
	if !sig.Actionable() {
		return false
	}
	if sig.Strength != model.StrengthStrong && sig.Strength != model.StrengthVeryStrong {
		return false
	}
	return sig.Probability >= minAlertProbability
}
