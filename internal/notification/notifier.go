// Package notification delivers trading-signal alerts to external channels
// (Telegram, webhooks) with strength gating and per-symbol cooldowns.
package notification

import (
	"context"
	"fmt"
	"log"
	"strings"

	"market-analyzer/internal/model"
)

// AlertLevel represents the severity of an alert.
type AlertLevel string

const (
	AlertInfo     AlertLevel = "INFO"
	AlertWarning  AlertLevel = "WARNING"
	AlertCritical AlertLevel = "CRITICAL"
)

// Alert represents a notification to be sent.
type Alert struct {
	Level   AlertLevel `json:"level"`
	Title   string     `json:"title"`
	Message string     `json:"message"`
	Symbol  string     `json:"symbol"`
}

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers an alert. Returns error if delivery fails.
	Send(ctx context.Context, alert Alert) error
}

// LogNotifier is a simple notifier that logs alerts (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, alert Alert) error {
	log.Printf("[notify] [%s] %s: %s", alert.Level, alert.Title, alert.Message)
	return nil
}

// SignalAlert renders a trading signal as an alert. VERY_STRONG signals
// escalate to CRITICAL, everything else that passes the gate is WARNING.
func SignalAlert(sig model.TradingSignal) Alert {
	level := AlertWarning
	if sig.Strength == model.StrengthVeryStrong {
		level = AlertCritical
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s)\n", sig.Action, sig.Symbol, sig.Strength)
	fmt.Fprintf(&b, "Confidence: %d%%  Win probability: %d%%\n", sig.Confidence, sig.Probability)
	fmt.Fprintf(&b, "Entry: %v  SL: %v  TP: %v\n", sig.EntryPrice, sig.StopLoss, sig.TakeProfit)
	fmt.Fprintf(&b, "Why: %s", sig.Reason)

	return Alert{
		Level:   level,
		Title:   fmt.Sprintf("%s signal: %s", sig.Action, sig.Symbol),
		Message: b.String(),
		Symbol:  sig.Symbol,
	}
}
