package model

import "context"

// ── Port Interfaces ──
// These interfaces decouple the analyzer from concrete collaborators
// (REST feed, Redis, SQLite, Telegram). Each implementation satisfies
// one or more of these.

// CandleSource supplies an ordered, time-ascending candle history,
// most-recent-last.
type CandleSource interface {
	// Candles fetches up to limit of the most recent candles.
	Candles(ctx context.Context, symbol string, limit int) ([]Candle, error)
}

// SignalJournal persists emitted trading signals for audit and replay.
type SignalJournal interface {
	// RecordSignal appends one signal to the journal.
	RecordSignal(sig TradingSignal) error

	// Close releases underlying resources.
	Close() error
}

// AnalysisStore caches the latest analysis per symbol.
type AnalysisStore interface {
	// SaveAnalysis stores the most recent analysis for its symbol.
	SaveAnalysis(ctx context.Context, analysis MarketAnalysis) error

	// LatestAnalysis loads the most recent analysis for a symbol.
	// Returns nil, nil when none has been stored yet.
	LatestAnalysis(ctx context.Context, symbol string) (*MarketAnalysis, error)

	// Close releases underlying resources.
	Close() error
}

// Advisor optionally replaces a core-produced signal with its own.
// Implementations are black boxes: they either return a full replacement
// signal, or nil to leave the core's signal standing. The analyzer never
// merges the two.
type Advisor interface {
	// Review returns a replacement signal, or nil to keep the original.
	// Errors are advisory-side failures; the caller keeps the original.
	Review(ctx context.Context, analysis MarketAnalysis, candles []Candle) (*TradingSignal, error)
}
