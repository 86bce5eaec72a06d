// Package analysis turns an ordered candle history into a market assessment:
// an indicator snapshot, a scored trading signal, and volatility/trend/
// momentum classifications. The whole pipeline is a pure recompute over the
// supplied history. No state survives between calls, so the same candles
// always produce the same assessment (signal timestamps aside).
package analysis

import (
	"context"
	"log/slog"

	"market-analyzer/internal/indicator"
	"market-analyzer/internal/logger"
	"market-analyzer/internal/model"
)

// Analyzer is the public entry point of the engine. External callers invoke
// Analyze (and optionally Enhance); the snapshot builder and scorer are its
// internals. The optional advisor is constructor-injected and only ever
// touched by Enhance; the core pipeline has no reference to it.
type Analyzer struct {
	cfg     Config
	advisor model.Advisor
}

// New creates an Analyzer with the given threshold configuration.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// NewWithAdvisor creates an Analyzer whose Enhance step consults the given
// advisory collaborator. A nil advisor behaves exactly like New.
func NewWithAdvisor(cfg Config, advisor model.Advisor) *Analyzer {
	return &Analyzer{cfg: cfg, advisor: advisor}
}

// Analyze computes the market assessment for the supplied history. It is
// idempotent and side-effect-free apart from reading the wall clock for the
// signal timestamp. Callers must supply a chronologically ordered,
// most-recent-last history; insufficient history degrades to UNDEFINED
// classifications and a low-confidence HOLD rather than an error.
func (a *Analyzer) Analyze(candles []model.Candle) model.MarketAnalysis {
	snap := BuildSnapshot(candles, a.cfg)
	sig := Score(candles, snap, a.cfg)

	symbol := ""
	if len(candles) > 0 {
		symbol = candles[len(candles)-1].Symbol
	}

	return model.MarketAnalysis{
		Symbol:     symbol,
		Trend:      snap.Trend,
		Momentum:   snap.Momentum,
		Volatility: classifyVolatility(indicator.Volatility(candles), a.cfg),
		Signals:    []model.TradingSignal{sig},
	}
}

// Enhance hands the analysis to the advisory collaborator, if one was
// injected. The advisor either returns a full replacement signal, which
// substitutes the core's signal wholesale (never a field-level merge), or
// nothing, in which case the core's result stands. Advisory failure is
// logged and ignored; the core's guarantees never depend on it.
func (a *Analyzer) Enhance(ctx context.Context, analysis model.MarketAnalysis, candles []model.Candle) model.MarketAnalysis {
	if a.advisor == nil {
		return analysis
	}

	replacement, err := a.advisor.Review(ctx, analysis, candles)
	if err != nil {
		attrs := []any{slog.String("symbol", analysis.Symbol), slog.Any("err", err)}
		attrs = append(attrs, logger.LogWithTrace(ctx)...)
		slog.Warn("advisor review failed, keeping core signal", attrs...)
		return analysis
	}
	if replacement == nil {
		return analysis
	}

	out := analysis
	out.Signals = []model.TradingSignal{*replacement}
	return out
}

// classifyVolatility buckets realized volatility against the configured
// bounds.
func classifyVolatility(vol float64, cfg Config) model.Volatility {
	switch {
	case vol > cfg.VolatilityHigh:
		return model.VolatilityHigh
	case vol > cfg.VolatilityMedium:
		return model.VolatilityMedium
	default:
		return model.VolatilityLow
	}
}
