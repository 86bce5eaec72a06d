package feed

import (
	"context"
	"log"
	"time"

	"market-analyzer/internal/model"
	"market-analyzer/internal/ringbuf"
)

// Poller fetches candles on a fixed interval, maintains a rolling window and
// emits ordered history snapshots for analysis.
type Poller struct {
	source   model.CandleSource
	symbol   string
	interval time.Duration
	limit    int
	window   *ringbuf.Window

	// OnPollError, when set, observes failed polls (for metrics).
	OnPollError func(error)
}

// NewPoller creates a poller that keeps the latest limit candles for symbol.
func NewPoller(source model.CandleSource, symbol string, interval time.Duration, limit int) *Poller {
	return &Poller{
		source:   source,
		symbol:   symbol,
		interval: interval,
		limit:    limit,
		window:   ringbuf.New(limit),
	}
}

// Run polls until ctx is cancelled, sending a window snapshot on out after
// every successful fetch that advances the window. The first poll happens
// immediately. Run closes out on return.
func (p *Poller) Run(ctx context.Context, out chan<- []model.Candle) {
	defer close(out)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx, out)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[feed] poller for %s stopped", p.symbol)
			return
		case <-ticker.C:
			p.poll(ctx, out)
		}
	}
}

func (p *Poller) poll(ctx context.Context, out chan<- []model.Candle) {
	fetchCtx, cancel := context.WithTimeout(ctx, p.interval)
	candles, err := p.source.Candles(fetchCtx, p.symbol, p.limit)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Printf("[feed] poll %s: %v", p.symbol, err)
		if p.OnPollError != nil {
			p.OnPollError(err)
		}
		return
	}

	if !p.advance(candles) {
		return
	}

	select {
	case out <- p.window.Snapshot():
	case <-ctx.Done():
	}
}

// advance merges fetched candles into the window, skipping any at or before
// the newest candle already held. Returns true when the window grew.
func (p *Poller) advance(candles []model.Candle) bool {
	grew := false
	for _, c := range candles {
		if last, ok := p.window.Last(); ok && c.Timestamp <= last.Timestamp {
			continue
		}
		p.window.Push(c)
		grew = true
	}
	return grew
}
