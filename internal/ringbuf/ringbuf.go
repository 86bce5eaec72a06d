// Package ringbuf provides a fixed-capacity rolling window of candles.
// When full, pushing a new candle evicts the oldest one. Designed for
// single-goroutine usage (the poller is both producer and consumer),
// so no locking is needed.
package ringbuf

import "market-analyzer/internal/model"

// Window is a circular buffer of candles in arrival order.
type Window struct {
	buf   []model.Candle
	start int // index of the oldest candle
	count int
}

// New creates a window holding at most capacity candles. Minimum capacity is 1.
func New(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{buf: make([]model.Candle, capacity)}
}

// Push appends a candle, evicting the oldest when the window is full.
func (w *Window) Push(c model.Candle) {
	if w.count < len(w.buf) {
		w.buf[(w.start+w.count)%len(w.buf)] = c
		w.count++
		return
	}
	w.buf[w.start] = c
	w.start = (w.start + 1) % len(w.buf)
}

// Len returns the number of candles currently held.
func (w *Window) Len() int { return w.count }

// Last returns the most recently pushed candle and true, or a zero candle
// and false when the window is empty.
func (w *Window) Last() (model.Candle, bool) {
	if w.count == 0 {
		return model.Candle{}, false
	}
	return w.buf[(w.start+w.count-1)%len(w.buf)], true
}

// Snapshot returns the held candles oldest-first as a fresh slice. The
// window retains no reference to the returned slice, so callers may keep it
// across further pushes.
func (w *Window) Snapshot() []model.Candle {
	out := make([]model.Candle, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Reset empties the window without releasing its storage.
func (w *Window) Reset() {
	w.start = 0
	w.count = 0
}
