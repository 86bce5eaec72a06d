package ringbuf

import (
	"testing"

	"market-analyzer/internal/model"
)

func candleAt(ts int64) model.Candle {
	return model.Candle{Symbol: "TEST", Timestamp: ts, Close: float64(ts)}
}

func TestWindow_PushAndSnapshot(t *testing.T) {
	w := New(3)
	for ts := int64(1); ts <= 2; ts++ {
		w.Push(candleAt(ts))
	}

	snap := w.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len = %d, want 2", len(snap))
	}
	if snap[0].Timestamp != 1 || snap[1].Timestamp != 2 {
		t.Errorf("snapshot out of order: %v", snap)
	}
}

func TestWindow_EvictsOldestWhenFull(t *testing.T) {
	w := New(3)
	for ts := int64(1); ts <= 5; ts++ {
		w.Push(candleAt(ts))
	}

	if w.Len() != 3 {
		t.Fatalf("len = %d, want 3", w.Len())
	}
	snap := w.Snapshot()
	want := []int64{3, 4, 5}
	for i, ts := range want {
		if snap[i].Timestamp != ts {
			t.Errorf("snapshot[%d].Timestamp = %d, want %d", i, snap[i].Timestamp, ts)
		}
	}
}

func TestWindow_Last(t *testing.T) {
	w := New(2)
	if _, ok := w.Last(); ok {
		t.Error("Last on empty window reported ok")
	}

	w.Push(candleAt(1))
	w.Push(candleAt(2))
	w.Push(candleAt(3))

	last, ok := w.Last()
	if !ok || last.Timestamp != 3 {
		t.Errorf("Last = %v, %v; want candle 3, true", last, ok)
	}
}

func TestWindow_SnapshotIsIndependent(t *testing.T) {
	w := New(3)
	w.Push(candleAt(1))
	snap := w.Snapshot()

	w.Push(candleAt(2))
	w.Push(candleAt(3))
	w.Push(candleAt(4))

	if len(snap) != 1 || snap[0].Timestamp != 1 {
		t.Errorf("earlier snapshot mutated by later pushes: %v", snap)
	}
}

func TestWindow_Reset(t *testing.T) {
	w := New(3)
	w.Push(candleAt(1))
	w.Reset()
	if w.Len() != 0 {
		t.Errorf("len after reset = %d, want 0", w.Len())
	}
}
