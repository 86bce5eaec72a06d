package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"market-analyzer/internal/model"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "signals.db"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_RecordAndReadSignals(t *testing.T) {
	j := openTestJournal(t)

	sigs := []model.TradingSignal{
		{ID: "a", Symbol: "EURUSD", Action: model.ActionBuy, Confidence: 75, Probability: 76,
			Strength: model.StrengthStrong, Reason: "MACD bullish crossover", Timestamp: time.UnixMilli(1000).UTC(),
			EntryPrice: 1.1000, StopLoss: 1.0950, TakeProfit: 1.1100},
		{ID: "b", Symbol: "EURUSD", Action: model.ActionHold, Confidence: 25, Probability: 50,
			Strength: model.StrengthWeak, Reason: "no consensus", Timestamp: time.UnixMilli(2000).UTC(),
			EntryPrice: 1.1010, StopLoss: 1.1010, TakeProfit: 1.1010},
		{ID: "c", Symbol: "BTCUSDT", Action: model.ActionSell, Confidence: 90, Probability: 86,
			Strength: model.StrengthVeryStrong, Reason: "RSI deep overbought", Timestamp: time.UnixMilli(1500).UTC(),
			EntryPrice: 43000, StopLoss: 43500, TakeProfit: 42000},
	}
	for _, s := range sigs {
		if err := j.RecordSignal(s); err != nil {
			t.Fatalf("record %s: %v", s.ID, err)
		}
	}

	got, err := j.Signals("EURUSD", 0)
	if err != nil {
		t.Fatalf("read signals: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d signals, want 2", len(got))
	}
	if got[0].ID != "b" || got[1].ID != "a" {
		t.Fatalf("not newest-first: %s, %s", got[0].ID, got[1].ID)
	}
	if got[1].Action != model.ActionBuy || got[1].Strength != model.StrengthStrong {
		t.Fatalf("round trip lost fields: %+v", got[1])
	}
	if got[1].EntryPrice != 1.1000 || got[1].TakeProfit != 1.1100 {
		t.Fatalf("round trip lost prices: %+v", got[1])
	}

	limited, err := j.Signals("EURUSD", 1)
	if err != nil {
		t.Fatalf("read limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "b" {
		t.Fatalf("limit: got %+v", limited)
	}
}

func TestJournal_SaveAndReadCandles(t *testing.T) {
	j := openTestJournal(t)

	batch := []model.Candle{
		{Symbol: "EURUSD", Timestamp: 1000, Open: 1.10, High: 1.11, Low: 1.09, Close: 1.105, Volume: 500},
		{Symbol: "EURUSD", Timestamp: 2000, Open: 1.105, High: 1.12, Low: 1.10, Close: 1.115, Volume: 600},
		{Symbol: "BTCUSDT", Timestamp: 1000, Open: 43000, High: 43100, Low: 42900, Close: 43050, Volume: 10},
	}
	if err := j.SaveCandles(batch); err != nil {
		t.Fatalf("save candles: %v", err)
	}

	// Re-saving an overlapping batch must not duplicate rows.
	if err := j.SaveCandles(batch[:2]); err != nil {
		t.Fatalf("re-save candles: %v", err)
	}

	got, err := j.Candles("EURUSD", 0)
	if err != nil {
		t.Fatalf("read candles: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d candles, want 2", len(got))
	}
	if got[0].Timestamp != 1000 || got[1].Timestamp != 2000 {
		t.Fatalf("not oldest-first: %d, %d", got[0].Timestamp, got[1].Timestamp)
	}

	after, err := j.Candles("EURUSD", 1000)
	if err != nil {
		t.Fatalf("read after: %v", err)
	}
	if len(after) != 1 || after[0].Timestamp != 2000 {
		t.Fatalf("afterTS filter: got %+v", after)
	}
}

func TestJournal_EmptyReads(t *testing.T) {
	j := openTestJournal(t)

	sigs, err := j.Signals("UNKNOWN", 0)
	if err != nil {
		t.Fatalf("read signals: %v", err)
	}
	if len(sigs) != 0 {
		t.Fatalf("got %d signals, want 0", len(sigs))
	}

	candles, err := j.Candles("UNKNOWN", 0)
	if err != nil {
		t.Fatalf("read candles: %v", err)
	}
	if len(candles) != 0 {
		t.Fatalf("got %d candles, want 0", len(candles))
	}
}
