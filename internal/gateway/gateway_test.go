package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"market-analyzer/internal/model"
)

type envelope struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
	TS      string          `json:"ts"`
	Seq     int64           `json:"seq"`
	Initial bool            `json:"initial"`
}

func sampleAnalysis(symbol string) model.MarketAnalysis {
	return model.MarketAnalysis{
		Symbol:     symbol,
		Trend:      model.TrendBullish,
		Momentum:   model.MomentumUp,
		Volatility: model.VolatilityMedium,
		Signals: []model.TradingSignal{{
			ID: "sig-1", Symbol: symbol, Action: model.ActionBuy,
			Confidence: 75, Probability: 76, Strength: model.StrengthStrong,
		}},
	}
}

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	// Frames may coalesce several newline-separated envelopes; the first
	// is enough for these tests.
	if i := strings.IndexByte(string(msg), '\n'); i >= 0 {
		msg = msg[:i]
	}
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		t.Fatalf("decode envelope %q: %v", msg, err)
	}
	return env
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("clients: got %d, want %d", hub.ClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_PublishReachesClient(t *testing.T) {
	hub := NewHub()
	conn := dialHub(t, hub)
	waitForClients(t, hub, 1)

	hub.Publish(sampleAnalysis("BTCUSDT"))

	env := readEnvelope(t, conn)
	if env.Channel != "analysis:BTCUSDT" {
		t.Fatalf("channel: got %q", env.Channel)
	}
	if env.Seq != 1 {
		t.Fatalf("seq: got %d, want 1", env.Seq)
	}

	var analysis model.MarketAnalysis
	if err := json.Unmarshal(env.Data, &analysis); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if analysis.Trend != model.TrendBullish {
		t.Fatalf("trend: got %s", analysis.Trend)
	}
}

func TestHub_NewClientGetsLatestState(t *testing.T) {
	hub := NewHub()
	hub.Publish(sampleAnalysis("EURUSD"))

	conn := dialHub(t, hub)
	env := readEnvelope(t, conn)
	if !env.Initial {
		t.Fatal("expected initial envelope")
	}
	if env.Channel != "analysis:EURUSD" {
		t.Fatalf("channel: got %q", env.Channel)
	}
}

type fakeStore struct {
	latest map[string]*model.MarketAnalysis
}

func (f *fakeStore) SaveAnalysis(_ context.Context, a model.MarketAnalysis) error {
	f.latest[a.Symbol] = &a
	return nil
}

func (f *fakeStore) LatestAnalysis(_ context.Context, symbol string) (*model.MarketAnalysis, error) {
	return f.latest[symbol], nil
}

func (f *fakeStore) Close() error { return nil }

type fakeJournal struct {
	sigs []model.TradingSignal
}

func (f *fakeJournal) Signals(symbol string, limit int) ([]model.TradingSignal, error) {
	var out []model.TradingSignal
	for _, s := range f.sigs {
		if s.Symbol == symbol {
			out = append(out, s)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestServer(t *testing.T, store model.AnalysisStore, journal SignalReader) *httptest.Server {
	t.Helper()
	s := NewServer(":0", NewHub(), store, journal)
	srv := httptest.NewServer(s.httpSrv.Handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestHandleAnalysis(t *testing.T) {
	store := &fakeStore{latest: map[string]*model.MarketAnalysis{}}
	store.SaveAnalysis(context.Background(), sampleAnalysis("BTCUSDT"))
	srv := newTestServer(t, store, &fakeJournal{})

	resp, err := http.Get(srv.URL + "/api/analysis?symbol=BTCUSDT")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var analysis model.MarketAnalysis
	if err := json.NewDecoder(resp.Body).Decode(&analysis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if analysis.Symbol != "BTCUSDT" {
		t.Fatalf("symbol: got %q", analysis.Symbol)
	}

	notFound, err := http.Get(srv.URL + "/api/analysis?symbol=NOPE")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	notFound.Body.Close()
	if notFound.StatusCode != http.StatusNotFound {
		t.Fatalf("missing symbol status: got %d", notFound.StatusCode)
	}

	bad, err := http.Get(srv.URL + "/api/analysis")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("no-symbol status: got %d", bad.StatusCode)
	}
}

func TestHandleSignals(t *testing.T) {
	journal := &fakeJournal{sigs: []model.TradingSignal{
		{ID: "a", Symbol: "EURUSD", Action: model.ActionBuy},
		{ID: "b", Symbol: "EURUSD", Action: model.ActionSell},
	}}
	srv := newTestServer(t, &fakeStore{latest: map[string]*model.MarketAnalysis{}}, journal)

	resp, err := http.Get(srv.URL + "/api/signals?symbol=EURUSD&limit=1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}

	var body struct {
		Symbol  string                `json:"symbol"`
		Signals []model.TradingSignal `json:"signals"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Signals) != 1 || body.Signals[0].ID != "a" {
		t.Fatalf("signals: got %+v", body.Signals)
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &fakeStore{latest: map[string]*model.MarketAnalysis{}}, &fakeJournal{})

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
}
