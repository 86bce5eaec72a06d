package gateway

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"market-analyzer/internal/model"
)

// SignalReader reads recorded signals for the REST surface.
type SignalReader interface {
	Signals(symbol string, limit int) ([]model.TradingSignal, error)
}

// Server exposes the hub's WebSocket stream plus REST endpoints for the
// latest analysis and the signal journal.
type Server struct {
	hub     *Hub
	store   model.AnalysisStore
	journal SignalReader
	httpSrv *http.Server
}

// NewServer creates a gateway server on addr. store and journal may be nil;
// their endpoints then return 503.
func NewServer(addr string, hub *Hub, store model.AnalysisStore, journal SignalReader) *Server {
	s := &Server{hub: hub, store: store, journal: journal}

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/api/analysis", s.handleAnalysis)
	mux.HandleFunc("/api/signals", s.handleSignals)
	mux.HandleFunc("/healthz", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[gateway] listening on %s", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpSrv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "analysis store unavailable")
		return
	}

	analysis, err := s.store.LatestAnalysis(r.Context(), symbol)
	if err != nil {
		log.Printf("[gateway] load analysis %s: %v", symbol, err)
		writeError(w, http.StatusInternalServerError, "load failed")
		return
	}
	if analysis == nil {
		writeError(w, http.StatusNotFound, "no analysis for "+symbol)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		writeError(w, http.StatusBadRequest, "missing symbol")
		return
	}
	if s.journal == nil {
		writeError(w, http.StatusServiceUnavailable, "signal journal unavailable")
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad limit")
			return
		}
		limit = n
	}

	sigs, err := s.journal.Signals(symbol, limit)
	if err != nil {
		log.Printf("[gateway] read signals %s: %v", symbol, err)
		writeError(w, http.StatusInternalServerError, "read failed")
		return
	}
	if sigs == nil {
		sigs = []model.TradingSignal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"symbol": symbol, "signals": sigs})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"ws_clients": s.hub.ClientCount(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
