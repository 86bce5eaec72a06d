// Package advisor calls an external signal-review service. The service is a
// black box: it sees the core analysis and candle history and either returns
// a full replacement signal or declines. Replacement is all-or-nothing; no
// field-level merging happens anywhere.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"market-analyzer/internal/model"
)

// HTTPAdvisor reviews signals through a remote HTTP endpoint. It implements
// model.Advisor.
type HTTPAdvisor struct {
	url    string
	client *http.Client
}

// NewHTTPAdvisor creates an advisor client for the given review endpoint.
func NewHTTPAdvisor(url string) *HTTPAdvisor {
	return &HTTPAdvisor{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type reviewRequest struct {
	Analysis model.MarketAnalysis `json:"analysis"`
	Candles  []model.Candle       `json:"candles"`
}

type reviewResponse struct {
	Status  bool                 `json:"status"`
	Message string               `json:"message"`
	Data    *model.TradingSignal `json:"data"`
}

// Review posts the analysis and its candle history to the review service.
// A null data field means the service declined; the caller keeps the core
// signal.
func (a *HTTPAdvisor) Review(ctx context.Context, analysis model.MarketAnalysis, candles []model.Candle) (*model.TradingSignal, error) {
	body, err := json.Marshal(reviewRequest{Analysis: analysis, Candles: candles})
	if err != nil {
		return nil, fmt.Errorf("advisor: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("advisor: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("advisor: review: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("advisor: unexpected status %d", resp.StatusCode)
	}

	var out reviewResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("advisor: decode response: %w", err)
	}
	if !out.Status {
		return nil, fmt.Errorf("advisor: review rejected: %s", out.Message)
	}
	if out.Data == nil {
		return nil, nil
	}

	repl := *out.Data
	if repl.Symbol == "" {
		repl.Symbol = analysis.Symbol
	}
	return &repl, nil
}
