// Package feed supplies candle histories from a market-data REST API and
// keeps them fresh through scheduled polling.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/pquerna/otp/totp"

	"market-analyzer/internal/model"
)

// ClientConfig configures the market-data client.
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	ClientCode string
	Password   string
	TOTPSecret string // when set, login sends a generated TOTP code
	Interval   string // candle interval, e.g. "1m"
	Timeout    time.Duration
}

// Client fetches candles from a session-authenticated market-data endpoint.
// It implements model.CandleSource.
type Client struct {
	cfg         ClientConfig
	httpClient  *http.Client
	accessToken string
}

// NewClient creates a market-data client. Login is lazy: the first Candles
// call establishes the session.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type loginResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		AccessToken string `json:"access_token"`
	} `json:"data"`
}

// Login establishes an API session. When a TOTP secret is configured, a
// one-time code is generated and sent with the credentials.
func (c *Client) Login(ctx context.Context) error {
	code := ""
	if c.cfg.TOTPSecret != "" {
		var err error
		code, err = totp.GenerateCode(c.cfg.TOTPSecret, time.Now())
		if err != nil {
			return fmt.Errorf("feed: generate totp: %w", err)
		}
	}

	body, _ := json.Marshal(map[string]string{
		"clientcode": c.cfg.ClientCode,
		"password":   c.cfg.Password,
		"totp":       code,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/auth/v1/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("feed: create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-PrivateKey", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("feed: login: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed: login status %d", resp.StatusCode)
	}

	var out loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("feed: decode login response: %w", err)
	}
	if !out.Status || out.Data.AccessToken == "" {
		return fmt.Errorf("feed: login rejected: %s", out.Message)
	}

	c.accessToken = out.Data.AccessToken
	log.Printf("[feed] session established for %s", c.cfg.ClientCode)
	return nil
}

type candlePayload struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Close     float64 `json:"close"`
	Volume    float64 `json:"volume"`
}

type candlesResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    []candlePayload `json:"data"`
}

// Candles fetches up to limit of the most recent candles for symbol,
// returned oldest-first. An expired session is re-established once.
func (c *Client) Candles(ctx context.Context, symbol string, limit int) ([]model.Candle, error) {
	if c.accessToken == "" {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}

	candles, status, err := c.fetchCandles(ctx, symbol, limit)
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		// Session expired: one re-login, then retry the fetch.
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		candles, _, err = c.fetchCandles(ctx, symbol, limit)
		return candles, err
	}
	return candles, err
}

func (c *Client) fetchCandles(ctx context.Context, symbol string, limit int) ([]model.Candle, int, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", c.cfg.Interval)
	q.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"/market/v1/candles?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("feed: create candles request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-PrivateKey", c.cfg.APIKey)
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("feed: fetch candles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("feed: candles status %d", resp.StatusCode)
	}

	var out candlesResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("feed: decode candles: %w", err)
	}
	if !out.Status {
		return nil, resp.StatusCode, fmt.Errorf("feed: candles rejected: %s", out.Message)
	}

	candles := make([]model.Candle, 0, len(out.Data))
	for _, p := range out.Data {
		candles = append(candles, model.Candle{
			Symbol:    symbol,
			Timestamp: p.Timestamp,
			Open:      p.Open,
			High:      p.High,
			Low:       p.Low,
			Close:     p.Close,
			Volume:    p.Volume,
		})
	}

	// The analyzer requires a chronologically ordered, most-recent-last
	// history; normalize here so upstream ordering quirks never reach it.
	sort.Slice(candles, func(i, j int) bool {
		return candles[i].Timestamp < candles[j].Timestamp
	})
	return candles, resp.StatusCode, nil
}
