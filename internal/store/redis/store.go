// Package redis caches the latest market analysis per symbol, publishes
// updates for live subscribers, and backs alert cooldowns. All calls run
// through a circuit breaker so a Redis outage degrades the analyzer instead
// of stalling it.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"market-analyzer/internal/model"
)

const defaultAnalysisTTL = 30 * time.Minute

// Config configures the Redis store.
type Config struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int

	// AnalysisTTL bounds how long a latest-analysis entry survives without
	// refresh. Zero means defaultAnalysisTTL.
	AnalysisTTL time.Duration

	// OnBreakerStateChange, when set, observes circuit breaker transitions
	// (for metrics) in addition to the built-in logging.
	OnBreakerStateChange func(from, to State)
}

// Store implements model.AnalysisStore and the notification cooldown on a
// single Redis client.
type Store struct {
	client  *goredis.Client
	breaker *CircuitBreaker
	ttl     time.Duration
}

// New creates a Store and pings the server.
func New(cfg Config) (*Store, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	ttl := cfg.AnalysisTTL
	if ttl == 0 {
		ttl = defaultAnalysisTTL
	}

	breaker := NewCircuitBreaker(5, 10*time.Second)
	breaker.OnStateChange = func(from, to State) {
		log.Printf("[redis] circuit breaker %s -> %s", from, to)
		if cfg.OnBreakerStateChange != nil {
			cfg.OnBreakerStateChange(from, to)
		}
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Store{client: client, breaker: breaker, ttl: ttl}, nil
}

// Client returns the underlying Redis client for health checks.
func (s *Store) Client() *goredis.Client { return s.client }

func latestKey(symbol string) string { return "analysis:latest:" + symbol }

// PubSubChannel is the channel analyses for symbol are published on.
func PubSubChannel(symbol string) string { return "pub:analysis:" + symbol }

// SaveAnalysis stores the analysis as the symbol's latest and publishes it
// for live subscribers, in one pipeline.
func (s *Store) SaveAnalysis(ctx context.Context, analysis model.MarketAnalysis) error {
	payload := string(analysis.JSON())
	return s.breaker.Do(func() error {
		pipe := s.client.Pipeline()
		pipe.Set(ctx, latestKey(analysis.Symbol), payload, s.ttl)
		pipe.Publish(ctx, PubSubChannel(analysis.Symbol), payload)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("redis: save analysis %s: %w", analysis.Symbol, err)
		}
		return nil
	})
}

// LatestAnalysis loads the most recent analysis for symbol. Returns nil, nil
// when none is cached.
func (s *Store) LatestAnalysis(ctx context.Context, symbol string) (*model.MarketAnalysis, error) {
	var analysis *model.MarketAnalysis
	err := s.breaker.Do(func() error {
		raw, err := s.client.Get(ctx, latestKey(symbol)).Bytes()
		if err == goredis.Nil {
			return nil
		}
		if err != nil {
			return fmt.Errorf("redis: load analysis %s: %w", symbol, err)
		}
		var out model.MarketAnalysis
		if err := json.Unmarshal(raw, &out); err != nil {
			return fmt.Errorf("redis: decode analysis %s: %w", symbol, err)
		}
		analysis = &out
		return nil
	})
	return analysis, err
}

// Acquire implements the notification cooldown: SET NX with a TTL. Returns
// true when the key was free and is now held.
func (s *Store) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	var acquired bool
	err := s.breaker.Do(func() error {
		ok, err := s.client.SetNX(ctx, key, 1, ttl).Result()
		if err != nil {
			return fmt.Errorf("redis: acquire %s: %w", key, err)
		}
		acquired = ok
		return nil
	})
	return acquired, err
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
