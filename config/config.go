// Package config loads application configuration from environment variables,
// optionally seeded from a .env file.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"market-analyzer/internal/model"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// Instrument under analysis
	Symbol         string
	InstrumentType model.InstrumentType
	PriceDecimals  int

	// Market-data feed credentials
	FeedBaseURL    string
	FeedAPIKey     string
	FeedClientCode string
	FeedPassword   string
	FeedTOTPSecret string

	// Polling
	PollInterval   time.Duration
	HistoryLimit   int // candles kept in the rolling window
	CandleInterval string

	// Infrastructure
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	MetricsAddr   string
	GatewayAddr   string

	// Notifications
	TelegramBotToken string
	TelegramChatID   string
	WebhookURL       string
	AlertCooldown    time.Duration

	// Advisory service (optional)
	AdvisorURL      string
	AdvisorCooldown time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("[config] loaded .env file")
	}

	return &Config{
		Symbol:         getEnv("SYMBOL", "BTCUSDT"),
		InstrumentType: model.InstrumentType(getEnv("INSTRUMENT_TYPE", string(model.InstrumentCrypto))),
		PriceDecimals:  getEnvInt("PRICE_DECIMALS", 2),

		FeedBaseURL:    getEnv("FEED_BASE_URL", "https://api.example-market.com"),
		FeedAPIKey:     mustEnv("FEED_API_KEY"),
		FeedClientCode: getEnv("FEED_CLIENT_CODE", ""),
		FeedPassword:   getEnv("FEED_PASSWORD", ""),
		FeedTOTPSecret: getEnv("FEED_TOTP_SECRET", ""),

		PollInterval:   getEnvDuration("POLL_INTERVAL", time.Minute),
		HistoryLimit:   getEnvInt("HISTORY_LIMIT", 200),
		CandleInterval: getEnv("CANDLE_INTERVAL", "1m"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		SQLitePath:    getEnv("SQLITE_PATH", "data/signals.db"),
		MetricsAddr:   getEnv("METRICS_ADDR", ":9090"),
		GatewayAddr:   getEnv("GATEWAY_ADDR", ":8080"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
		AlertCooldown:    getEnvDuration("ALERT_COOLDOWN", 15*time.Minute),

		AdvisorURL:      getEnv("ADVISOR_URL", ""),
		AdvisorCooldown: getEnvDuration("ADVISOR_COOLDOWN", 5*time.Minute),
	}
}

// Instrument returns the configured instrument descriptor.
func (c *Config) Instrument() model.Instrument {
	return model.Instrument{
		Symbol:        c.Symbol,
		Type:          c.InstrumentType,
		PriceDecimals: c.PriceDecimals,
	}
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("[config] required env var %s not set", key)
	}
	return v
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[config] invalid int for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[config] invalid duration for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return d
}
