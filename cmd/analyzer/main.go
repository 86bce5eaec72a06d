package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"market-analyzer/config"
	"market-analyzer/internal/advisor"
	"market-analyzer/internal/analysis"
	"market-analyzer/internal/feed"
	"market-analyzer/internal/gateway"
	"market-analyzer/internal/logger"
	"market-analyzer/internal/metrics"
	"market-analyzer/internal/model"
	"market-analyzer/internal/notification"
	redisstore "market-analyzer/internal/store/redis"
	sqlitestore "market-analyzer/internal/store/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	log.Println("[analyzer] starting...")

	cfg := config.Load()
	logger.Init("analyzer", slog.LevelInfo)

	// ---- Metrics & health ----
	prom := metrics.NewMetrics()
	health := metrics.NewHealthStatus()
	metricsSrv := metrics.NewServer(cfg.MetricsAddr, health)
	metricsSrv.Start()

	// ---- Graceful shutdown ----
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	// ---- SQLite journal ----
	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	journal, err := sqlitestore.Open(cfg.SQLitePath)
	if err != nil {
		log.Fatalf("[analyzer] sqlite init failed: %v", err)
	}
	defer journal.Close()
	log.Println("[analyzer] signal journal ready")

	// ---- Redis store ----
	var store *redisstore.Store
	store, err = redisstore.New(redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		OnBreakerStateChange: func(from, to redisstore.State) {
			prom.RedisBreakerState.Set(float64(to))
			if to == redisstore.StateOpen {
				prom.RedisBreakerTrips.Inc()
			}
		},
	})
	if err != nil {
		log.Printf("[analyzer] WARNING: redis init failed: %v (continuing without redis)", err)
		store = nil
	} else {
		defer store.Close()
	}

	if store != nil {
		health.StartLivenessChecker(ctx, store.Client(), journal.DB(), 15*time.Second)
	} else {
		health.StartLivenessChecker(ctx, nil, journal.DB(), 15*time.Second)
	}

	// ---- Analyzer core ----
	anaCfg := analysis.ConfigFor(cfg.InstrumentType)
	anaCfg.PriceDecimals = cfg.PriceDecimals

	var core *analysis.Analyzer
	if cfg.AdvisorURL != "" {
		measured := &measuredAdvisor{inner: advisor.NewHTTPAdvisor(cfg.AdvisorURL), prom: prom}
		core = analysis.NewWithAdvisor(anaCfg, advisor.NewThrottled(measured, cfg.AdvisorCooldown))
		log.Printf("[analyzer] advisory review enabled via %s", cfg.AdvisorURL)
	} else {
		core = analysis.New(anaCfg)
	}

	// ---- Notifications ----
	var notifiers []notification.Notifier
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		notifiers = append(notifiers, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notification.NewWebhookNotifier(cfg.WebhookURL))
	}
	if len(notifiers) == 0 {
		notifiers = append(notifiers, notification.NewLogNotifier())
	}
	var cooldown notification.Cooldown
	if store != nil {
		cooldown = store
	}
	dispatcher := notification.NewDispatcher(cooldown, cfg.AlertCooldown, notifiers...)

	// ---- Gateway ----
	hub := gateway.NewHub()
	gwSrv := gateway.NewServer(cfg.GatewayAddr, hub, analysisStore(store), journal)
	go func() {
		if err := gwSrv.Run(ctx); err != nil {
			log.Printf("[analyzer] gateway error: %v", err)
		}
	}()

	// ---- Feed ----
	client := feed.NewClient(feed.ClientConfig{
		BaseURL:    cfg.FeedBaseURL,
		APIKey:     cfg.FeedAPIKey,
		ClientCode: cfg.FeedClientCode,
		Password:   cfg.FeedPassword,
		TOTPSecret: cfg.FeedTOTPSecret,
		Interval:   cfg.CandleInterval,
	})
	poller := feed.NewPoller(client, cfg.Symbol, cfg.PollInterval, cfg.HistoryLimit)
	poller.OnPollError = func(error) {
		prom.PollErrors.Inc()
		health.SetFeedOK(false)
	}

	snapshots := make(chan []model.Candle, 4)
	go poller.Run(ctx, snapshots)

	log.Printf("[analyzer] analyzing %s (%s) every %v", cfg.Symbol, cfg.InstrumentType, cfg.PollInterval)

	// ---- Pipeline ----
	done := make(chan struct{})
	go func() {
		defer close(done)
		for candles := range snapshots {
			prom.PollsTotal.Inc()
			prom.CandlesIngested.Add(float64(len(candles)))
			health.SetFeedOK(true)
			if len(candles) > 0 {
				health.SetLastCandleTime(candles[len(candles)-1].Time())
			}

			evalCtx := logger.WithTraceID(ctx, logger.GenerateTraceID(cfg.Symbol, time.Now()))

			start := time.Now()
			result := core.Analyze(candles)
			result = core.Enhance(evalCtx, result, candles)
			prom.AnalyzeDur.Observe(time.Since(start).Seconds())
			prom.AnalysesTotal.Inc()

			sig := result.Signal()
			if sig == nil {
				continue
			}
			prom.SignalsTotal.WithLabelValues(string(sig.Action), string(sig.Strength)).Inc()
			slog.Info("analysis complete",
				slog.String("symbol", result.Symbol),
				slog.String("trend", string(result.Trend)),
				slog.String("action", string(sig.Action)),
				slog.Int("confidence", sig.Confidence),
				slog.Int("probability", sig.Probability))

			if err := journal.RecordSignal(*sig); err != nil {
				log.Printf("[analyzer] journal signal: %v", err)
			}
			commitStart := time.Now()
			if err := journal.SaveCandles(candles); err != nil {
				log.Printf("[analyzer] journal candles: %v", err)
			}
			prom.SQLiteCommitDur.Observe(time.Since(commitStart).Seconds())

			if store != nil {
				writeStart := time.Now()
				if err := store.SaveAnalysis(ctx, result); err != nil {
					log.Printf("[analyzer] save analysis: %v", err)
				}
				prom.RedisWriteDur.Observe(time.Since(writeStart).Seconds())
			}

			hub.Publish(result)

			delivered, err := dispatcher.Dispatch(evalCtx, *sig)
			if err != nil {
				prom.AlertErrors.Inc()
			}
			if delivered {
				prom.AlertsSent.Inc()
			}
		}
	}()

	select {
	case sig := <-sigCh:
		log.Printf("[analyzer] received %v, shutting down...", sig)
	case <-done:
		log.Println("[analyzer] feed closed, shutting down...")
	}

	cancel()
	<-done

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	metricsSrv.Stop(shutdownCtx)
	log.Println("[analyzer] shutdown complete")
}

// analysisStore adapts the possibly-nil Redis store to the gateway's
// interface without handing it a typed nil.
func analysisStore(s *redisstore.Store) model.AnalysisStore {
	if s == nil {
		return nil
	}
	return s
}

// measuredAdvisor counts reviews, replacements and failures around the real
// advisor.
type measuredAdvisor struct {
	inner model.Advisor
	prom  *metrics.Metrics
}

func (m *measuredAdvisor) Review(ctx context.Context, analysis model.MarketAnalysis, candles []model.Candle) (*model.TradingSignal, error) {
	m.prom.AdvisorReviews.Inc()
	sig, err := m.inner.Review(ctx, analysis, candles)
	if err != nil {
		m.prom.AdvisorErrors.Inc()
		return nil, err
	}
	if sig != nil {
		m.prom.AdvisorReplacements.Inc()
	}
	return sig, nil
}
