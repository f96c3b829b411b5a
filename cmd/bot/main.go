package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockAdvisor/internal/cache"
	"StockAdvisor/internal/collector"
	"StockAdvisor/internal/config"
	"StockAdvisor/internal/metrics"
	"StockAdvisor/internal/notifier"
	"StockAdvisor/internal/recorder"
	"StockAdvisor/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockAdvisor starting...")

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("[WARN] %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}
	if len(cfg.Watchlist) == 0 {
		log.Println("[WARN] watchlist is empty, only /score commands will produce results")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics()

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "yahoo":
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 10}
	default:
		fetcher = collector.NewEastmoneyFetcher(cfg.DataSource.QuoteURL, cfg.DataSource.KlineURL, cfg.Proxy)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	// Init cache
	var backend cache.Backend = cache.NewMemoryBackend()
	if cfg.Cache.Backend == "redis" {
		rb := cache.NewRedisBackend(cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB, cfg.Cache.Retention)
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		err := rb.Ping(pingCtx)
		pingCancel()
		if err != nil {
			log.Printf("[WARN] redis unavailable at %s, using memory cache: %v", cfg.Cache.Redis.Addr, err)
			rb.Close()
		} else {
			backend = rb
			defer rb.Close()
		}
	}
	cached := collector.NewCachedFetcher(fetcher, cache.New(backend, cfg.Cache.TTL, nil), m)

	// Init collector
	col := collector.NewCollector(cached, m)
	col.HistoryDays = cfg.DataSource.HistoryDays
	col.Attempts = cfg.DataSource.Attempts
	col.RetryDelay = cfg.DataSource.RetryDelay

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Metrics endpoint
	ms := metrics.NewServer(cfg.Metrics.ListenAddr, m)
	ms.Start()
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		ms.Stop(stopCtx)
	}()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, tn, rec, cfg.Watchlist)
	if err := sched.RegisterAll(cfg.Schedule.ScoreCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, scoring watchlist now")
		go sched.RunWatchlistNow()
	}

	log.Println("[INFO] StockAdvisor is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] StockAdvisor stopped")
}
