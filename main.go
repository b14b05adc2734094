package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/iabalyuk/geoguide/bot"
	"github.com/iabalyuk/geoguide/config"
	"github.com/iabalyuk/geoguide/dialogue"
	"github.com/iabalyuk/geoguide/logging"
	"github.com/iabalyuk/geoguide/narration"
	"github.com/iabalyuk/geoguide/places"
	"github.com/iabalyuk/geoguide/session"
	"github.com/iabalyuk/geoguide/storage"
	"github.com/iabalyuk/geoguide/worker"
	"go.uber.org/zap"
)

func main() {
	// Parse command-line flags
	debug := flag.Bool("debug", false, "Enable debug mode")
	token := flag.String("token", "", "Telegram bot token (or use TELEGRAM_TOKEN env var)")
	resetCache := flag.Bool("reset-cache", false, "Clear the place detail cache on startup")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg.ApplyFlags(*token, *debug)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := logging.New(cfg.IsProduction(), cfg.LogLevel, cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Place detail cache
	store, err := storage.NewSQLiteStorage(cfg.DBPath, logger)
	if err != nil {
		logger.Fatal("Failed to initialize SQLite storage", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer store.Close()
	if *resetCache {
		store.ResetStorage()
		logger.Info("Place detail cache cleared")
	}

	client := places.NewClient(places.ClientConfig{
		RatePerSecond: cfg.PlacesRateLimit,
		Burst:         cfg.PlacesRateBurst,
		Timeout:       cfg.CallTimeout,
		Debug:         cfg.Debug,
		Logger:        logger,
	})

	var upstream places.Directory
	switch cfg.PlacesProvider {
	case "yandex":
		upstream = places.NewYandexDirectory(client, cfg.YandexAPIKey)
	default:
		upstream = places.NewGoogleDirectory(client, cfg.GooglePlacesAPIKey)
	}
	directory := places.NewCachedDirectory(upstream, store, logger)

	narrator, err := narration.New(ctx, narration.Config{
		Provider:        cfg.NarrationProvider,
		PerplexityKey:   cfg.PerplexityAPIKey,
		PerplexityModel: cfg.PerplexityModel,
		GeminiKey:       cfg.GeminiAPIKey,
		GeminiModel:     cfg.GeminiModel,
		AnthropicKey:    cfg.AnthropicAPIKey,
		ClaudeModel:     cfg.ClaudeModel,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize narration", zap.Error(err))
	}

	sessions := session.NewMemoryStore(cfg.SessionTTL, logger)

	engine, err := dialogue.New(dialogue.Config{
		Directory:   directory,
		Routes:      directory,
		Photos:      directory,
		Narrator:    narrator,
		Store:       sessions,
		Logger:      logger,
		DisplayCap:  cfg.DisplayCap,
		CallTimeout: cfg.CallTimeout,
	})
	if err != nil {
		logger.Fatal("Failed to create dialogue engine", zap.Error(err))
	}

	telegramBot, err := bot.New(cfg.TelegramToken, engine, cfg.Debug, logger)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	bgWorker := worker.NewBackgroundWorker(worker.NewBackgroundWorkerConfig{
		Storage:        store,
		Sessions:       sessions,
		Logger:         logger,
		Interval:       cfg.MaintenanceInterval,
		DetailCacheTTL: cfg.DetailCacheTTL,
	})
	bgWorker.Start()

	logger.Info("Starting geoguide",
		zap.String("env", cfg.Env),
		zap.String("places_provider", cfg.PlacesProvider),
		zap.String("narration_provider", cfg.NarrationProvider),
		zap.String("db_path", cfg.DBPath),
	)

	botDone := make(chan error, 1)
	go func() {
		botDone <- telegramBot.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal, initiating graceful shutdown...")
		<-botDone
	case err := <-botDone:
		if err != nil {
			logger.Error("Bot stopped with error", zap.Error(err))
		}
		stop()
	}

	bgWorker.Stop()
	stats := bgWorker.LastStats()
	logger.Info("Bot stopped",
		zap.Int("cached_details", stats.CachedDetails),
		zap.Int("sessions", stats.Sessions),
	)
}
