package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/amqp"
	"finsight/internal/assistant"
	"finsight/internal/config"
	apphttp "finsight/internal/http"
	applog "finsight/internal/log"
	"finsight/internal/services"
	"finsight/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentApp})
	applog.SetDefault(logger)

	logger.Info("Starting finsight API")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}

	// AMQP is optional: without a broker the ledger still works and the
	// periodic sweep in finsight-worker picks up unsynced entries.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP client initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	} else {
		logger.Info("AMQP disabled - transactions will sync via the periodic sweep only")
	}

	transactionService := services.NewTransactionService(repo, publisher)
	defer transactionService.Close()

	chat, err := assistant.New(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ChatTimeout)
	if err != nil {
		logger.Warn("Failed to initialize chat assistant, chat will answer with the fallback message", "error", err)
	}
	if chat == nil {
		logger.Info("Chat assistant disabled - no GEMINI_API_KEY provided")
	}

	insightService := services.NewInsightService(repo, nil, chat)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CacheTTL:           cfg.CacheTTL,
		CacheSize:          cfg.CacheSize,
	}, transactionService, insightService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting finsight server", "port", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
