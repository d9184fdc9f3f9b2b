package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finsight/internal/amqp"
	"finsight/internal/config"
	applog "finsight/internal/log"
	"finsight/internal/services"
	"finsight/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

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

	// Expanded entries go through the transaction service so they enter
	// the same AMQP sync path as entries created over the API.
	var publisher services.SyncPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		} else {
			publisher = amqpClient
			logger.Info("AMQP client initialized - expanded entries will sync via finsight-worker")
		}
	} else {
		logger.Info("AMQP disabled - expanded entries will not sync to Google Sheets")
	}

	transactionService := services.NewTransactionService(repo, publisher)
	defer transactionService.Close()

	processor := services.NewRecurringProcessor(repo, transactionService)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Recurring transaction processor configured",
		"interval", cfg.RecurringInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.RecurringInterval)
	defer ticker.Stop()

	// Run initial processing on startup
	logger.Info("Running initial recurring transaction processing...")
	if count, err := processor.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Initial processing failed", "error", err)
	} else {
		logger.Info("Initial processing complete", "transactions_created", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Processing due recurring transactions...")
				count, err := processor.ProcessDue(ctx, now)
				if err != nil {
					logger.Error("Periodic processing failed", "error", err)
				} else {
					logger.Info("Periodic processing complete",
						"transactions_created", count,
						"next_check", now.Add(cfg.RecurringInterval).Format("15:04:05"))
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	logger.Info("Shutting down recurring-worker...")
	cancel()
	logger.Info("Recurring-worker shutdown complete")
}
