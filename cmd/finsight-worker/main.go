package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finsight/internal/amqp"
	"finsight/internal/config"
	applog "finsight/internal/log"
	"finsight/internal/sheets"
	gsheet "finsight/internal/sheets/google"
	"finsight/internal/sheets/memory"
	"finsight/internal/storage"
	"finsight/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting finsight-worker")

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
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Export target: the Google Sheet when configured, otherwise an
	// in-memory store so the sync pipeline stays observable locally.
	var (
		writer  sheets.TransactionWriter
		deleter sheets.TransactionDeleter
	)
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		writer, deleter = client, client
		logger.Info("Google Sheets client initialized",
			"spreadsheet_id", cfg.GoogleSpreadsheetID, "sheet", cfg.GoogleSheetName)
	} else {
		store := memory.New()
		writer, deleter = store, store
		logger.Info("Google Sheets disabled - exporting to in-memory store")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(repo, writer, deleter, cfg.SyncBatchSize)

	// Recover entries whose messages were lost while the worker was down.
	logger.Info("Performing startup sync check...")
	if err := syncWorker.StartupSyncCheck(ctx); err != nil {
		logger.Error("Startup sync check failed", "error", err)
		// Don't exit - continue with normal operation
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		err := amqpClient.ConsumeTransactionEvents(ctx, syncWorker.HandleSyncMessage, syncWorker.HandleDeleteMessage)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		ticker := time.NewTicker(cfg.SyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := syncWorker.ProcessPendingTransactions(ctx); err != nil {
					logger.Error("Periodic sync failed", "error", err)
				}
			}
		}
	})

	if err := group.Wait(); err != nil {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	logger.Info("finsight-worker shutdown complete")
}
