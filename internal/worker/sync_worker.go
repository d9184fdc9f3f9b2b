package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"finsight/internal/amqp"
	"finsight/internal/core"
	"finsight/internal/sheets"
	"finsight/internal/storage"

	"github.com/google/uuid"
)

// SyncStore is the persistence surface the worker needs.
type SyncStore interface {
	GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error)
	GetPendingSync(ctx context.Context, limit int) ([]storage.PendingSyncTransaction, error)
	MarkSynced(ctx context.Context, id uuid.UUID) error
	MarkSyncError(ctx context.Context, id uuid.UUID) error
}

// SyncWorker exports ledger entries from SQLite to the spreadsheet.
// AMQP messages drive the normal path; the periodic pending sweep is the
// backup for lost messages.
type SyncWorker struct {
	storage   SyncStore
	writer    sheets.TransactionWriter
	deleter   sheets.TransactionDeleter
	batchSize int
}

func NewSyncWorker(storage SyncStore, writer sheets.TransactionWriter, deleter sheets.TransactionDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single transaction sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.TransactionSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message", "id", msg.ID)

	id, err := uuid.Parse(msg.ID)
	if err != nil {
		// Malformed IDs can never succeed, drop instead of requeueing
		slog.ErrorContext(ctx, "Sync message carries an invalid ID, dropping", "id", msg.ID, "error", err)
		return nil
	}

	t, err := w.storage.GetTransaction(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		// Deleted before the sync ran, nothing to export
		slog.WarnContext(ctx, "Transaction no longer exists, skipping sync", "id", msg.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get transaction from storage: %w", err)
	}

	if err := w.syncToSheets(ctx, t); err != nil {
		return fmt.Errorf("sync transaction to sheets: %w", err)
	}

	return nil
}

// HandleDeleteMessage processes a single transaction delete message from AMQP
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.TransactionDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "id", msg.ID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No transaction deleter configured, skipping spreadsheet deletion",
			"id", msg.ID)
		return nil
	}

	if err := w.deleter.Delete(ctx, msg.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete transaction from spreadsheet",
			"id", msg.ID,
			"error", err)
		return fmt.Errorf("delete transaction from spreadsheet: %w", err)
	}

	slog.InfoContext(ctx, "Successfully deleted transaction from spreadsheet", "id", msg.ID)
	return nil
}

// ProcessPendingTransactions exports any entries that haven't been synced
// yet. This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingTransactions(ctx context.Context) error {
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending transactions: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending transactions", "count", len(pending))

	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction", "id", p.ID.String(), "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID.String(), "error", err)
			}
			continue
		}

		if err := w.syncToSheets(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction", "id", p.ID.String(), "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck verifies and syncs any pending entries at worker
// startup, recovering from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.GetPendingSync(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending transactions for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending transactions found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending transactions on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		t, err := w.storage.GetTransaction(ctx, p.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get transaction for startup sync",
				"id", p.ID.String(), "error", err)
			if err := w.storage.MarkSyncError(ctx, p.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID.String(), "error", err)
			}
			errorCount++
			continue
		}

		if err := w.syncToSheets(ctx, t); err != nil {
			slog.ErrorContext(ctx, "Failed to sync transaction during startup",
				"id", p.ID.String(), "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) syncToSheets(ctx context.Context, t core.Transaction) error {
	ref, err := w.writer.Append(ctx, t)
	if err != nil {
		if markErr := w.storage.MarkSyncError(ctx, t.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", t.ID.String(), "error", markErr)
		}
		return fmt.Errorf("append to sheets: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, t.ID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced", "id", t.ID.String(), "error", err)
		// Don't return error here - the sync actually worked
	}

	slog.InfoContext(ctx, "Successfully synced transaction",
		"id", t.ID.String(),
		"sheets_ref", ref,
		"amount_cents", t.Amount.Cents)

	return nil
}
