package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finsight/internal/core"
	"finsight/internal/storage"
)

// RecurringStore is the persistence surface the processor needs.
type RecurringStore interface {
	GetActiveRecurring(ctx context.Context, asOf time.Time) ([]storage.RecurringRecord, error)
	UpdateLastExecution(ctx context.Context, id int64, when time.Time) error
}

// TransactionCreator creates ledger entries from expanded templates.
type TransactionCreator interface {
	CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// RecurringProcessor expands due recurring templates into ledger entries.
type RecurringProcessor struct {
	storage      RecurringStore
	transactions TransactionCreator
}

// NewRecurringProcessor creates a new recurring transaction processor
func NewRecurringProcessor(storage RecurringStore, transactions TransactionCreator) *RecurringProcessor {
	return &RecurringProcessor{
		storage:      storage,
		transactions: transactions,
	}
}

// ProcessDue expands all recurring templates that are due at the given
// time. Failures on one template do not stop the others.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.transactions == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	records, err := p.storage.GetActiveRecurring(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("get active recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(records),
		"processing_date", now.Format("2006-01-02"))

	processedCount := 0

	for _, rec := range records {
		checker, err := GetDuenessChecker(rec.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping recurring template with unknown frequency",
				"id", rec.ID,
				"frequency", string(rec.Every))
			continue
		}

		if !checker.IsDue(rec.LastExecution, now, rec.StartDate) {
			continue
		}

		created, err := p.transactions.CreateTransaction(ctx, core.Transaction{
			Amount:    rec.Amount,
			Direction: rec.Direction,
			Category:  rec.Category,
			Date:      now,
			Note:      rec.Note,
		})
		if err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring template",
				"recurring_id", rec.ID,
				"error", err)
			continue
		}

		if err := p.storage.UpdateLastExecution(ctx, rec.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update last execution date",
				"recurring_id", rec.ID,
				"error", err)
			// Continue anyway - the transaction was created successfully
		}

		processedCount++
		slog.InfoContext(ctx, "Created transaction from recurring template",
			"recurring_id", rec.ID,
			"transaction_id", created.ID.String(),
			"amount_cents", rec.Amount.Cents,
			"frequency", string(rec.Every))
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"processed", processedCount,
		"total_checked", len(records))

	return processedCount, nil
}
