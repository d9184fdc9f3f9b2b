package services

import (
	"context"
	"fmt"
	"log/slog"

	"finsight/internal/core"

	"github.com/google/uuid"
)

// TransactionStore is the persistence surface the service needs.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, t core.Transaction) error
	GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error)
	DeleteTransaction(ctx context.Context, id uuid.UUID) error
	ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error)
	Close() error
}

// SyncPublisher queues export work for the sync worker.
type SyncPublisher interface {
	PublishTransactionSync(ctx context.Context, id string) error
	PublishTransactionDelete(ctx context.Context, id string) error
	Close() error
}

// TransactionService orchestrates ledger writes across SQLite and AMQP.
// The local write is authoritative; a failed publish is logged and the
// periodic sync sweep picks the entry up later.
type TransactionService struct {
	storage   TransactionStore
	publisher SyncPublisher
}

func NewTransactionService(storage TransactionStore, publisher SyncPublisher) *TransactionService {
	return &TransactionService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateTransaction validates and saves a ledger entry, then publishes a
// sync message. Entries without an ID get one assigned.
func (s *TransactionService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.storage.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	if err := s.publishSyncMessage(ctx, t.ID.String()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", t.ID.String(), "error", err)
		// Don't fail the request - transaction is saved locally
	}

	return t, nil
}

// DeleteTransaction removes a ledger entry and publishes a delete message.
func (s *TransactionService) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if err := s.publishDeleteMessage(ctx, id.String()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"id", id.String(), "error", err)
		// Don't fail the request - transaction is deleted locally
	}

	return nil
}

// GetTransaction returns a single ledger entry.
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (core.Transaction, error) {
	return s.storage.GetTransaction(ctx, id)
}

// ListTransactions returns ledger entries, optionally filtered by year and month.
func (s *TransactionService) ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	return s.storage.ListTransactions(ctx, year, month)
}

func (s *TransactionService) publishSyncMessage(ctx context.Context, id string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishTransactionSync(ctx, id)
}

func (s *TransactionService) publishDeleteMessage(ctx context.Context, id string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishTransactionDelete(ctx, id)
}

// Close closes both storage and AMQP connections
func (s *TransactionService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close transaction service: %v", errs)
	}

	return nil
}
