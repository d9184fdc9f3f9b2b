package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finsight/internal/core"

	"github.com/google/uuid"
)

type fakeStore struct {
	transactions map[uuid.UUID]core.Transaction
	createErr    error
	closed       bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{transactions: make(map[uuid.UUID]core.Transaction)}
}

func (f *fakeStore) CreateTransaction(_ context.Context, t core.Transaction) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.transactions[t.ID] = t
	return nil
}

func (f *fakeStore) GetTransaction(_ context.Context, id uuid.UUID) (core.Transaction, error) {
	t, ok := f.transactions[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) DeleteTransaction(_ context.Context, id uuid.UUID) error {
	if _, ok := f.transactions[id]; !ok {
		return core.ErrNotFound
	}
	delete(f.transactions, id)
	return nil
}

func (f *fakeStore) ListTransactions(_ context.Context, year, month int) ([]core.Transaction, error) {
	var out []core.Transaction
	for _, t := range f.transactions {
		if year != 0 && t.Date.Year() != year {
			continue
		}
		if month != 0 && int(t.Date.Month()) != month {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

type fakePublisher struct {
	synced  []string
	deleted []string
	err     error
	closed  bool
}

func (f *fakePublisher) PublishTransactionSync(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakePublisher) PublishTransactionDelete(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func validTransaction() core.Transaction {
	return core.Transaction{
		Amount:    core.Money{Cents: 2500},
		Direction: core.DirectionExpense,
		Category:  core.Food,
		Date:      time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		Note:      "groceries",
	}
}

func TestTransactionService_CreateTransaction(t *testing.T) {
	t.Run("assigns ID and publishes sync message", func(t *testing.T) {
		store := newFakeStore()
		pub := &fakePublisher{}
		svc := NewTransactionService(store, pub)

		created, err := svc.CreateTransaction(context.Background(), validTransaction())
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
		if created.ID == uuid.Nil {
			t.Error("CreateTransaction() should assign an ID")
		}
		if len(store.transactions) != 1 {
			t.Errorf("stored %d transactions, want 1", len(store.transactions))
		}
		if len(pub.synced) != 1 || pub.synced[0] != created.ID.String() {
			t.Errorf("published sync IDs = %v, want [%s]", pub.synced, created.ID.String())
		}
	})

	t.Run("rejects invalid transaction before storing", func(t *testing.T) {
		store := newFakeStore()
		svc := NewTransactionService(store, &fakePublisher{})

		bad := validTransaction()
		bad.Amount = core.Money{Cents: 0}

		if _, err := svc.CreateTransaction(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
			t.Errorf("CreateTransaction() error = %v, want core.ErrInvalidAmount", err)
		}
		if len(store.transactions) != 0 {
			t.Error("invalid transaction must not be stored")
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		store := newFakeStore()
		pub := &fakePublisher{err: errors.New("broker down")}
		svc := NewTransactionService(store, pub)

		if _, err := svc.CreateTransaction(context.Background(), validTransaction()); err != nil {
			t.Fatalf("CreateTransaction() error = %v, want nil despite publish failure", err)
		}
		if len(store.transactions) != 1 {
			t.Error("transaction should be stored even when publish fails")
		}
	})

	t.Run("works without a publisher", func(t *testing.T) {
		svc := NewTransactionService(newFakeStore(), nil)
		if _, err := svc.CreateTransaction(context.Background(), validTransaction()); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	})
}

func TestTransactionService_DeleteTransaction(t *testing.T) {
	t.Run("deletes and publishes delete message", func(t *testing.T) {
		store := newFakeStore()
		pub := &fakePublisher{}
		svc := NewTransactionService(store, pub)

		created, err := svc.CreateTransaction(context.Background(), validTransaction())
		if err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}

		if err := svc.DeleteTransaction(context.Background(), created.ID); err != nil {
			t.Fatalf("DeleteTransaction() error = %v", err)
		}
		if len(store.transactions) != 0 {
			t.Error("transaction should be removed from storage")
		}
		if len(pub.deleted) != 1 || pub.deleted[0] != created.ID.String() {
			t.Errorf("published delete IDs = %v, want [%s]", pub.deleted, created.ID.String())
		}
	})

	t.Run("missing ID returns not found and publishes nothing", func(t *testing.T) {
		pub := &fakePublisher{}
		svc := NewTransactionService(newFakeStore(), pub)

		if err := svc.DeleteTransaction(context.Background(), uuid.New()); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteTransaction() error = %v, want core.ErrNotFound", err)
		}
		if len(pub.deleted) != 0 {
			t.Error("no delete message should be published for a missing entry")
		}
	})
}

func TestTransactionService_Close(t *testing.T) {
	t.Run("closes both dependencies", func(t *testing.T) {
		store := newFakeStore()
		pub := &fakePublisher{}
		svc := NewTransactionService(store, pub)

		if err := svc.Close(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if !store.closed || !pub.closed {
			t.Error("Close() should close storage and publisher")
		}
	})

	t.Run("nil components", func(t *testing.T) {
		svc := &TransactionService{}
		if err := svc.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})
}
