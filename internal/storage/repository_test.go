package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"finsight/internal/core"

	"github.com/google/uuid"
)

func newTestRepository(t *testing.T) *SQLiteRepository {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewSQLiteRepository(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testTransaction(category core.Category, direction core.Direction, cents int64, date time.Time) core.Transaction {
	return core.Transaction{
		ID:        uuid.New(),
		Amount:    core.Money{Cents: cents},
		Direction: direction,
		Category:  category,
		Date:      date,
		Note:      "test entry",
	}
}

func TestSQLiteRepository_TransactionLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	tx := testTransaction(core.Food, core.DirectionExpense, 2500, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	got, err := repo.GetTransaction(ctx, tx.ID)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.ID != tx.ID {
		t.Errorf("GetTransaction() ID = %v, want %v", got.ID, tx.ID)
	}
	if got.Amount.Cents != 2500 {
		t.Errorf("GetTransaction() Amount.Cents = %d, want 2500", got.Amount.Cents)
	}
	if got.Category != core.Food {
		t.Errorf("GetTransaction() Category = %v, want %v", got.Category, core.Food)
	}
	if got.Direction != core.DirectionExpense {
		t.Errorf("GetTransaction() Direction = %v, want %v", got.Direction, core.DirectionExpense)
	}
	if !got.Date.Equal(tx.Date) {
		t.Errorf("GetTransaction() Date = %v, want %v", got.Date, tx.Date)
	}
	if got.Note != "test entry" {
		t.Errorf("GetTransaction() Note = %q, want %q", got.Note, "test entry")
	}

	if err := repo.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	if _, err := repo.GetTransaction(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("GetTransaction() after delete error = %v, want core.ErrNotFound", err)
	}
	if err := repo.DeleteTransaction(ctx, tx.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("DeleteTransaction() on missing entry error = %v, want core.ErrNotFound", err)
	}
}

func TestSQLiteRepository_ListTransactions(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		if err := repo.CreateTransaction(ctx, testTransaction(core.Food, core.DirectionExpense, 1000, d)); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	t.Run("filter by year and month", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, 2026, 3)
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("ListTransactions(2026, 3) returned %d entries, want 2", len(got))
		}
		if got[0].Date.Before(got[1].Date) {
			t.Error("ListTransactions() should order by date descending")
		}
	})

	t.Run("filter by year", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, 2026, 0)
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if len(got) != 3 {
			t.Errorf("ListTransactions(2026, 0) returned %d entries, want 3", len(got))
		}
	})

	t.Run("no filter returns everything", func(t *testing.T) {
		got, err := repo.ListTransactions(ctx, 0, 0)
		if err != nil {
			t.Fatalf("ListTransactions() error = %v", err)
		}
		if len(got) != 4 {
			t.Errorf("ListTransactions(0, 0) returned %d entries, want 4", len(got))
		}
	})
}

func TestSQLiteRepository_SyncStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	first := testTransaction(core.Bills, core.DirectionExpense, 4000, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	second := testTransaction(core.Salary, core.DirectionIncome, 300000, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC))
	for _, tx := range []core.Transaction{first, second} {
		if err := repo.CreateTransaction(ctx, tx); err != nil {
			t.Fatalf("CreateTransaction() error = %v", err)
		}
	}

	pending, err := repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync() error = %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("GetPendingSync() returned %d entries, want 2", len(pending))
	}

	if err := repo.MarkSynced(ctx, first.ID); err != nil {
		t.Fatalf("MarkSynced() error = %v", err)
	}
	if err := repo.MarkSyncError(ctx, second.ID); err != nil {
		t.Fatalf("MarkSyncError() error = %v", err)
	}

	pending, err = repo.GetPendingSync(ctx, 10)
	if err != nil {
		t.Fatalf("GetPendingSync() error = %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("GetPendingSync() after marking returned %d entries, want 0", len(pending))
	}
}

func TestSQLiteRepository_Profile(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	// The migration seeds a default profile row
	p, err := repo.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if p.CurrencySymbol != "$" {
		t.Errorf("GetProfile() default CurrencySymbol = %q, want $", p.CurrencySymbol)
	}

	p.CurrencySymbol = "€"
	p.MonthlyIncome = core.Money{Cents: 450000}
	p.GoalLabel = "Pay off debt"
	p.PrimaryCategory = core.Housing
	if err := repo.SaveProfile(ctx, p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	got, err := repo.GetProfile(ctx)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	if got.CurrencySymbol != "€" {
		t.Errorf("GetProfile() CurrencySymbol = %q, want €", got.CurrencySymbol)
	}
	if got.MonthlyIncome.Cents != 450000 {
		t.Errorf("GetProfile() MonthlyIncome.Cents = %d, want 450000", got.MonthlyIncome.Cents)
	}
	if got.Goal() != core.GoalDebtPayoff {
		t.Errorf("GetProfile() Goal() = %v, want %v", got.Goal(), core.GoalDebtPayoff)
	}
	if got.PrimaryCategory != core.Housing {
		t.Errorf("GetProfile() PrimaryCategory = %v, want %v", got.PrimaryCategory, core.Housing)
	}
}

func TestSQLiteRepository_Recurring(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	rt := core.RecurringTransaction{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Every:     core.Monthly,
		Amount:    core.Money{Cents: 120000},
		Direction: core.DirectionExpense,
		Category:  core.Housing,
		Note:      "rent",
	}
	id, err := repo.CreateRecurring(ctx, rt)
	if err != nil {
		t.Fatalf("CreateRecurring() error = %v", err)
	}
	if id == 0 {
		t.Fatal("CreateRecurring() returned id 0")
	}

	ended := rt
	ended.EndDate = time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	if _, err := repo.CreateRecurring(ctx, ended); err != nil {
		t.Fatalf("CreateRecurring() error = %v", err)
	}

	t.Run("active filter respects end date", func(t *testing.T) {
		active, err := repo.GetActiveRecurring(ctx, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC))
		if err != nil {
			t.Fatalf("GetActiveRecurring() error = %v", err)
		}
		if len(active) != 1 {
			t.Fatalf("GetActiveRecurring() returned %d entries, want 1", len(active))
		}
		if active[0].ID != id {
			t.Errorf("GetActiveRecurring() ID = %d, want %d", active[0].ID, id)
		}
		if !active[0].LastExecution.IsZero() {
			t.Error("GetActiveRecurring() LastExecution should be zero before first run")
		}
	})

	t.Run("last execution round trip", func(t *testing.T) {
		when := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
		if err := repo.UpdateLastExecution(ctx, id, when); err != nil {
			t.Fatalf("UpdateLastExecution() error = %v", err)
		}

		all, err := repo.ListRecurring(ctx)
		if err != nil {
			t.Fatalf("ListRecurring() error = %v", err)
		}
		var found bool
		for _, rec := range all {
			if rec.ID == id {
				found = true
				if !rec.LastExecution.Equal(when) {
					t.Errorf("LastExecution = %v, want %v", rec.LastExecution, when)
				}
			}
		}
		if !found {
			t.Fatal("ListRecurring() did not return the created template")
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := repo.DeleteRecurring(ctx, id); err != nil {
			t.Fatalf("DeleteRecurring() error = %v", err)
		}
		if err := repo.DeleteRecurring(ctx, id); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("DeleteRecurring() on missing template error = %v, want core.ErrNotFound", err)
		}
	})
}
