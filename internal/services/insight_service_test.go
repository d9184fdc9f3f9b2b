package services

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"finsight/internal/core"

	"github.com/google/uuid"
)

type fakeLedger struct {
	profile    core.Profile
	ledger     []core.Transaction
	profileErr error
	saved      *core.Profile
}

func (f *fakeLedger) ListTransactions(_ context.Context, year, month int) ([]core.Transaction, error) {
	return f.ledger, nil
}

func (f *fakeLedger) GetProfile(_ context.Context) (core.Profile, error) {
	if f.profileErr != nil {
		return core.Profile{}, f.profileErr
	}
	return f.profile, nil
}

func (f *fakeLedger) SaveProfile(_ context.Context, p core.Profile) error {
	f.saved = &p
	return nil
}

func ledgerEntry(direction core.Direction, category core.Category, cents int64, date time.Time, note string) core.Transaction {
	return core.Transaction{
		ID:        uuid.New(),
		Amount:    core.Money{Cents: cents},
		Direction: direction,
		Category:  category,
		Date:      date,
		Note:      note,
	}
}

var insightNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func TestInsightService_Allocations(t *testing.T) {
	store := &fakeLedger{
		profile: core.Profile{
			CurrencySymbol: "$",
			MonthlyIncome:  core.Money{Cents: 500000},
			GoalLabel:      "Pay off debt",
		},
		ledger: []core.Transaction{
			ledgerEntry(core.DirectionExpense, core.Food, 40000, insightNow.AddDate(0, -1, 0), ""),
		},
	}
	svc := NewInsightService(store, nil, nil)

	got, err := svc.Allocations(context.Background(), insightNow)
	if err != nil {
		t.Fatalf("Allocations() error = %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("Allocations() returned %d rows, want 10", len(got))
	}

	var totalPercent float64
	for _, a := range got {
		totalPercent += a.Percentage
	}
	if math.Abs(totalPercent-100) > 0.1 {
		t.Errorf("Allocations() percentages sum to %v, want 100", totalPercent)
	}
}

func TestInsightService_SavingsPlan(t *testing.T) {
	store := &fakeLedger{
		profile: core.Profile{CurrencySymbol: "$", MonthlyIncome: core.Money{Cents: 5000000}},
	}
	svc := NewInsightService(store, nil, nil)

	plan, err := svc.SavingsPlan(context.Background(), 120000, 12)
	if err != nil {
		t.Fatalf("SavingsPlan() error = %v", err)
	}
	if plan.MonthlyContribution != 10000 {
		t.Errorf("MonthlyContribution = %v, want 10000", plan.MonthlyContribution)
	}
	if !plan.Realistic {
		t.Error("plan should be realistic for this income")
	}

	if _, err := svc.SavingsPlan(context.Background(), 120000, 0); err == nil {
		t.Error("SavingsPlan() should fail for non-positive months")
	}
}

func TestInsightService_GoalProgress(t *testing.T) {
	store := &fakeLedger{
		profile: core.Profile{
			CurrencySymbol: "$",
			MonthlyIncome:  core.Money{Cents: 300000},
			GoalLabel:      "Save for an emergency fund",
		},
		ledger: []core.Transaction{
			ledgerEntry(core.DirectionIncome, core.Miscellaneous, 450000, insightNow.AddDate(0, -1, 0), "monthly savings"),
		},
	}
	svc := NewInsightService(store, nil, nil)

	status, err := svc.GoalProgress(context.Background(), insightNow)
	if err != nil {
		t.Fatalf("GoalProgress() error = %v", err)
	}
	if status.Goal != core.GoalEmergencyFund {
		t.Errorf("Goal = %v, want %v", status.Goal, core.GoalEmergencyFund)
	}
	// 4500 saved against a 3 * 3000 target
	if math.Abs(status.Progress-0.5) > 1e-9 {
		t.Errorf("Progress = %v, want 0.5", status.Progress)
	}
	if status.MonthsRemaining > 0 && status.TargetMonth == "" {
		t.Error("TargetMonth should be set when months remain")
	}
	if status.MonthsRemaining > 0 {
		want := insightNow.AddDate(0, status.MonthsRemaining, 0).Format("2006-01")
		if status.TargetMonth != want {
			t.Errorf("TargetMonth = %q, want %q", status.TargetMonth, want)
		}
	}
}

func TestInsightService_ProfileRoundTrip(t *testing.T) {
	store := &fakeLedger{profile: core.Profile{CurrencySymbol: "$"}}
	svc := NewInsightService(store, nil, nil)

	p := core.Profile{
		CurrencySymbol:  "€",
		MonthlyIncome:   core.Money{Cents: 400000},
		GoalLabel:       "Reduce unnecessary spending",
		PrimaryCategory: core.Food,
	}
	if err := svc.SaveProfile(context.Background(), p); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}
	if store.saved == nil || store.saved.GoalLabel != p.GoalLabel {
		t.Error("SaveProfile() should persist the profile")
	}

	bad := p
	bad.CurrencySymbol = "  "
	if err := svc.SaveProfile(context.Background(), bad); err == nil {
		t.Error("SaveProfile() should reject an empty currency symbol")
	}
}

func TestInsightService_ChatFallsBackWithoutAssistant(t *testing.T) {
	store := &fakeLedger{profile: core.Profile{CurrencySymbol: "$"}}
	svc := NewInsightService(store, nil, nil)

	reply := svc.Chat(context.Background(), "how am I doing?", insightNow)
	if reply == "" {
		t.Fatal("Chat() should return the fallback message, not an empty string")
	}
}

func TestInsightService_ProfileError(t *testing.T) {
	store := &fakeLedger{profileErr: errors.New("db closed")}
	svc := NewInsightService(store, nil, nil)

	if _, err := svc.Allocations(context.Background(), insightNow); err == nil {
		t.Error("Allocations() should propagate profile errors")
	}
	if _, err := svc.GoalProgress(context.Background(), insightNow); err == nil {
		t.Error("GoalProgress() should propagate profile errors")
	}
}
