package services

import (
	"context"
	"fmt"
	"time"

	"finsight/internal/assistant"
	"finsight/internal/budget"
	"finsight/internal/core"
	"finsight/internal/insight"
)

// LedgerReader is the read-only persistence surface the analytics need.
type LedgerReader interface {
	ListTransactions(ctx context.Context, year, month int) ([]core.Transaction, error)
	GetProfile(ctx context.Context) (core.Profile, error)
	SaveProfile(ctx context.Context, p core.Profile) error
}

// InsightService composes the ledger, the profile, and the analytical
// engines behind the read-side API endpoints.
type InsightService struct {
	storage   LedgerReader
	engine    *insight.Engine
	assistant *assistant.Assistant
}

func NewInsightService(storage LedgerReader, engine *insight.Engine, chat *assistant.Assistant) *InsightService {
	if engine == nil {
		engine = insight.NewEngine(insight.DefaultTargets())
	}
	return &InsightService{
		storage:   storage,
		engine:    engine,
		assistant: chat,
	}
}

// Profile returns the stored profile.
func (s *InsightService) Profile(ctx context.Context) (core.Profile, error) {
	return s.storage.GetProfile(ctx)
}

// SaveProfile validates and stores the profile. Last write wins.
func (s *InsightService) SaveProfile(ctx context.Context, p core.Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return s.storage.SaveProfile(ctx, p)
}

// Allocations computes the recommended budget split from the profile and
// the last three months of spending.
func (s *InsightService) Allocations(ctx context.Context, now time.Time) ([]core.CategoryAllocation, error) {
	profile, err := s.storage.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	recent, err := s.recentTransactions(ctx, now)
	if err != nil {
		return nil, err
	}

	return budget.ComputeAllocations(
		profile.MonthlyIncome.Amount(),
		profile.Goal(),
		profile.PrimaryCategory,
		recent,
	), nil
}

// SavingsPlan computes the monthly contribution toward a target amount.
func (s *InsightService) SavingsPlan(ctx context.Context, targetAmount float64, months int) (core.SavingsPlan, error) {
	profile, err := s.storage.GetProfile(ctx)
	if err != nil {
		return core.SavingsPlan{}, fmt.Errorf("load profile: %w", err)
	}
	return budget.ComputeSavingsPlan(targetAmount, months, profile.MonthlyIncome.Amount())
}

// Insights returns rule-based observations over the recent ledger.
func (s *InsightService) Insights(ctx context.Context, now time.Time) ([]string, error) {
	profile, err := s.storage.GetProfile(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	ledger, err := s.storage.ListTransactions(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return s.engine.SmartInsights(ledger, profile.MonthlyIncome.Amount(), now), nil
}

// Trends compares current spending per category against the previous
// period of the same length.
func (s *InsightService) Trends(ctx context.Context, timeframeMonths int, now time.Time) ([]core.CategoryAnalytics, error) {
	ledger, err := s.storage.ListTransactions(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	return s.engine.SpendingTrends(ledger, timeframeMonths, now), nil
}

// GoalProgress reports progress toward the profile goal along with a
// completion estimate.
func (s *InsightService) GoalProgress(ctx context.Context, now time.Time) (core.GoalStatus, error) {
	profile, err := s.storage.GetProfile(ctx)
	if err != nil {
		return core.GoalStatus{}, fmt.Errorf("load profile: %w", err)
	}
	ledger, err := s.storage.ListTransactions(ctx, 0, 0)
	if err != nil {
		return core.GoalStatus{}, fmt.Errorf("load ledger: %w", err)
	}

	goal := profile.Goal()
	income := profile.MonthlyIncome.Amount()

	status := core.GoalStatus{
		Goal:            goal,
		Progress:        s.engine.GoalProgress(ledger, goal, income, now),
		MonthsRemaining: s.engine.MonthsToGoal(ledger, goal, income, now),
	}
	if status.MonthsRemaining > 0 {
		status.TargetMonth = now.AddDate(0, status.MonthsRemaining, 0).Format("2006-01")
	}
	return status, nil
}

// Projection returns month-end balances for a savings forecast.
func (s *InsightService) Projection(currentSavings, monthlyContribution, annualGrowthRate float64, months int) []float64 {
	return s.engine.ProjectSavings(currentSavings, monthlyContribution, annualGrowthRate, months)
}

// Chat answers a free-form question with the user's financial snapshot
// as context. It degrades to a fixed message when the assistant is
// unavailable, never an error.
func (s *InsightService) Chat(ctx context.Context, message string, now time.Time) string {
	snap := s.buildSnapshot(ctx, now)
	return s.assistant.Ask(ctx, message, snap)
}

func (s *InsightService) buildSnapshot(ctx context.Context, now time.Time) assistant.Snapshot {
	var snap assistant.Snapshot

	profile, err := s.storage.GetProfile(ctx)
	if err == nil {
		snap.CurrencySymbol = profile.CurrencySymbol
		snap.MonthlyIncome = profile.MonthlyIncome.Amount()
		snap.GoalLabel = profile.GoalLabel
	}
	if snap.CurrencySymbol == "" {
		snap.CurrencySymbol = "$"
	}

	recent, err := s.recentTransactions(ctx, now)
	if err != nil {
		return snap
	}
	for _, t := range recent {
		switch t.Direction {
		case core.DirectionIncome:
			snap.TotalIncome += t.Amount.Amount()
		case core.DirectionExpense:
			snap.TotalExpenses += t.Amount.Amount()
		}
	}

	allocations := budget.ComputeAllocations(snap.MonthlyIncome, core.GoalFromLabel(snap.GoalLabel), profile.PrimaryCategory, recent)
	if len(allocations) > 3 {
		allocations = allocations[:3]
	}
	snap.TopCategories = allocations

	ledger, err := s.storage.ListTransactions(ctx, 0, 0)
	if err == nil {
		snap.Insights = s.engine.SmartInsights(ledger, snap.MonthlyIncome, now)
	}

	return snap
}

// recentTransactions returns the trailing three months of the ledger.
func (s *InsightService) recentTransactions(ctx context.Context, now time.Time) ([]core.Transaction, error) {
	ledger, err := s.storage.ListTransactions(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	cutoff := now.AddDate(0, -3, 0)
	recent := make([]core.Transaction, 0, len(ledger))
	for _, t := range ledger {
		if !t.Date.Before(cutoff) && !t.Date.After(now) {
			recent = append(recent, t)
		}
	}
	return recent, nil
}
