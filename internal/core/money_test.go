package core

import (
	"errors"
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12", 1200, false},
		{"0.01", 1, false},
		{"12.345", 1235, false},
		{"12.344", 1234, false},
		{".5", 50, false},
		{"", 0, true},
		{"0", 0, true},
		{"-3", 0, true},
		{"+3", 0, true},
		{"1.2.3", 0, true},
		{"abc", 0, true},
		{"12a", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimalToCents(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAmount) {
					t.Fatalf("ParseDecimalToCents(%q) err = %v, want ErrInvalidAmount", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDecimalToCents(%q) err = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseDecimalToCents(%q) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestMoneyAmountRoundTrip(t *testing.T) {
	m := Money{Cents: 1234}
	if m.Amount() != 12.34 {
		t.Errorf("Amount() = %v, want 12.34", m.Amount())
	}
	if got := MoneyFromAmount(12.34); got.Cents != 1234 {
		t.Errorf("MoneyFromAmount(12.34) = %d cents, want 1234", got.Cents)
	}
	if got := MoneyFromAmount(-5); got.Cents != 0 {
		t.Errorf("MoneyFromAmount(-5) = %d cents, want 0", got.Cents)
	}
}

func TestMoneyFromAmountRejectsNonFiniteAndHuge(t *testing.T) {
	tests := []struct {
		name string
		in   float64
	}{
		{"NaN", math.NaN()},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
		{"beyond int64 cents", math.MaxFloat64},
		{"just past the cents cap", maxCentsAmount * 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MoneyFromAmount(tt.in); got.Cents != 0 {
				t.Errorf("MoneyFromAmount(%v) = %d cents, want 0", tt.in, got.Cents)
			}
		})
	}
}

func TestFormatAmountClampsNonFinite(t *testing.T) {
	nan := 0.0 / zero()
	if got := FormatAmount("€", nan); got != "€0.00" {
		t.Errorf("FormatAmount(NaN) = %q, want €0.00", got)
	}
	inf := 1.0 / zero()
	if got := FormatAmount("$", inf); got != "$0.00" {
		t.Errorf("FormatAmount(Inf) = %q, want $0.00", got)
	}
	if got := FormatAmount("$", 1234.5); got != "$1234.50" {
		t.Errorf("FormatAmount(1234.5) = %q", got)
	}
	if got := FormatPercent(42.25); got != "42.3%" {
		t.Errorf("FormatPercent(42.25) = %q", got)
	}
}

// zero defeats constant folding so the divisions above happen at runtime.
func zero() float64 { return 0 }

func TestGoalFromLabel(t *testing.T) {
	tests := []struct {
		label string
		want  Goal
	}{
		{"Save for an emergency fund", GoalEmergencyFund},
		{"Pay off debt", GoalDebtPayoff},
		{"Save for a major purchase", GoalMajorPurchase},
		{"Build an investment portfolio", GoalInvestmentPortfolio},
		{"Track day-to-day expenses", GoalDayToDayTracking},
		{"Reduce unnecessary spending", GoalReduceSpending},
		{"Achieve financial independence", GoalFinancialIndependence},
		{"save for an emergency fund", GoalOther}, // case-sensitive on purpose
		{"", GoalOther},
		{"Retire at 40", GoalOther},
	}
	for _, tt := range tests {
		if got := GoalFromLabel(tt.label); got != tt.want {
			t.Errorf("GoalFromLabel(%q) = %v, want %v", tt.label, got, tt.want)
		}
	}
}

func TestGoalLabelRoundTrip(t *testing.T) {
	for label, goal := range map[string]Goal{
		"Pay off debt":              GoalDebtPayoff,
		"Save for a major purchase": GoalMajorPurchase,
	} {
		if goal.Label() != label {
			t.Errorf("%v.Label() = %q, want %q", goal, goal.Label(), label)
		}
	}
	if GoalOther.Label() != "" {
		t.Errorf("GoalOther.Label() = %q, want empty", GoalOther.Label())
	}
}
