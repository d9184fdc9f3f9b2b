// Package insight implements the financial insight engine: goal
// progress, time-to-goal estimates, spending trend analysis, smart
// insight strings, and savings projections.
//
// Every method is a pure function of its arguments. Callers pass the
// reference time explicitly, so identical inputs always produce
// identical outputs.
package insight

import "math"

// Targets holds the policy constants behind each goal's target formula,
// expressed as multiples of monthly income. They mirror the product's
// original heuristics and are injectable rather than hard-coded so a
// caller can tune them without touching the progress pipeline.
type Targets struct {
	// EmergencyFundMonths of income make a full emergency fund.
	EmergencyFundMonths float64
	// MajorPurchaseMonths of income is the assumed purchase size.
	MajorPurchaseMonths float64
	// InvestmentMonths of income is a full investment portfolio.
	InvestmentMonths float64
	// DebtIncomeShare estimates total debt as share * income * 12.
	DebtIncomeShare float64
	// PassiveIncomeMonths of income is the passive-income target used
	// by the financial-independence blend.
	PassiveIncomeMonths float64
	// FallbackMonths of income backs the generic savings target for
	// unrecognized goals.
	FallbackMonths float64
}

// DefaultTargets returns the original policy constants.
func DefaultTargets() Targets {
	return Targets{
		EmergencyFundMonths: 3,
		MajorPurchaseMonths: 6,
		InvestmentMonths:    12,
		DebtIncomeShare:     0.5,
		PassiveIncomeMonths: 24,
		FallbackMonths:      6,
	}
}

// Engine computes insights against a configured set of targets.
type Engine struct {
	targets Targets
}

// NewEngine creates an engine with the given targets. Zero-valued
// targets fall back to the defaults so a partially filled struct cannot
// produce divide-by-zero artifacts.
func NewEngine(t Targets) *Engine {
	def := DefaultTargets()
	if t.EmergencyFundMonths <= 0 {
		t.EmergencyFundMonths = def.EmergencyFundMonths
	}
	if t.MajorPurchaseMonths <= 0 {
		t.MajorPurchaseMonths = def.MajorPurchaseMonths
	}
	if t.InvestmentMonths <= 0 {
		t.InvestmentMonths = def.InvestmentMonths
	}
	if t.DebtIncomeShare <= 0 {
		t.DebtIncomeShare = def.DebtIncomeShare
	}
	if t.PassiveIncomeMonths <= 0 {
		t.PassiveIncomeMonths = def.PassiveIncomeMonths
	}
	if t.FallbackMonths <= 0 {
		t.FallbackMonths = def.FallbackMonths
	}
	return &Engine{targets: t}
}

// clamp01 keeps ratios in [0,1] and swallows NaN from 0/0 divisions.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// safeRatio divides defensively: non-positive denominators and
// non-finite results collapse to 0 instead of propagating.
func safeRatio(num, den float64) float64 {
	if den <= 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
