package core

// Output value objects produced by the budget and insight engines. The
// engines allocate fresh values on every call and never mutate inputs.

// CategoryAllocation is one row of a computed budget: the category, its
// absolute monthly amount, and its share of income as a display
// percentage. For any single computation the percentages sum to
// 100 (+-0.1) after normalization.
type CategoryAllocation struct {
	Category   Category `json:"category"`
	Amount     float64  `json:"amount"`
	Percentage float64  `json:"percentage"`
}

// TrendDirection classifies a category's period-over-period change.
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// CategoryAnalytics is one row of a spending trend report. Trend is
// derived from the two period amounts, never set independently.
type CategoryAnalytics struct {
	Category       Category       `json:"category"`
	CurrentAmount  float64        `json:"current_amount"`
	PreviousAmount float64        `json:"previous_amount"`
	ChangePercent  float64        `json:"change_percent"`
	Trend          TrendDirection `json:"trend"`
}

// SavingsPlan is the outcome of a target/duration feasibility check.
// When the ideal contribution exceeds half of monthly income the
// contribution is capped there, Realistic is false, and AdjustedMonths
// holds the recomputed duration.
type SavingsPlan struct {
	TargetAmount        float64 `json:"target_amount"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	Realistic           bool    `json:"is_realistic"`
	AdjustedMonths      int     `json:"adjusted_months"`
}

// GoalStatus bundles the insight engine's goal outputs for transport.
type GoalStatus struct {
	Goal            Goal    `json:"goal"`
	Progress        float64 `json:"progress"`
	MonthsRemaining int     `json:"months_remaining"`
	TargetMonth     string  `json:"target_month"` // YYYY-MM
}
