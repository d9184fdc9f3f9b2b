package core

// Goal identifies the user's primary financial objective. The profile
// stores the human-readable label the user picked during onboarding;
// GoalFromLabel maps it to a tag at the boundary so internal dispatch is
// exhaustive instead of string-matched with a silent default.
type Goal string

const (
	GoalEmergencyFund         Goal = "emergency_fund"
	GoalDebtPayoff            Goal = "debt_payoff"
	GoalMajorPurchase         Goal = "major_purchase"
	GoalInvestmentPortfolio   Goal = "investment_portfolio"
	GoalDayToDayTracking      Goal = "day_to_day_tracking"
	GoalReduceSpending        Goal = "reduce_spending"
	GoalFinancialIndependence Goal = "financial_independence"
	GoalOther                 Goal = "other"
)

// goalLabels are the onboarding strings, matched case-sensitively.
var goalLabels = map[string]Goal{
	"Save for an emergency fund":     GoalEmergencyFund,
	"Pay off debt":                   GoalDebtPayoff,
	"Save for a major purchase":      GoalMajorPurchase,
	"Build an investment portfolio":  GoalInvestmentPortfolio,
	"Track day-to-day expenses":      GoalDayToDayTracking,
	"Reduce unnecessary spending":    GoalReduceSpending,
	"Achieve financial independence": GoalFinancialIndependence,
}

// GoalFromLabel maps a profile goal label to its tag. Unrecognized
// labels, including the empty string, fall back to GoalOther.
func GoalFromLabel(label string) Goal {
	if g, ok := goalLabels[label]; ok {
		return g
	}
	return GoalOther
}

// Label returns the onboarding string for a goal tag, or an empty string
// for GoalOther.
func (g Goal) Label() string {
	for label, goal := range goalLabels {
		if goal == g {
			return label
		}
	}
	return ""
}
