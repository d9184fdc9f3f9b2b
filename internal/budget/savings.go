package budget

import (
	"fmt"
	"math"

	"finsight/internal/core"
)

// incomeCapShare is the largest slice of monthly income a plan may ask
// the user to put aside.
const incomeCapShare = 0.5

// ComputeSavingsPlan checks whether a savings target is reachable in the
// requested number of months. When the ideal contribution exceeds half
// of monthly income the plan is capped there and the duration recomputed.
// A non-positive month count is the one hard error in the engines.
func ComputeSavingsPlan(targetAmount float64, monthsToTarget int, monthlyIncome float64) (core.SavingsPlan, error) {
	if monthsToTarget <= 0 {
		return core.SavingsPlan{}, fmt.Errorf("months to target must be positive, got %d", monthsToTarget)
	}
	if math.IsNaN(targetAmount) || math.IsInf(targetAmount, 0) || targetAmount < 0 {
		targetAmount = 0
	}
	if math.IsNaN(monthlyIncome) || math.IsInf(monthlyIncome, 0) || monthlyIncome < 0 {
		monthlyIncome = 0
	}

	idealMonthly := targetAmount / float64(monthsToTarget)
	maxMonthly := incomeCapShare * monthlyIncome

	if idealMonthly <= maxMonthly {
		return core.SavingsPlan{
			TargetAmount:        targetAmount,
			MonthlyContribution: idealMonthly,
			Realistic:           true,
			AdjustedMonths:      monthsToTarget,
		}, nil
	}

	plan := core.SavingsPlan{
		TargetAmount:        targetAmount,
		MonthlyContribution: maxMonthly,
		Realistic:           false,
		AdjustedMonths:      monthsToTarget,
	}
	if maxMonthly > 0 {
		plan.AdjustedMonths = int(math.Ceil(targetAmount / maxMonthly))
	}
	return plan, nil
}
