// Package budget implements the allocation engine: pure functions that
// derive a normalized category budget from income, the user's goal, and
// recent spending history.
package budget

import (
	"math"
	"sort"

	"finsight/internal/core"
)

// baseShares is the fixed baseline allocation per expense category,
// expressed as a share of monthly income.
var baseShares = map[core.Category]float64{
	core.Food:           0.25,
	core.Transportation: 0.15,
	core.Housing:        0.30,
	core.Entertainment:  0.05,
	core.Shopping:       0.05,
	core.Bills:          0.10,
	core.Health:         0.05,
	core.Education:      0.03,
	core.Travel:         0.02,
	core.Miscellaneous:  0.05,
}

// savingsIncrease is the extra share moved into the savings bucket per
// goal. Goals absent from the map use defaultSavingsIncrease.
var savingsIncrease = map[core.Goal]float64{
	core.GoalEmergencyFund:         0.20,
	core.GoalDebtPayoff:            0.25,
	core.GoalMajorPurchase:         0.15,
	core.GoalInvestmentPortfolio:   0.20,
	core.GoalDayToDayTracking:      0.05,
	core.GoalReduceSpending:        0.15,
	core.GoalFinancialIndependence: 0.25,
}

const defaultSavingsIncrease = 0.10

// halvesDiscretionary marks the goals that additionally cut the
// entertainment and shopping baselines in half before boosting savings.
var halvesDiscretionary = map[core.Goal]bool{
	core.GoalReduceSpending:        true,
	core.GoalFinancialIndependence: true,
}

const (
	historyRecommendedWeight = 0.7
	historyActualWeight      = 0.3
	primaryShiftThreshold    = 0.15
	normalizeTolerance       = 0.001
)

// ComputeAllocations derives the recommended budget for one month.
// Deterministic and side-effect free: identical inputs produce identical
// output. Zero income yields zero amounts with meaningful percentages.
func ComputeAllocations(monthlyIncome float64, goal core.Goal, primary core.Category, recent []core.Transaction) []core.CategoryAllocation {
	if math.IsNaN(monthlyIncome) || math.IsInf(monthlyIncome, 0) || monthlyIncome < 0 {
		monthlyIncome = 0
	}

	shares := make(map[core.Category]float64, len(baseShares))
	for c, v := range baseShares {
		shares[c] = v
	}

	applyGoalAdjustment(shares, goal)
	applyPrimaryShift(shares, primary)
	blendHistory(shares, recent)
	normalize(shares)

	out := make([]core.CategoryAllocation, 0, len(shares))
	for _, c := range core.ExpenseCategories() {
		share := shares[c]
		out = append(out, core.CategoryAllocation{
			Category:   c,
			Amount:     share * monthlyIncome,
			Percentage: share * 100,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Amount != out[j].Amount {
			return out[i].Amount > out[j].Amount
		}
		if out[i].Percentage != out[j].Percentage {
			return out[i].Percentage > out[j].Percentage
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// applyGoalAdjustment moves the goal's savings increase into the
// miscellaneous bucket, funded by reducing every other category in
// proportion to its pre-reduction share. All reductions are computed
// from a snapshot so iteration order cannot skew the result.
func applyGoalAdjustment(shares map[core.Category]float64, goal core.Goal) {
	if halvesDiscretionary[goal] {
		shares[core.Entertainment] /= 2
		shares[core.Shopping] /= 2
	}

	increase, ok := savingsIncrease[goal]
	if !ok {
		increase = defaultSavingsIncrease
	}
	if increase <= 0 {
		return
	}

	snapshot := make(map[core.Category]float64, len(shares))
	var nonSavingsTotal float64
	for c, v := range shares {
		snapshot[c] = v
		if c != core.Miscellaneous {
			nonSavingsTotal += v
		}
	}
	if nonSavingsTotal <= 0 {
		return
	}

	for c := range shares {
		if c == core.Miscellaneous {
			continue
		}
		shares[c] -= increase * snapshot[c] / nonSavingsTotal
		if shares[c] < 0 {
			shares[c] = 0
		}
	}
	shares[core.Miscellaneous] += increase
}

// applyPrimaryShift trims a heavy primary category by 10% of its own
// value and moves the difference into savings.
func applyPrimaryShift(shares map[core.Category]float64, primary core.Category) {
	v, ok := shares[primary]
	if !ok || primary == core.Miscellaneous {
		return
	}
	if v > primaryShiftThreshold {
		delta := v * 0.10
		shares[primary] = v - delta
		shares[core.Miscellaneous] += delta
	}
}

// blendHistory nudges the recommendation toward the user's actual
// expense distribution over the supplied window. Categories the user
// never spent in keep their recommended share unchanged.
func blendHistory(shares map[core.Category]float64, recent []core.Transaction) {
	if len(recent) == 0 {
		return
	}

	actualByCategory := make(map[core.Category]float64)
	var total float64
	for _, tx := range recent {
		if tx.Direction != core.DirectionExpense {
			continue
		}
		amt := tx.Amount.Amount()
		actualByCategory[tx.Category] += amt
		total += amt
	}
	if total <= 0 {
		return
	}

	for c, spent := range actualByCategory {
		recommended, ok := shares[c]
		if !ok || spent <= 0 {
			continue
		}
		shares[c] = historyRecommendedWeight*recommended + historyActualWeight*(spent/total)
	}
}

// normalize rescales shares to sum to 1.0, skipping the division when
// the total is already within tolerance to avoid needless float drift.
func normalize(shares map[core.Category]float64) {
	var total float64
	for _, v := range shares {
		total += v
	}
	if total <= 0 {
		return
	}
	if math.Abs(total-1.0) <= normalizeTolerance {
		return
	}
	for c := range shares {
		shares[c] /= total
	}
}
