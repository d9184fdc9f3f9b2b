package insight

import (
	"math"
	"time"

	"finsight/internal/core"
)

// Transaction predicates used by goal progress. The note keyword
// matching is a deliberate behavioral-parity heuristic; keeping each
// predicate named lets it be swapped for structured tags later without
// touching the progress pipeline.

func isSavingsDeposit(tx core.Transaction, year int) bool {
	return tx.Direction == core.DirectionIncome &&
		tx.Date.Year() == year &&
		(tx.Category == core.Miscellaneous || tx.NoteContains("savings", "emergency"))
}

func isDebtPayment(tx core.Transaction, year int) bool {
	return tx.Direction == core.DirectionExpense &&
		tx.Date.Year() == year &&
		tx.NoteContains("loan", "debt", "emi")
}

func isInvestmentIncome(tx core.Transaction, year int) bool {
	return tx.Direction == core.DirectionIncome &&
		tx.Date.Year() == year &&
		(tx.Category == core.Investment || tx.NoteContains("invest", "dividend"))
}

func isPassiveIncome(tx core.Transaction, year int) bool {
	return tx.Direction == core.DirectionIncome &&
		tx.Date.Year() == year &&
		tx.NoteContains("passive", "dividend")
}

// GoalProgress returns the ratio of progress toward the goal in [0,1].
// Degenerate inputs (zero income, empty ledger) yield 0 rather than an
// error; each goal defines its own filter predicate and target formula.
func (e *Engine) GoalProgress(ledger []core.Transaction, goal core.Goal, monthlyIncome float64, now time.Time) float64 {
	if math.IsNaN(monthlyIncome) || math.IsInf(monthlyIncome, 0) || monthlyIncome < 0 {
		monthlyIncome = 0
	}
	year := now.Year()

	switch goal {
	case core.GoalEmergencyFund:
		saved := sumMatching(ledger, year, isSavingsDeposit)
		return clamp01(safeRatio(saved, e.targets.EmergencyFundMonths*monthlyIncome))

	case core.GoalDebtPayoff:
		paid := sumMatching(ledger, year, isDebtPayment)
		estimatedDebt := e.targets.DebtIncomeShare * monthlyIncome * 12
		return clamp01(safeRatio(paid, estimatedDebt))

	case core.GoalMajorPurchase:
		saved := sumMatching(ledger, year, isSavingsDeposit)
		return clamp01(safeRatio(saved, e.targets.MajorPurchaseMonths*monthlyIncome))

	case core.GoalInvestmentPortfolio:
		invested := sumMatching(ledger, year, isInvestmentIncome)
		return clamp01(safeRatio(invested, e.targets.InvestmentMonths*monthlyIncome))

	case core.GoalDayToDayTracking:
		return e.trackingConsistency(ledger, now)

	case core.GoalReduceSpending:
		return e.spendingReduction(ledger, now)

	case core.GoalFinancialIndependence:
		emergency := clamp01(safeRatio(sumMatching(ledger, year, isSavingsDeposit), e.targets.EmergencyFundMonths*monthlyIncome))
		invested := clamp01(safeRatio(sumMatching(ledger, year, isInvestmentIncome), e.targets.InvestmentMonths*monthlyIncome))
		passive := clamp01(safeRatio(sumMatching(ledger, year, isPassiveIncome), e.targets.PassiveIncomeMonths*monthlyIncome))
		return clamp01(0.3*emergency + 0.4*invested + 0.3*passive)

	default:
		saved := sumMatching(ledger, year, isSavingsDeposit)
		return clamp01(safeRatio(saved, e.targets.FallbackMonths*monthlyIncome))
	}
}

// trackingConsistency measures the fraction of days in the previous
// calendar month that have at least one transaction of any kind.
func (e *Engine) trackingConsistency(ledger []core.Transaction, now time.Time) float64 {
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	firstOfPrevMonth := firstOfThisMonth.AddDate(0, -1, 0)
	daysInPrevMonth := firstOfThisMonth.AddDate(0, 0, -1).Day()

	seen := make(map[int]bool)
	for _, tx := range ledger {
		if tx.Date.Before(firstOfPrevMonth) || !tx.Date.Before(firstOfThisMonth) {
			continue
		}
		seen[tx.Date.Day()] = true
	}
	return clamp01(safeRatio(float64(len(seen)), float64(daysInPrevMonth)))
}

// reductionTarget is the month-over-month discretionary cut that counts
// as complete progress.
const reductionTarget = 0.2

// spendingReduction compares discretionary expenses between the current
// and previous calendar month. With no previous-month discretionary
// spending there is nothing to measure against, so it reports the fixed
// midpoint 0.5.
func (e *Engine) spendingReduction(ledger []core.Transaction, now time.Time) float64 {
	firstOfThisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	firstOfPrevMonth := firstOfThisMonth.AddDate(0, -1, 0)

	discretionary := make(map[core.Category]bool)
	for _, c := range core.DiscretionaryCategories() {
		discretionary[c] = true
	}

	var current, previous float64
	for _, tx := range ledger {
		if tx.Direction != core.DirectionExpense || !discretionary[tx.Category] {
			continue
		}
		switch {
		case !tx.Date.Before(firstOfThisMonth):
			current += tx.Amount.Amount()
		case !tx.Date.Before(firstOfPrevMonth):
			previous += tx.Amount.Amount()
		}
	}

	if previous <= 0 {
		return 0.5
	}
	return clamp01((previous - current) / previous / reductionTarget)
}

// monthsFallback is reported when the ledger carries no progress signal.
const monthsFallback = 36

// MonthsToGoal estimates the months remaining until the goal completes,
// from the progress gained over the trailing three months. The rate is
// floored at 0.01 per month so the estimate stays finite.
func (e *Engine) MonthsToGoal(ledger []core.Transaction, goal core.Goal, monthlyIncome float64, now time.Time) int {
	full := e.GoalProgress(ledger, goal, monthlyIncome, now)
	if full >= 1 {
		return 0
	}

	cutoff := now.AddDate(0, -3, 0)
	var older []core.Transaction
	for _, tx := range ledger {
		if tx.Date.Before(cutoff) {
			older = append(older, tx)
		}
	}
	prior := e.GoalProgress(older, goal, monthlyIncome, now)

	if full <= 0 && prior <= 0 {
		return monthsFallback
	}

	rate := (full - prior) / 3
	if rate <= 0 {
		rate = 0.01
	}
	return int(math.Ceil((1 - full) / rate))
}

func sumMatching(ledger []core.Transaction, year int, match func(core.Transaction, int) bool) float64 {
	var total float64
	for _, tx := range ledger {
		if match(tx, year) {
			total += tx.Amount.Amount()
		}
	}
	return total
}
