package insight

import (
	"fmt"
	"math"
	"time"

	"finsight/internal/core"
)

// Thresholds gating the individual insight rules.
const (
	topCategoryIncomeShare = 0.30
	trendingUpPercent      = 20
	trendingDownPercent    = -15
	expenseIncomeWarning   = 0.90
	lowSavingsShare        = 0.10
	goodSavingsShare       = 0.20
)

// SmartInsights produces a prioritized list of human-readable
// observations about the ledger. Each rule is independently gated by a
// threshold; numeric values are guarded against NaN/Inf before they
// reach formatting. Without a usable income figure the only output is
// the setup prompt.
func (e *Engine) SmartInsights(ledger []core.Transaction, monthlyIncome float64, now time.Time) []string {
	if monthlyIncome <= 0 || math.IsNaN(monthlyIncome) || math.IsInf(monthlyIncome, 0) {
		return []string{"Set your monthly income in your profile to unlock personalized insights."}
	}

	var insights []string
	trends := e.SpendingTrends(ledger, DefaultTimeframeMonths, now)

	if len(trends) > 0 {
		top := trends[0]
		monthlyAvg := top.CurrentAmount / DefaultTimeframeMonths
		if share := safeRatio(monthlyAvg, monthlyIncome); share > topCategoryIncomeShare {
			insights = append(insights, fmt.Sprintf(
				"Your %s spending averages %s of your monthly income. Consider setting a tighter budget for it.",
				top.Category, core.FormatPercent(share*100)))
		}
		if top.Trend == core.TrendIncreasing && top.ChangePercent > trendingUpPercent {
			insights = append(insights, fmt.Sprintf(
				"Spending on %s is up %s compared to the previous period.",
				top.Category, core.FormatPercent(top.ChangePercent)))
		}
	}

	for _, tr := range trends {
		if tr.ChangePercent < trendingDownPercent {
			insights = append(insights, fmt.Sprintf(
				"Nice work: your %s spending dropped %s versus the previous period.",
				tr.Category, core.FormatPercent(-tr.ChangePercent)))
			break
		}
	}

	currentStart := now.AddDate(0, -DefaultTimeframeMonths, 0)
	var totalExpenses float64
	for _, tx := range ledger {
		if tx.Direction == core.DirectionExpense && !tx.Date.Before(currentStart) && !tx.Date.After(now) {
			totalExpenses += tx.Amount.Amount()
		}
	}
	if ratio := safeRatio(totalExpenses, DefaultTimeframeMonths*monthlyIncome); ratio > expenseIncomeWarning {
		insights = append(insights, fmt.Sprintf(
			"You are spending %s of your income. Aim to keep expenses below 90%% to build a buffer.",
			core.FormatPercent(ratio*100)))
	}

	var savingsTotal float64
	savingsSeen := false
	for _, tx := range ledger {
		if tx.Direction != core.DirectionIncome {
			continue
		}
		if tx.Category != core.Miscellaneous && tx.Category != core.Investment {
			continue
		}
		savingsSeen = true
		if !tx.Date.Before(currentStart) && !tx.Date.After(now) {
			savingsTotal += tx.Amount.Amount()
		}
	}
	switch {
	case !savingsSeen:
		insights = append(insights, "You have no savings recorded yet. Even a small monthly deposit adds up.")
	default:
		monthlySavings := savingsTotal / DefaultTimeframeMonths
		share := safeRatio(monthlySavings, monthlyIncome)
		if share < lowSavingsShare {
			insights = append(insights, fmt.Sprintf(
				"You are saving %s of your income. Try to reach at least 10%%.",
				core.FormatPercent(share*100)))
		} else if share >= goodSavingsShare {
			insights = append(insights, fmt.Sprintf(
				"Great job: you are saving %s of your income. Keep it up!",
				core.FormatPercent(share*100)))
		}
		// Between 10% and 20% no message: the user is on track.
	}

	if len(insights) == 0 {
		insights = append(insights, "Keep tracking your transactions consistently to unlock deeper insights.")
	}
	return insights
}
