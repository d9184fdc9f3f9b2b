package insight

import (
	"sort"
	"time"

	"finsight/internal/core"
)

// DefaultTimeframeMonths is the trend window used when the caller does
// not supply one.
const DefaultTimeframeMonths = 3

// Band outside which a period-over-period change stops counting as
// stable, in percent.
const stableBandPercent = 5

// SpendingTrends partitions expense history into a current period of
// timeframeMonths and an equal-length preceding period, and reports the
// per-category movement between them. Categories with no spending in
// either period are omitted. The result is sorted by current-period
// amount, largest first.
func (e *Engine) SpendingTrends(ledger []core.Transaction, timeframeMonths int, now time.Time) []core.CategoryAnalytics {
	if timeframeMonths <= 0 {
		timeframeMonths = DefaultTimeframeMonths
	}
	currentStart := now.AddDate(0, -timeframeMonths, 0)
	previousStart := now.AddDate(0, -2*timeframeMonths, 0)

	current := make(map[core.Category]float64)
	previous := make(map[core.Category]float64)
	for _, tx := range ledger {
		if tx.Direction != core.DirectionExpense {
			continue
		}
		switch {
		case !tx.Date.Before(currentStart) && !tx.Date.After(now):
			current[tx.Category] += tx.Amount.Amount()
		case !tx.Date.Before(previousStart) && tx.Date.Before(currentStart):
			previous[tx.Category] += tx.Amount.Amount()
		}
	}

	out := make([]core.CategoryAnalytics, 0, len(core.TrendCategories()))
	for _, c := range core.TrendCategories() {
		cur, prev := current[c], previous[c]
		if cur == 0 && prev == 0 {
			continue
		}

		var change float64
		switch {
		case prev > 0:
			change = (cur - prev) / prev * 100
		case cur > 0:
			// New spending with no baseline reads as a full increase.
			change = 100
		}

		trend := core.TrendStable
		if change > stableBandPercent {
			trend = core.TrendIncreasing
		} else if change < -stableBandPercent {
			trend = core.TrendDecreasing
		}

		out = append(out, core.CategoryAnalytics{
			Category:       c,
			CurrentAmount:  cur,
			PreviousAmount: prev,
			ChangePercent:  change,
			Trend:          trend,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CurrentAmount != out[j].CurrentAmount {
			return out[i].CurrentAmount > out[j].CurrentAmount
		}
		return out[i].Category < out[j].Category
	})
	return out
}
