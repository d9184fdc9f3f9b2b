package insight

import "math"

// ProjectSavings simulates months of saving with monthly compounding:
// each step adds the contribution, then applies one month of growth at
// annualGrowthRate/12, and records the post-growth balance. The result
// has exactly months entries; a non-positive month count yields an
// empty series. Non-finite inputs are treated as zero.
func (e *Engine) ProjectSavings(currentSavings, monthlyContribution, annualGrowthRate float64, months int) []float64 {
	if months <= 0 {
		return []float64{}
	}
	if math.IsNaN(currentSavings) || math.IsInf(currentSavings, 0) {
		currentSavings = 0
	}
	if math.IsNaN(monthlyContribution) || math.IsInf(monthlyContribution, 0) {
		monthlyContribution = 0
	}
	if math.IsNaN(annualGrowthRate) || math.IsInf(annualGrowthRate, 0) {
		annualGrowthRate = 0
	}

	monthlyRate := annualGrowthRate / 12
	balance := currentSavings
	series := make([]float64, 0, months)
	for i := 0; i < months; i++ {
		balance += monthlyContribution
		balance *= 1 + monthlyRate
		series = append(series, balance)
	}
	return series
}
