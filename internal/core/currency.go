package core

import (
	"fmt"
	"math"
)

// FormatAmount renders a currency-unit value with the profile's symbol.
// Non-finite values are clamped to zero before formatting; insight
// strings must never carry NaN or Inf into user-visible text.
func FormatAmount(symbol string, v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return fmt.Sprintf("%s%.2f", symbol, v)
}

// FormatPercent renders a ratio as a display percentage with the same
// non-finite clamping as FormatAmount.
func FormatPercent(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return fmt.Sprintf("%.1f%%", v)
}
