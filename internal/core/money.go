// Package core holds the domain model shared by the engines, storage,
// and transport layers: transactions, profiles, categories, goals, and
// money parsing/formatting helpers.
package core

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Money stores an amount as integer cents. Persistence and transport
// keep cents; the engines convert to float64 via Amount() because the
// allocation and insight math is approximate by design.
type Money struct {
	Cents int64
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Amount returns the value in currency units as a float64 for engine
// math and display. Use cents for storage and comparison.
func (m Money) Amount() float64 {
	return float64(m.Cents) / 100.0
}

// maxCentsAmount is the largest currency-unit value whose cents still
// fit in an int64.
const maxCentsAmount = float64((1<<63 - 1) / 100)

// MoneyFromAmount converts a currency-unit value to cents with half-up
// rounding. Negative, non-finite, or out-of-range inputs map to zero
// cents.
func MoneyFromAmount(v float64) Money {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Money{}
	}
	if v <= 0 || v > maxCentsAmount {
		return Money{}
	}
	return Money{Cents: int64(v*100 + 0.5)}
}

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot and comma separators are
// accepted. Only strictly positive values are valid.
//
//	ParseDecimalToCents("12.34")  -> 1234
//	ParseDecimalToCents("12,345") -> 1235 (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return 0, ErrInvalidAmount
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	for _, r := range fracPart {
		if !unicode.IsDigit(r) {
			return 0, ErrInvalidAmount
		}
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// Guard the *100 below against overflow.
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}
	cents := iv*100 + fracCents
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}
