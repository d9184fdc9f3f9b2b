// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurring transaction
// dueness checking. Each frequency (daily, weekly, monthly, yearly) has
// its own strategy encapsulating when a template should fire.

package services

import (
	"fmt"
	"time"

	"finsight/internal/core"
)

// DuenessChecker is the strategy interface for checking if a recurring
// transaction is due. Each implementation encapsulates the algorithm for
// a specific frequency.
type DuenessChecker interface {
	// IsDue returns true if the recurring transaction should be processed
	// based on the last execution time and the current time.
	IsDue(lastExecution, now time.Time, startDate time.Time) bool
}

// DailyChecker implements DuenessChecker for daily recurring transactions.
type DailyChecker struct{}

// IsDue returns true if last execution was before today.
func (DailyChecker) IsDue(lastExecution, now time.Time, _ time.Time) bool {
	if lastExecution.IsZero() {
		return true
	}
	lastDate := lastExecution.Format("2006-01-02")
	nowDate := now.Format("2006-01-02")
	return lastDate != nowDate
}

// WeeklyChecker implements DuenessChecker for weekly recurring transactions.
type WeeklyChecker struct{}

// IsDue returns true if 7 or more days have passed since last execution.
func (WeeklyChecker) IsDue(lastExecution, now time.Time, _ time.Time) bool {
	if lastExecution.IsZero() {
		return true
	}
	daysSince := now.Sub(lastExecution).Hours() / 24
	return daysSince >= 7
}

// MonthlyChecker implements DuenessChecker for monthly recurring transactions.
type MonthlyChecker struct{}

// IsDue returns true if we're in a new month and have reached the target day.
func (MonthlyChecker) IsDue(lastExecution, now time.Time, startDate time.Time) bool {
	if lastExecution.IsZero() {
		return true
	}

	// Already processed this month?
	if lastExecution.Year() == now.Year() && lastExecution.Month() == now.Month() {
		return false
	}

	// Clamp the target day for short months (e.g. a template starting on
	// the 31st fires on Feb 28)
	targetDay := startDate.Day()
	targetDayThisMonth := targetDay
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		targetDayThisMonth = lastDayOfMonth
	}

	return now.Day() >= targetDayThisMonth
}

// YearlyChecker implements DuenessChecker for yearly recurring transactions.
type YearlyChecker struct{}

// IsDue returns true if we're in a new year and have reached the target month and day.
func (YearlyChecker) IsDue(lastExecution, now time.Time, startDate time.Time) bool {
	if lastExecution.IsZero() {
		return true
	}

	// Already processed this year?
	if lastExecution.Year() == now.Year() {
		return false
	}

	targetMonth := int(startDate.Month())
	targetDay := startDate.Day()

	if int(now.Month()) < targetMonth {
		return false
	}

	if int(now.Month()) == targetMonth {
		lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
		targetDayThisMonth := targetDay
		if targetDay > lastDayOfMonth {
			targetDayThisMonth = lastDayOfMonth
		}
		return now.Day() >= targetDayThisMonth
	}

	// We're past the target month
	return true
}

// duenessStrategies maps frequencies to their corresponding checkers.
var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the appropriate dueness checker for a frequency.
// Returns an error if the frequency is not supported.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker allows registering custom dueness checkers for
// new frequencies without modifying the registry.
func RegisterDuenessChecker(frequency core.Frequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
