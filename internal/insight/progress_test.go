package insight

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"finsight/internal/core"
)

// Fixed reference time keeps every test deterministic.
var testNow = time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

func tx(direction core.Direction, category core.Category, amountCents int64, date time.Time, note string) core.Transaction {
	return core.Transaction{
		ID:        uuid.New(),
		Amount:    core.Money{Cents: amountCents},
		Direction: direction,
		Category:  category,
		Date:      date,
		Note:      note,
	}
}

func cents(units float64) int64 { return int64(units * 100) }

func TestGoalProgress_EmptyLedger(t *testing.T) {
	e := NewEngine(DefaultTargets())
	if got := e.GoalProgress(nil, core.GoalEmergencyFund, 30000, testNow); got != 0 {
		t.Errorf("GoalProgress(empty) = %v, want 0", got)
	}
}

func TestGoalProgress_ZeroIncome(t *testing.T) {
	e := NewEngine(DefaultTargets())
	ledger := []core.Transaction{
		tx(core.DirectionIncome, core.Miscellaneous, cents(5000), testNow.AddDate(0, -1, 0), "savings"),
	}
	if got := e.GoalProgress(ledger, core.GoalEmergencyFund, 0, testNow); got != 0 {
		t.Errorf("GoalProgress with zero income = %v, want 0", got)
	}
}

func TestGoalProgress_EmergencyFund(t *testing.T) {
	e := NewEngine(DefaultTargets())
	// Target is 3 * 30000 = 90000; deposits this year total 45000.
	ledger := []core.Transaction{
		tx(core.DirectionIncome, core.Miscellaneous, cents(30000), testNow.AddDate(0, -2, 0), ""),
		tx(core.DirectionIncome, core.Salary, cents(15000), testNow.AddDate(0, -1, 0), "emergency fund top-up"),
		// Previous year, must be ignored.
		tx(core.DirectionIncome, core.Miscellaneous, cents(99999), testNow.AddDate(-1, 0, 0), "savings"),
	}
	got := e.GoalProgress(ledger, core.GoalEmergencyFund, 30000, testNow)
	if got != 0.5 {
		t.Errorf("GoalProgress = %v, want 0.5", got)
	}
}

func TestGoalProgress_ClampedAtOne(t *testing.T) {
	e := NewEngine(DefaultTargets())
	ledger := []core.Transaction{
		tx(core.DirectionIncome, core.Miscellaneous, cents(500000), testNow.AddDate(0, -1, 0), "savings"),
	}
	if got := e.GoalProgress(ledger, core.GoalEmergencyFund, 30000, testNow); got != 1 {
		t.Errorf("GoalProgress = %v, want clamp to 1", got)
	}
}

func TestGoalProgress_DebtPayoff(t *testing.T) {
	e := NewEngine(DefaultTargets())
	// Estimated debt is 0.5 * 30000 * 12 = 180000; payments total 90000.
	ledger := []core.Transaction{
		tx(core.DirectionExpense, core.Bills, cents(60000), testNow.AddDate(0, -3, 0), "car loan installment"),
		tx(core.DirectionExpense, core.Bills, cents(30000), testNow.AddDate(0, -1, 0), "Monthly EMI"),
		// No debt keyword, must be ignored.
		tx(core.DirectionExpense, core.Bills, cents(50000), testNow.AddDate(0, -1, 0), "electricity"),
	}
	got := e.GoalProgress(ledger, core.GoalDebtPayoff, 30000, testNow)
	if got != 0.5 {
		t.Errorf("GoalProgress = %v, want 0.5", got)
	}
}

func TestGoalProgress_InvestmentPortfolio(t *testing.T) {
	e := NewEngine(DefaultTargets())
	// Target is 12 * 10000 = 120000; matched contributions total 60000.
	ledger := []core.Transaction{
		tx(core.DirectionIncome, core.Investment, cents(30000), testNow.AddDate(0, -2, 0), ""),
		tx(core.DirectionIncome, core.Salary, cents(30000), testNow.AddDate(0, -1, 0), "dividend payout"),
		tx(core.DirectionIncome, core.Salary, cents(30000), testNow.AddDate(0, -1, 0), "paycheck"),
	}
	got := e.GoalProgress(ledger, core.GoalInvestmentPortfolio, 10000, testNow)
	if got != 0.5 {
		t.Errorf("GoalProgress = %v, want 0.5", got)
	}
}

func TestGoalProgress_DayToDayTracking(t *testing.T) {
	e := NewEngine(DefaultTargets())
	// July 2026 has 31 days; transactions on 10 distinct days.
	var ledger []core.Transaction
	for day := 1; day <= 10; day++ {
		date := time.Date(2026, 7, day, 10, 0, 0, 0, time.UTC)
		ledger = append(ledger, tx(core.DirectionExpense, core.Food, cents(10), date, ""))
	}
	// Duplicate day and out-of-window entries must not change the count.
	ledger = append(ledger,
		tx(core.DirectionExpense, core.Food, cents(10), time.Date(2026, 7, 5, 20, 0, 0, 0, time.UTC), ""),
		tx(core.DirectionExpense, core.Food, cents(10), time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC), ""),
	)

	got := e.GoalProgress(ledger, core.GoalDayToDayTracking, 30000, testNow)
	want := 10.0 / 31.0
	if got != want {
		t.Errorf("GoalProgress = %v, want %v", got, want)
	}
}

func TestGoalProgress_ReduceSpending(t *testing.T) {
	e := NewEngine(DefaultTargets())
	july := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	t.Run("partial reduction", func(t *testing.T) {
		ledger := []core.Transaction{
			tx(core.DirectionExpense, core.Entertainment, cents(1000), july, ""),
			tx(core.DirectionExpense, core.Shopping, cents(900), august, ""),
		}
		// (1000 - 900) / 1000 / 0.2 = 0.5
		if got := e.GoalProgress(ledger, core.GoalReduceSpending, 30000, testNow); got != 0.5 {
			t.Errorf("GoalProgress = %v, want 0.5", got)
		}
	})

	t.Run("full reduction clamps to 1", func(t *testing.T) {
		ledger := []core.Transaction{
			tx(core.DirectionExpense, core.Travel, cents(1000), july, ""),
			tx(core.DirectionExpense, core.Travel, cents(100), august, ""),
		}
		if got := e.GoalProgress(ledger, core.GoalReduceSpending, 30000, testNow); got != 1 {
			t.Errorf("GoalProgress = %v, want 1", got)
		}
	})

	t.Run("no previous spending falls back to 0.5", func(t *testing.T) {
		ledger := []core.Transaction{
			tx(core.DirectionExpense, core.Shopping, cents(500), august, ""),
		}
		if got := e.GoalProgress(ledger, core.GoalReduceSpending, 30000, testNow); got != 0.5 {
			t.Errorf("GoalProgress = %v, want 0.5", got)
		}
	})

	t.Run("essential spending is ignored", func(t *testing.T) {
		ledger := []core.Transaction{
			tx(core.DirectionExpense, core.Housing, cents(5000), july, ""),
			tx(core.DirectionExpense, core.Housing, cents(5000), august, ""),
		}
		if got := e.GoalProgress(ledger, core.GoalReduceSpending, 30000, testNow); got != 0.5 {
			t.Errorf("GoalProgress = %v, want fallback 0.5", got)
		}
	})
}

func TestGoalProgress_FinancialIndependenceBlend(t *testing.T) {
	e := NewEngine(DefaultTargets())
	// Emergency fund component saturated, the other two at zero:
	// 0.3*1 + 0.4*0 + 0.3*0 = 0.3.
	ledger := []core.Transaction{
		tx(core.DirectionIncome, core.Miscellaneous, cents(500000), testNow.AddDate(0, -1, 0), "savings"),
	}
	got := e.GoalProgress(ledger, core.GoalFinancialIndependence, 10000, testNow)
	if got != 0.3 {
		t.Errorf("GoalProgress = %v, want 0.3", got)
	}
}

func TestGoalProgress_UnknownGoalFallback(t *testing.T) {
	e := NewEngine(DefaultTargets())
	// Generic target is 6 * 10000 = 60000; deposits total 30000.
	ledger := []core.Transaction{
		tx(core.DirectionIncome, core.Miscellaneous, cents(30000), testNow.AddDate(0, -1, 0), ""),
	}
	if got := e.GoalProgress(ledger, core.GoalOther, 10000, testNow); got != 0.5 {
		t.Errorf("GoalProgress = %v, want 0.5", got)
	}
}

func TestGoalProgress_ConfigurableTargets(t *testing.T) {
	// Doubling the emergency-fund multiple halves the reported progress.
	strict := NewEngine(Targets{EmergencyFundMonths: 6})
	ledger := []core.Transaction{
		tx(core.DirectionIncome, core.Miscellaneous, cents(45000), testNow.AddDate(0, -1, 0), ""),
	}
	if got := strict.GoalProgress(ledger, core.GoalEmergencyFund, 30000, testNow); got != 0.25 {
		t.Errorf("GoalProgress = %v, want 0.25", got)
	}
}

func TestMonthsToGoal(t *testing.T) {
	e := NewEngine(DefaultTargets())

	t.Run("no signal falls back to 36", func(t *testing.T) {
		if got := e.MonthsToGoal(nil, core.GoalEmergencyFund, 30000, testNow); got != monthsFallback {
			t.Errorf("MonthsToGoal = %v, want %v", got, monthsFallback)
		}
	})

	t.Run("completed goal", func(t *testing.T) {
		ledger := []core.Transaction{
			tx(core.DirectionIncome, core.Miscellaneous, cents(500000), testNow.AddDate(0, -1, 0), "savings"),
		}
		if got := e.MonthsToGoal(ledger, core.GoalEmergencyFund, 30000, testNow); got != 0 {
			t.Errorf("MonthsToGoal = %v, want 0", got)
		}
	})

	t.Run("recent progress sets the pace", func(t *testing.T) {
		// Progress 0.4 earned entirely within the last 3 months:
		// rate = 0.4/3, remaining = ceil(0.6 / (0.4/3)) = 5.
		ledger := []core.Transaction{
			tx(core.DirectionIncome, core.Miscellaneous, cents(36000), testNow.AddDate(0, -1, 0), "savings"),
		}
		if got := e.MonthsToGoal(ledger, core.GoalEmergencyFund, 30000, testNow); got != 5 {
			t.Errorf("MonthsToGoal = %v, want 5", got)
		}
	})

	t.Run("stalled progress uses the rate floor", func(t *testing.T) {
		// All progress is older than 3 months, so the recent rate is 0
		// and gets floored at 0.01: ceil(0.5/0.01) = 50.
		ledger := []core.Transaction{
			tx(core.DirectionIncome, core.Miscellaneous, cents(45000), testNow.AddDate(0, -5, 0), "savings"),
		}
		if got := e.MonthsToGoal(ledger, core.GoalEmergencyFund, 30000, testNow); got != 50 {
			t.Errorf("MonthsToGoal = %v, want 50", got)
		}
	})
}
