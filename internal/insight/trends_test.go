package insight

import (
	"math"
	"reflect"
	"testing"

	"finsight/internal/core"
)

func TestSpendingTrends_NewSpendingIsFullIncrease(t *testing.T) {
	e := NewEngine(DefaultTargets())
	ledger := []core.Transaction{
		tx(core.DirectionExpense, core.Food, cents(1000), testNow.AddDate(0, -1, 0), ""),
	}

	got := e.SpendingTrends(ledger, 3, testNow)
	if len(got) != 1 {
		t.Fatalf("got %d rows, want 1", len(got))
	}
	row := got[0]
	if row.Category != core.Food {
		t.Errorf("Category = %v, want food", row.Category)
	}
	if row.Trend != core.TrendIncreasing {
		t.Errorf("Trend = %v, want increasing", row.Trend)
	}
	if row.ChangePercent != 100 {
		t.Errorf("ChangePercent = %v, want 100", row.ChangePercent)
	}
}

func TestSpendingTrends_Classification(t *testing.T) {
	e := NewEngine(DefaultTargets())
	current := testNow.AddDate(0, -1, 0)
	previous := testNow.AddDate(0, -4, 0)

	tests := []struct {
		name       string
		prevCents  int64
		curCents   int64
		wantTrend  core.TrendDirection
		wantChange float64
	}{
		{"sharp increase", cents(1000), cents(2000), core.TrendIncreasing, 100},
		{"sharp decrease", cents(1000), cents(500), core.TrendDecreasing, -50},
		{"within stable band", cents(1000), cents(1020), core.TrendStable, 2},
		{"spending stopped", cents(1000), 0, core.TrendDecreasing, -100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ledger []core.Transaction
			if tt.prevCents > 0 {
				ledger = append(ledger, tx(core.DirectionExpense, core.Bills, tt.prevCents, previous, ""))
			}
			if tt.curCents > 0 {
				ledger = append(ledger, tx(core.DirectionExpense, core.Bills, tt.curCents, current, ""))
			}

			got := e.SpendingTrends(ledger, 3, testNow)
			if len(got) != 1 {
				t.Fatalf("got %d rows, want 1", len(got))
			}
			if got[0].Trend != tt.wantTrend {
				t.Errorf("Trend = %v, want %v", got[0].Trend, tt.wantTrend)
			}
			if math.Abs(got[0].ChangePercent-tt.wantChange) > 1e-9 {
				t.Errorf("ChangePercent = %v, want %v", got[0].ChangePercent, tt.wantChange)
			}
		})
	}
}

func TestSpendingTrends_FiltersAndSorting(t *testing.T) {
	e := NewEngine(DefaultTargets())
	current := testNow.AddDate(0, -1, 0)

	ledger := []core.Transaction{
		tx(core.DirectionExpense, core.Food, cents(300), current, ""),
		tx(core.DirectionExpense, core.Housing, cents(900), current, ""),
		tx(core.DirectionExpense, core.Travel, cents(600), current, ""),
		// Income and savings-bucket entries never appear in trends.
		tx(core.DirectionIncome, core.Salary, cents(5000), current, ""),
		tx(core.DirectionExpense, core.Miscellaneous, cents(9999), current, ""),
	}

	got := e.SpendingTrends(ledger, 3, testNow)
	wantOrder := []core.Category{core.Housing, core.Travel, core.Food}
	var gotOrder []core.Category
	for _, row := range got {
		gotOrder = append(gotOrder, row.Category)
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Errorf("order = %v, want %v", gotOrder, wantOrder)
	}
}

func TestSpendingTrends_DefaultTimeframe(t *testing.T) {
	e := NewEngine(DefaultTargets())
	ledger := []core.Transaction{
		tx(core.DirectionExpense, core.Food, cents(100), testNow.AddDate(0, -1, 0), ""),
	}
	// Zero and negative timeframes use the 3-month default.
	a := e.SpendingTrends(ledger, 0, testNow)
	b := e.SpendingTrends(ledger, DefaultTimeframeMonths, testNow)
	if !reflect.DeepEqual(a, b) {
		t.Error("timeframe 0 must behave like the default timeframe")
	}
}

func TestSpendingTrends_EmptyLedger(t *testing.T) {
	e := NewEngine(DefaultTargets())
	if got := e.SpendingTrends(nil, 3, testNow); len(got) != 0 {
		t.Errorf("got %d rows for empty ledger, want 0", len(got))
	}
}
