package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Direction separates money coming in from money going out.
type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
)

// Frequency drives recurring transaction expansion.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidDirection = errors.New("invalid direction")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrInvalidDate      = errors.New("invalid date")
	ErrNoteTooLong      = errors.New("note too long (max 200 characters)")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrNotFound         = errors.New("not found")
)

type (
	// Transaction is a single immutable ledger entry. Entries are never
	// edited in place, only appended or deleted by ID.
	Transaction struct {
		ID        uuid.UUID
		Amount    Money
		Direction Direction
		Category  Category
		Date      time.Time
		Note      string
	}

	// RecurringTransaction is a template the recurring worker expands
	// into ledger entries when due.
	RecurringTransaction struct {
		ID        int64
		StartDate time.Time
		EndDate   time.Time // zero means open-ended
		Every     Frequency
		Amount    Money
		Direction Direction
		Category  Category
		Note      string
	}

	// Profile is the singleton per-user record. Writes are last-write-wins.
	Profile struct {
		CurrencySymbol  string
		MonthlyIncome   Money
		MonthlyBudget   Money
		GoalLabel       string
		PrimaryCategory Category
	}
)

func (d Direction) Validate() error {
	switch d {
	case DirectionIncome, DirectionExpense:
		return nil
	default:
		return ErrInvalidDirection
	}
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	default:
		return ErrInvalidFrequency
	}
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if err := t.Direction.Validate(); err != nil {
		return err
	}
	if !t.Category.ValidFor(t.Direction) {
		return ErrUnknownCategory
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if len(t.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

// NoteContains reports whether the note matches any of the given
// keywords, case-insensitively. Goal progress predicates rely on this
// substring heuristic; keep it in one place so it can be replaced with a
// structured tag later.
func (t Transaction) NoteContains(keywords ...string) bool {
	note := strings.ToLower(t.Note)
	for _, kw := range keywords {
		if strings.Contains(note, kw) {
			return true
		}
	}
	return false
}

func (rt RecurringTransaction) Validate() error {
	if rt.StartDate.IsZero() {
		return errors.New("invalid start date")
	}
	if !rt.EndDate.IsZero() && rt.EndDate.Before(rt.StartDate) {
		return errors.New("end date must not be before start date")
	}
	if err := rt.Every.Validate(); err != nil {
		return err
	}
	if err := rt.Amount.Validate(); err != nil {
		return err
	}
	if err := rt.Direction.Validate(); err != nil {
		return err
	}
	if !rt.Category.ValidFor(rt.Direction) {
		return ErrUnknownCategory
	}
	if len(rt.Note) > 200 {
		return ErrNoteTooLong
	}
	return nil
}

func (p Profile) Validate() error {
	if strings.TrimSpace(p.CurrencySymbol) == "" {
		return errors.New("empty currency symbol")
	}
	if p.MonthlyIncome.Cents < 0 {
		return ErrInvalidAmount
	}
	if p.MonthlyBudget.Cents < 0 {
		return ErrInvalidAmount
	}
	if p.PrimaryCategory != "" && !p.PrimaryCategory.ValidFor(DirectionExpense) {
		return ErrUnknownCategory
	}
	return nil
}

// Goal resolves the stored label to its tag.
func (p Profile) Goal() Goal {
	return GoalFromLabel(p.GoalLabel)
}
