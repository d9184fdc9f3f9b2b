package core

import "fmt"

// Category tags every transaction. The set is closed: the allocation and
// trend engines iterate over it, so unknown tags are rejected at the
// boundary instead of being carried through the math.
type Category string

const (
	Food           Category = "food"
	Transportation Category = "transportation"
	Housing        Category = "housing"
	Entertainment  Category = "entertainment"
	Shopping       Category = "shopping"
	Bills          Category = "bills"
	Health         Category = "health"
	Education      Category = "education"
	Travel         Category = "travel"
	// Miscellaneous doubles as the savings bucket: goal adjustments move
	// freed-up budget here, and savings-like income is tagged with it.
	Miscellaneous Category = "miscellaneous"

	Salary     Category = "salary"
	Freelance  Category = "freelance"
	Investment Category = "investment"
)

// ExpenseCategories returns the closed set of expense tags in base-table order.
func ExpenseCategories() []Category {
	return []Category{
		Food, Transportation, Housing, Entertainment, Shopping,
		Bills, Health, Education, Travel, Miscellaneous,
	}
}

// IncomeCategories returns the valid tags for income transactions.
// Miscellaneous is shared with the expense set so savings deposits can
// be recorded as income.
func IncomeCategories() []Category {
	return []Category{Salary, Freelance, Investment, Miscellaneous}
}

// TrendCategories returns the categories considered by spending trend
// analysis: the expense set minus the savings bucket.
func TrendCategories() []Category {
	return []Category{
		Food, Transportation, Housing, Entertainment, Shopping,
		Bills, Health, Education, Travel,
	}
}

// DiscretionaryCategories returns the tags counted as optional spending
// by the reduce-spending goal.
func DiscretionaryCategories() []Category {
	return []Category{Entertainment, Shopping, Travel}
}

// ValidFor reports whether the category may appear on a transaction with
// the given direction.
func (c Category) ValidFor(d Direction) bool {
	var set []Category
	switch d {
	case DirectionExpense:
		set = ExpenseCategories()
	case DirectionIncome:
		set = IncomeCategories()
	default:
		return false
	}
	for _, v := range set {
		if v == c {
			return true
		}
	}
	return false
}

// ParseCategory validates a raw string coming from the API or the database.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	for _, v := range ExpenseCategories() {
		if v == c {
			return c, nil
		}
	}
	for _, v := range IncomeCategories() {
		if v == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}
