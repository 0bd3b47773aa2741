package core

// Category vocabularies offered by the input forms. They are advisory: nothing
// downstream rejects a category outside these lists.
var (
	ExpenseCategories = []string{
		"Food & Dining",
		"Transportation",
		"Shopping",
		"Entertainment",
		"Bills & Utilities",
		"Healthcare",
		"Education",
		"Travel",
		"Other",
	}

	IncomeCategories = []string{
		"Salary",
		"Freelance",
		"Investment",
		"Business",
		"Gift",
		"Other",
	}
)

// CategoriesFor returns a copy of the vocabulary for the given type.
func CategoriesFor(t TransactionType) []string {
	if t == Income {
		return append([]string(nil), IncomeCategories...)
	}
	return append([]string(nil), ExpenseCategories...)
}
