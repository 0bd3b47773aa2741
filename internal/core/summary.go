package core

// Stats is the all-time income/expense summary.
type Stats struct {
	TotalIncome   float64 `json:"totalIncome"`
	TotalExpenses float64 `json:"totalExpenses"`
	Balance       float64 `json:"balance"` // may be negative
}

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// MonthlyTrend is the income/expense total for one calendar month.
type MonthlyTrend struct {
	Month   string  `json:"month"` // YYYY-MM
	Income  float64 `json:"income"`
	Expense float64 `json:"expense"`
	Net     float64 `json:"net"`
}

// ProgressStatus classifies budget consumption for display.
type ProgressStatus string

const (
	StatusOK      ProgressStatus = "ok"
	StatusWarning ProgressStatus = "warning"
	StatusOver    ProgressStatus = "over"
)

// WarningPercentage is the consumption above which a budget is flagged.
const WarningPercentage = 80.0

// BudgetProgress is a budget together with its spend in the current period.
type BudgetProgress struct {
	Budget
	Spent        float64 `json:"spent"`
	Remaining    float64 `json:"remaining"`  // never negative
	Percentage   float64 `json:"percentage"` // clamped to 100
	IsOverBudget bool    `json:"isOverBudget"`
}

// Overage returns how far spend exceeds the budget, or 0.
func (p BudgetProgress) Overage() float64 {
	if !p.IsOverBudget {
		return 0
	}
	return p.Spent - p.Amount
}

func (p BudgetProgress) Status() ProgressStatus {
	switch {
	case p.IsOverBudget:
		return StatusOver
	case p.Percentage > WarningPercentage:
		return StatusWarning
	default:
		return StatusOK
	}
}

// Dashboard bundles every aggregate shown on the overview page.
type Dashboard struct {
	Stats             Stats            `json:"stats"`
	CategoryBreakdown []CategoryAmount `json:"categoryBreakdown"`
	MonthlyTrend      []MonthlyTrend   `json:"monthlyTrend"`
	BudgetProgress    []BudgetProgress `json:"budgetProgress"`
	Recent            []Transaction    `json:"recent"`
}
