package aggregate

import (
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func day(s string) time.Time {
	d, err := core.ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func tx(id string, typ core.TransactionType, amount float64, category, date string) core.Transaction {
	return core.Transaction{ID: id, Type: typ, Amount: amount, Category: category, Description: id, Date: date}
}

// randomLedger builds a reproducible mixed list spanning a dozen months.
func randomLedger(seed uint64, n int) []core.Transaction {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	cats := core.ExpenseCategories
	out := make([]core.Transaction, 0, n)
	for i := 0; i < n; i++ {
		typ := core.Expense
		if r.IntN(3) == 0 {
			typ = core.Income
		}
		amount := float64(r.IntN(100000)) / 100
		date := fmt.Sprintf("2023-%02d-%02d", r.IntN(12)+1, r.IntN(28)+1)
		out = append(out, tx(fmt.Sprintf("t%d", i), typ, amount, cats[r.IntN(len(cats))], date))
	}
	return out
}

func TestComputeStats_ScenarioA(t *testing.T) {
	list := []core.Transaction{
		tx("1", core.Income, 1000, "Salary", "2024-01-15"),
		tx("2", core.Expense, 200, "Food & Dining", "2024-01-20"),
	}
	assert.Equal(t, core.Stats{TotalIncome: 1000, TotalExpenses: 200, Balance: 800}, ComputeStats(list))
}

func TestComputeStats_BalanceIdentity(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		s := ComputeStats(randomLedger(seed, 50))
		assert.Equal(t, s.TotalIncome-s.TotalExpenses, s.Balance, "seed %d", seed)
	}
}

func TestBalanceAndNetSubtractTotals(t *testing.T) {
	list := []core.Transaction{
		tx("1", core.Income, 0.3, "Gift", "2024-04-01"),
		tx("2", core.Expense, 0.1, "Other", "2024-04-02"),
	}
	s := ComputeStats(list)
	assert.Equal(t, s.TotalIncome-s.TotalExpenses, s.Balance)

	trend := ComputeMonthlyTrend(list)
	require.Len(t, trend, 1)
	assert.Equal(t, trend[0].Income-trend[0].Expense, trend[0].Net)
}

func TestComputeStats_NegativeBalance(t *testing.T) {
	s := ComputeStats([]core.Transaction{tx("1", core.Expense, 50.25, "Travel", "2024-03-01")})
	assert.Equal(t, -50.25, s.Balance)
}

func TestComputeCategoryBreakdown(t *testing.T) {
	list := []core.Transaction{
		tx("1", core.Expense, 10, "Travel", "2024-01-01"),
		tx("2", core.Income, 500, "Salary", "2024-01-02"),
		tx("3", core.Expense, 5.5, "Food & Dining", "2024-01-03"),
		tx("4", core.Expense, 0.1, "Travel", "2024-01-04"),
		tx("5", core.Expense, 0.2, "Travel", "2024-01-05"),
	}
	got := ComputeCategoryBreakdown(list)
	assert.Equal(t, []core.CategoryAmount{
		{Name: "Travel", Value: 10.3},
		{Name: "Food & Dining", Value: 5.5},
	}, got)
}

func TestComputeCategoryBreakdown_Properties(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		list := randomLedger(seed, 80)
		got := ComputeCategoryBreakdown(list)

		seen := map[string]bool{}
		var total core.Sum
		for _, c := range got {
			assert.False(t, seen[c.Name], "duplicate category %s", c.Name)
			seen[c.Name] = true
			total.Add(c.Value)
		}
		assert.InDelta(t, ComputeStats(list).TotalExpenses, total.Value(), 1e-9, "seed %d", seed)
	}
}

func TestComputeMonthlyTrend_ScenarioC(t *testing.T) {
	var list []core.Transaction
	for i, m := range []string{"2023-08", "2023-09", "2023-10", "2023-11", "2023-12", "2024-01", "2024-02"} {
		list = append(list, tx(fmt.Sprint(i), core.Expense, 10, "Other", m+"-10"))
	}
	got := ComputeMonthlyTrend(list)
	require.Len(t, got, 6)

	months := make([]string, len(got))
	for i, m := range got {
		months[i] = m.Month
	}
	assert.Equal(t, []string{"2023-09", "2023-10", "2023-11", "2023-12", "2024-01", "2024-02"}, months)
}

func TestComputeMonthlyTrend_Properties(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		got := ComputeMonthlyTrend(randomLedger(seed, 60))
		assert.LessOrEqual(t, len(got), TrendMonths)
		for i, m := range got {
			assert.Equal(t, m.Income-m.Expense, m.Net)
			if i > 0 {
				assert.Less(t, got[i-1].Month, m.Month, "months must be strictly ascending")
			}
		}
	}
}

func TestComputeMonthlyTrend_GapsAndInvalidDates(t *testing.T) {
	list := []core.Transaction{
		tx("1", core.Income, 100, "Salary", "2024-05-01"),
		tx("2", core.Expense, 40, "Shopping", "2024-01-31"),
		tx("3", core.Expense, 99, "Shopping", "not-a-date"),
		tx("4", core.Expense, 10, "Shopping", "2024-05-20"),
	}
	assert.Equal(t, []core.MonthlyTrend{
		{Month: "2024-01", Income: 0, Expense: 40, Net: -40},
		{Month: "2024-05", Income: 100, Expense: 10, Net: 90},
	}, ComputeMonthlyTrend(list))
}

func TestComputeBudgetProgress_ScenarioB(t *testing.T) {
	budgets := []core.Budget{{ID: "b1", Category: "Food & Dining", Amount: 150, Period: core.Monthly}}
	list := []core.Transaction{tx("2", core.Expense, 200, "Food & Dining", "2024-01-20")}

	got := ComputeBudgetProgress(budgets, list, day("2024-01-25"))
	require.Len(t, got, 1)
	p := got[0]
	assert.Equal(t, 200.0, p.Spent)
	assert.Equal(t, 0.0, p.Remaining)
	assert.Equal(t, 100.0, p.Percentage)
	assert.True(t, p.IsOverBudget)
	assert.Equal(t, 50.0, p.Overage())
	assert.Equal(t, core.StatusOver, p.Status())
}

func TestComputeBudgetProgress_Periods(t *testing.T) {
	budgets := []core.Budget{
		{ID: "m", Category: "Travel", Amount: 100, Period: core.Monthly},
		{ID: "y", Category: "Travel", Amount: 1000, Period: core.Yearly},
	}
	list := []core.Transaction{
		tx("1", core.Expense, 20, "Travel", "2024-03-02"),
		tx("2", core.Expense, 30, "Travel", "2024-01-15"),
		tx("3", core.Expense, 500, "Travel", "2023-03-15"),
		tx("4", core.Income, 70, "Travel", "2024-03-03"),
		tx("5", core.Expense, 5, "Shopping", "2024-03-03"),
		tx("6", core.Expense, 1, "Travel", "garbage"),
	}
	got := ComputeBudgetProgress(budgets, list, day("2024-03-31"))
	require.Len(t, got, 2)

	assert.Equal(t, 20.0, got[0].Spent)
	assert.Equal(t, 80.0, got[0].Remaining)
	assert.Equal(t, 20.0, got[0].Percentage)
	assert.False(t, got[0].IsOverBudget)

	assert.Equal(t, 50.0, got[1].Spent)
	assert.Equal(t, 950.0, got[1].Remaining)
	assert.Equal(t, 5.0, got[1].Percentage)
}

func TestComputeBudgetProgress_ZeroAmount(t *testing.T) {
	budgets := []core.Budget{
		{ID: "a", Category: "Gifts", Amount: 0, Period: core.Monthly},
		{ID: "b", Category: "Unused", Amount: 0, Period: core.Monthly},
	}
	list := []core.Transaction{tx("1", core.Expense, 12, "Gifts", "2024-06-01")}

	got := ComputeBudgetProgress(budgets, list, day("2024-06-15"))
	require.Len(t, got, 2)
	assert.Equal(t, 100.0, got[0].Percentage)
	assert.True(t, got[0].IsOverBudget)
	assert.Equal(t, 0.0, got[0].Remaining)

	assert.Equal(t, 0.0, got[1].Percentage)
	assert.False(t, got[1].IsOverBudget)
}

func TestComputeBudgetProgress_Properties(t *testing.T) {
	budgets := make([]core.Budget, 0, len(core.ExpenseCategories))
	for i, c := range core.ExpenseCategories {
		period := core.Monthly
		if i%2 == 1 {
			period = core.Yearly
		}
		budgets = append(budgets, core.Budget{ID: c, Category: c, Amount: float64(i * 300), Period: period})
	}
	for seed := uint64(1); seed <= 20; seed++ {
		for _, p := range ComputeBudgetProgress(budgets, randomLedger(seed, 100), day("2023-06-15")) {
			assert.GreaterOrEqual(t, p.Remaining, 0.0)
			assert.LessOrEqual(t, p.Percentage, 100.0)
			assert.GreaterOrEqual(t, p.Percentage, 0.0)
			assert.Equal(t, p.Spent > p.Amount, p.IsOverBudget)
		}
	}
}

func TestScenarioD_EmptyInputs(t *testing.T) {
	ref := day("2024-01-01")
	assert.Equal(t, core.Stats{}, ComputeStats(nil))

	breakdown := ComputeCategoryBreakdown(nil)
	require.NotNil(t, breakdown)
	assert.Empty(t, breakdown)

	trend := ComputeMonthlyTrend(nil)
	require.NotNil(t, trend)
	assert.Empty(t, trend)

	progress := ComputeBudgetProgress(nil, nil, ref)
	require.NotNil(t, progress)
	assert.Empty(t, progress)

	d := BuildDashboard(nil, nil, ref, 5)
	assert.NotNil(t, d.Recent)
	assert.Empty(t, d.Recent)
}

func TestFunctionsDoNotMutateInput(t *testing.T) {
	list := randomLedger(7, 30)
	before := append([]core.Transaction(nil), list...)
	budgets := []core.Budget{{ID: "b", Category: "Travel", Amount: 10, Period: core.Yearly}}

	ComputeStats(list)
	ComputeCategoryBreakdown(list)
	ComputeMonthlyTrend(list)
	ComputeBudgetProgress(budgets, list, day("2023-05-05"))
	FilterAndSort(list, FilterAll, SortByAmount)
	d := BuildDashboard(list, budgets, day("2023-05-05"), 5)
	d.Recent[0].Amount = -1

	assert.Equal(t, before, list)
}

func TestBuildDashboard(t *testing.T) {
	list := randomLedger(3, 12)
	d := BuildDashboard(list, nil, day("2023-12-01"), 5)
	assert.Equal(t, list[:5], d.Recent)
	assert.Equal(t, ComputeStats(list), d.Stats)

	short := BuildDashboard(list[:2], nil, day("2023-12-01"), 5)
	assert.Len(t, short.Recent, 2)
}
