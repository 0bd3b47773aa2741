// Package aggregate derives dashboard statistics, category breakdowns,
// monthly trends and budget progress from transaction and budget lists.
//
// Every function here is pure: it reads its arguments, never mutates them,
// and returns freshly allocated results. Engine adds memoization on top.
package aggregate

import (
	"fmt"
	"slices"
	"time"

	"fintrack/internal/core"
)

// TrendMonths is the number of most recent months kept by ComputeMonthlyTrend.
const TrendMonths = 6

// ComputeStats sums income and expenses over the whole list.
func ComputeStats(transactions []core.Transaction) core.Stats {
	var income, expenses core.Sum
	for _, t := range transactions {
		switch t.Type {
		case core.Income:
			income.Add(t.Amount)
		case core.Expense:
			expenses.Add(t.Amount)
		}
	}
	return core.Stats{
		TotalIncome:   income.Value(),
		TotalExpenses: expenses.Value(),
		Balance:       income.Value() - expenses.Value(),
	}
}

// ComputeCategoryBreakdown groups expenses by category in first-seen order.
// Categories without expenses are omitted.
func ComputeCategoryBreakdown(transactions []core.Transaction) []core.CategoryAmount {
	index := map[string]int{}
	var sums []core.Sum
	out := []core.CategoryAmount{}
	for _, t := range transactions {
		if t.Type != core.Expense {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(out)
			index[t.Category] = i
			out = append(out, core.CategoryAmount{Name: t.Category})
			sums = append(sums, core.Sum{})
		}
		sums[i].Add(t.Amount)
	}
	for i := range out {
		out[i].Value = sums[i].Value()
	}
	return out
}

// MonthKey returns the YYYY-MM key of an ISO calendar date.
func MonthKey(date string) (string, error) {
	d, err := core.ParseDay(date)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04d-%02d", d.Year(), int(d.Month())), nil
}

// ComputeMonthlyTrend groups all transactions by calendar month, sorted
// ascending and truncated to the TrendMonths most recent months present.
// Months without transactions are not synthesized. Transactions with an
// unparseable date are skipped.
func ComputeMonthlyTrend(transactions []core.Transaction) []core.MonthlyTrend {
	type acc struct{ income, expense core.Sum }
	months := map[string]*acc{}
	for _, t := range transactions {
		key, err := MonthKey(t.Date)
		if err != nil {
			continue
		}
		a, ok := months[key]
		if !ok {
			a = &acc{}
			months[key] = a
		}
		if t.Type == core.Income {
			a.income.Add(t.Amount)
		} else {
			a.expense.Add(t.Amount)
		}
	}

	keys := make([]string, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	// YYYY-MM sorts lexicographically in date order
	slices.Sort(keys)
	if len(keys) > TrendMonths {
		keys = keys[len(keys)-TrendMonths:]
	}

	out := make([]core.MonthlyTrend, 0, len(keys))
	for _, k := range keys {
		a := months[k]
		out = append(out, core.MonthlyTrend{
			Month:   k,
			Income:  a.income.Value(),
			Expense: a.expense.Value(),
			Net:     a.income.Value() - a.expense.Value(),
		})
	}
	return out
}

// ComputeBudgetProgress computes spend for every budget in the period that
// contains ref: the same calendar month for monthly budgets, the same year
// for yearly ones.
//
// A budget with a non-positive amount has no meaningful ratio; its
// percentage is 100 when anything was spent and 0 otherwise.
func ComputeBudgetProgress(budgets []core.Budget, transactions []core.Transaction, ref time.Time) []core.BudgetProgress {
	out := make([]core.BudgetProgress, 0, len(budgets))
	for _, b := range budgets {
		var spent core.Sum
		for _, t := range transactions {
			if t.Type != core.Expense || t.Category != b.Category {
				continue
			}
			if inPeriod(t, b.Period, ref) {
				spent.Add(t.Amount)
			}
		}
		out = append(out, progress(b, spent.Value()))
	}
	return out
}

func inPeriod(t core.Transaction, period core.Period, ref time.Time) bool {
	d, err := t.Day()
	if err != nil {
		return false
	}
	if d.Year() != ref.Year() {
		return false
	}
	if period == core.Yearly {
		return true
	}
	return d.Month() == ref.Month()
}

func progress(b core.Budget, spent float64) core.BudgetProgress {
	p := core.BudgetProgress{
		Budget:       b,
		Spent:        spent,
		IsOverBudget: spent > b.Amount,
	}
	if remaining := b.Amount - spent; remaining > 0 {
		p.Remaining = remaining
	}
	switch {
	case b.Amount <= 0 && spent > 0:
		p.Percentage = 100
	case b.Amount <= 0:
		p.Percentage = 0
	default:
		p.Percentage = min(spent/b.Amount*100, 100)
	}
	return p
}

// BuildDashboard computes every aggregate of the overview page. recent is
// the number of leading transactions to include as the recent activity list.
func BuildDashboard(transactions []core.Transaction, budgets []core.Budget, ref time.Time, recent int) core.Dashboard {
	if recent < 0 || recent > len(transactions) {
		recent = len(transactions)
	}
	return core.Dashboard{
		Stats:             ComputeStats(transactions),
		CategoryBreakdown: ComputeCategoryBreakdown(transactions),
		MonthlyTrend:      ComputeMonthlyTrend(transactions),
		BudgetProgress:    ComputeBudgetProgress(budgets, transactions, ref),
		Recent:            append([]core.Transaction{}, transactions[:recent]...),
	}
}
