package worker

import (
	"context"
	"fmt"

	"fintrack/internal/aggregate"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// BuildDigest summarizes the calendar month containing the worker's clock:
// stats over that month's transactions and progress of every budget.
func (w *Worker) BuildDigest(ctx context.Context) (sheets.Digest, error) {
	transactions, err := w.source.LoadTransactions(ctx)
	if err != nil {
		return sheets.Digest{}, fmt.Errorf("load transactions: %w", err)
	}
	budgets, err := w.source.LoadBudgets(ctx)
	if err != nil {
		return sheets.Digest{}, fmt.Errorf("load budgets: %w", err)
	}

	now := w.now()
	month := now.Format("2006-01")
	var inMonth []core.Transaction
	for _, t := range transactions {
		if key, err := aggregate.MonthKey(t.Date); err == nil && key == month {
			inMonth = append(inMonth, t)
		}
	}

	return sheets.Digest{
		Month:       month,
		GeneratedAt: now,
		Stats:       aggregate.ComputeStats(inMonth),
		Budgets:     aggregate.ComputeBudgetProgress(budgets, transactions, now),
	}, nil
}

// RunDigest builds the digest and writes it to the exporter, if any.
func (w *Worker) RunDigest(ctx context.Context) error {
	d, err := w.BuildDigest(ctx)
	if err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "Monthly digest",
		log.FieldMonth, d.Month,
		"income", d.Stats.TotalIncome,
		"expenses", d.Stats.TotalExpenses,
		"balance", d.Stats.Balance,
		"over_budget", d.OverBudget())

	if w.exporter == nil {
		return nil
	}
	if err := w.exporter.WriteDigest(ctx, d); err != nil {
		return fmt.Errorf("write digest: %w", err)
	}
	return nil
}
