package sheets

import (
	"context"
	"time"

	"fintrack/internal/core"
)

// Digest is the periodic ledger summary written by the worker.
type Digest struct {
	Month       string // YYYY-MM of the reference date
	GeneratedAt time.Time
	Stats       core.Stats
	Budgets     []core.BudgetProgress
}

// OverBudget counts budgets whose spend exceeds their amount.
func (d Digest) OverBudget() int {
	n := 0
	for _, b := range d.Budgets {
		if b.IsOverBudget {
			n++
		}
	}
	return n
}

// Ports for outbound adapters.
type (
	TransactionWriter interface {
		AppendTransaction(ctx context.Context, t core.Transaction) (rowRef string, err error)
	}

	DigestWriter interface {
		WriteDigest(ctx context.Context, d Digest) error
	}

	Exporter interface {
		TransactionWriter
		DigestWriter
	}
)
