// Package services holds the ledger mutation functions and the LedgerService
// that owns the current snapshot.
package services

import (
	"github.com/google/uuid"

	"fintrack/internal/core"
)

// IDFunc generates identifiers for new records.
type IDFunc func() string

func (f IDFunc) next() string {
	if f == nil {
		return uuid.NewString()
	}
	return f()
}

// AddTransaction validates draft, assigns it an ID and returns a new list with
// the transaction prepended. list is not modified.
func AddTransaction(list []core.Transaction, draft core.TransactionDraft, newID IDFunc) ([]core.Transaction, core.Transaction, error) {
	t, err := draft.Parse()
	if err != nil {
		return list, core.Transaction{}, err
	}
	t.ID = newID.next()

	out := make([]core.Transaction, 0, len(list)+1)
	out = append(out, t)
	out = append(out, list...)
	return out, t, nil
}

// DeleteTransaction returns a new list without the transactions whose ID is
// id, and whether any was removed.
func DeleteTransaction(list []core.Transaction, id string) ([]core.Transaction, bool) {
	return without(list, func(t core.Transaction) bool { return t.ID == id })
}

// AddBudget validates draft, assigns it an ID and returns a new list with the
// budget prepended. Budgets sharing a category are allowed.
func AddBudget(list []core.Budget, draft core.BudgetDraft, newID IDFunc) ([]core.Budget, core.Budget, error) {
	b, err := draft.Parse()
	if err != nil {
		return list, core.Budget{}, err
	}
	b.ID = newID.next()

	out := make([]core.Budget, 0, len(list)+1)
	out = append(out, b)
	out = append(out, list...)
	return out, b, nil
}

func DeleteBudget(list []core.Budget, id string) ([]core.Budget, bool) {
	return without(list, func(b core.Budget) bool { return b.ID == id })
}

func without[T any](list []T, match func(T) bool) ([]T, bool) {
	out := make([]T, 0, len(list))
	removed := false
	for _, v := range list {
		if match(v) {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}
