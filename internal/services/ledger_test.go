package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func sequentialIDs() IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func sampleDraft() core.TransactionDraft {
	return core.TransactionDraft{Type: "expense", Amount: "200", Category: "Food & Dining", Description: "Groceries", Date: "2024-01-20"}
}

func TestAddTransactionPrependsWithoutMutating(t *testing.T) {
	orig := []core.Transaction{{ID: "a", Type: core.Income, Amount: 1000, Category: "Salary", Description: "Pay", Date: "2024-01-15"}}
	before := append([]core.Transaction(nil), orig...)

	list, tx, err := AddTransaction(orig, sampleDraft(), sequentialIDs())
	require.NoError(t, err)
	assert.Equal(t, "id-1", tx.ID)
	require.Len(t, list, 2)
	assert.Equal(t, tx, list[0])
	assert.Equal(t, orig[0], list[1])
	assert.Equal(t, before, orig)
}

func TestAddTransactionDefaultIDIsUUID(t *testing.T) {
	_, tx, err := AddTransaction(nil, sampleDraft(), nil)
	require.NoError(t, err)
	assert.Len(t, tx.ID, 36)
}

func TestAddTransactionRejectsInvalidDraft(t *testing.T) {
	orig := []core.Transaction{}
	draft := sampleDraft()
	draft.Amount = "lots"

	list, _, err := AddTransaction(orig, draft, nil)
	var verr *core.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "amount", verr.Field)
	assert.True(t, errors.Is(err, core.ErrInvalidAmount))
	assert.Empty(t, list)
}

func TestAddThenDeleteRestoresList(t *testing.T) {
	ids := sequentialIDs()
	var list []core.Transaction
	for i := 0; i < 4; i++ {
		var err error
		list, _, err = AddTransaction(list, sampleDraft(), ids)
		require.NoError(t, err)
	}

	withNew, tx, err := AddTransaction(list, sampleDraft(), ids)
	require.NoError(t, err)

	restored, removed := DeleteTransaction(withNew, tx.ID)
	assert.True(t, removed)
	assert.ElementsMatch(t, list, restored)
}

func TestDeleteMissingIsNoop(t *testing.T) {
	list := []core.Transaction{{ID: "a"}, {ID: "b"}}
	out, removed := DeleteTransaction(list, "zzz")
	assert.False(t, removed)
	assert.Equal(t, list, out)

	out[0].ID = "changed"
	assert.Equal(t, "a", list[0].ID, "result must be a copy")
}

func TestBudgetMutations(t *testing.T) {
	ids := sequentialIDs()
	list, b1, err := AddBudget(nil, core.BudgetDraft{Category: "Travel", Amount: "100"}, ids)
	require.NoError(t, err)
	assert.Equal(t, core.Monthly, b1.Period)

	list, b2, err := AddBudget(list, core.BudgetDraft{Category: "Travel", Amount: "1200", Period: "yearly"}, ids)
	require.NoError(t, err)
	assert.Equal(t, []string{b2.ID, b1.ID}, []string{list[0].ID, list[1].ID})

	_, _, err = AddBudget(list, core.BudgetDraft{Category: "Travel", Amount: "1", Period: "daily"}, ids)
	assert.ErrorIs(t, err, core.ErrInvalidPeriod)

	list, removed := DeleteBudget(list, b1.ID)
	assert.True(t, removed)
	assert.Equal(t, []core.Budget{b2}, list)
}
