package core

import (
	"errors"
	"testing"
)

func TestParseDay(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{" 2024-12-31 ", "2024-12-31", true},
		{"2024-03-01T10:00:00Z", "2024-03-01", true}, // timestamp, calendar part wins
		{"2024-02-30", "", false},
		{"15/01/2024", "", false},
		{"", "", false},
	}
	for i, tc := range cases {
		d, err := ParseDay(tc.in)
		if tc.ok {
			if err != nil || FormatDay(d) != tc.want {
				t.Fatalf("case %d expected %s, got %s (err=%v)", i, tc.want, FormatDay(d), err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("case %d expected ErrInvalidDate, got %v", i, err)
		}
	}
}

func TestTransactionDraftParse(t *testing.T) {
	good := TransactionDraft{
		Type:        "Expense",
		Amount:      "12,50",
		Category:    "Food & Dining",
		Description: "  Groceries ",
		Date:        "2024-01-20",
	}
	tx, err := good.Parse()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if tx.Type != Expense || tx.Amount != 12.5 || tx.Description != "Groceries" || tx.Date != "2024-01-20" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.ID != "" {
		t.Fatalf("draft parse must not assign an id, got %q", tx.ID)
	}

	bads := []struct {
		draft TransactionDraft
		field string
		err   error
	}{
		{TransactionDraft{Type: "transfer", Amount: "1", Category: "c", Description: "d", Date: "2024-01-01"}, "type", ErrInvalidType},
		{TransactionDraft{Type: "income", Amount: "", Category: "c", Description: "d", Date: "2024-01-01"}, "amount", ErrMissingAmount},
		{TransactionDraft{Type: "income", Amount: "x", Category: "c", Description: "d", Date: "2024-01-01"}, "amount", ErrInvalidAmount},
		{TransactionDraft{Type: "income", Amount: "1", Category: " ", Description: "d", Date: "2024-01-01"}, "category", ErrMissingCategory},
		{TransactionDraft{Type: "income", Amount: "1", Category: "c", Description: "", Date: "2024-01-01"}, "description", ErrMissingDescription},
		{TransactionDraft{Type: "income", Amount: "1", Category: "c", Description: "d", Date: "yesterday"}, "date", ErrInvalidDate},
	}
	for i, tc := range bads {
		_, err := tc.draft.Parse()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("case %d expected ValidationError, got %v", i, err)
		}
		if verr.Field != tc.field || !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %s/%v, got %s/%v", i, tc.field, tc.err, verr.Field, verr.Err)
		}
	}
}

func TestBudgetDraftParse(t *testing.T) {
	b, err := BudgetDraft{Category: "Travel", Amount: "150", Period: ""}.Parse()
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if b.Period != Monthly || b.Amount != 150 {
		t.Fatalf("unexpected budget: %+v", b)
	}

	if _, err := (BudgetDraft{Category: "Travel", Amount: "150", Period: "weekly"}).Parse(); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
	if _, err := (BudgetDraft{Category: "", Amount: "150", Period: "yearly"}).Parse(); !errors.Is(err, ErrMissingCategory) {
		t.Fatalf("expected ErrMissingCategory, got %v", err)
	}
	if _, err := (BudgetDraft{Category: "Travel", Amount: "", Period: "yearly"}).Parse(); !errors.Is(err, ErrMissingAmount) {
		t.Fatalf("expected ErrMissingAmount, got %v", err)
	}
}

func TestBudgetProgressStatus(t *testing.T) {
	cases := []struct {
		p    BudgetProgress
		want ProgressStatus
	}{
		{BudgetProgress{Percentage: 10}, StatusOK},
		{BudgetProgress{Percentage: 80}, StatusOK},
		{BudgetProgress{Percentage: 80.5}, StatusWarning},
		{BudgetProgress{Percentage: 100, IsOverBudget: true}, StatusOver},
	}
	for i, tc := range cases {
		if got := tc.p.Status(); got != tc.want {
			t.Fatalf("case %d expected %s, got %s", i, tc.want, got)
		}
	}

	over := BudgetProgress{Budget: Budget{Amount: 150}, Spent: 200, IsOverBudget: true}
	if over.Overage() != 50 {
		t.Fatalf("expected overage 50, got %v", over.Overage())
	}
	if (BudgetProgress{Budget: Budget{Amount: 150}, Spent: 100}).Overage() != 0 {
		t.Fatalf("expected zero overage under budget")
	}
}

func TestCategoriesForReturnsCopy(t *testing.T) {
	cats := CategoriesFor(Income)
	cats[0] = "mutated"
	if IncomeCategories[0] != "Salary" {
		t.Fatalf("CategoriesFor must not expose the shared slice")
	}
	if len(CategoriesFor(Expense)) != 9 {
		t.Fatalf("expected 9 expense categories")
	}
}
