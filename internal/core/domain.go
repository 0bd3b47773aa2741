package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"

	Monthly Period = "monthly"
	Yearly  Period = "yearly"
)

// DateLayout is the ISO calendar date format used for Transaction.Date.
const DateLayout = "2006-01-02"

type (
	TransactionType string

	Period string

	Transaction struct {
		ID          string          `json:"id"`
		Type        TransactionType `json:"type"`
		Amount      float64         `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        string          `json:"date"` // YYYY-MM-DD, no time or zone
	}

	Budget struct {
		ID       string  `json:"id"`
		Category string  `json:"category"`
		Amount   float64 `json:"amount"` // spending ceiling for the period
		Period   Period  `json:"period"`
	}

	// TransactionDraft is raw, unvalidated form input for a new transaction.
	TransactionDraft struct {
		Type        string
		Amount      string
		Category    string
		Description string
		Date        string
	}

	// BudgetDraft is raw, unvalidated form input for a new budget.
	BudgetDraft struct {
		Category string
		Amount   string
		Period   string
	}
)

var (
	ErrMissingAmount      = errors.New("amount is required")
	ErrInvalidAmount      = errors.New("amount must be a number")
	ErrMissingCategory    = errors.New("category is required")
	ErrMissingDescription = errors.New("description is required")
	ErrInvalidType        = errors.New("type must be income or expense")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
	ErrInvalidPeriod      = errors.New("period must be monthly or yearly")
)

// ValidationError reports the draft field that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (p Period) Valid() bool {
	return p == Monthly || p == Yearly
}

// Day parses the transaction date as a local calendar day.
func (t Transaction) Day() (time.Time, error) {
	return ParseDay(t.Date)
}

// ParseDay parses an ISO calendar date. Only the leading YYYY-MM-DD part is
// considered so that timestamps written by other clients still resolve to
// their calendar day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	d, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

// FormatDay renders t's calendar day in DateLayout.
func FormatDay(t time.Time) string {
	return t.Format(DateLayout)
}

// Parse validates the draft and returns the transaction it describes, without an ID.
func (d TransactionDraft) Parse() (Transaction, error) {
	typ := TransactionType(strings.ToLower(strings.TrimSpace(d.Type)))
	if !typ.Valid() {
		return Transaction{}, invalid("type", ErrInvalidType)
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Transaction{}, invalid("amount", err)
	}
	category := strings.TrimSpace(d.Category)
	if category == "" {
		return Transaction{}, invalid("category", ErrMissingCategory)
	}
	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		return Transaction{}, invalid("description", ErrMissingDescription)
	}
	if len(desc) > 200 {
		return Transaction{}, invalid("description", errors.New("description too long (max 200 characters)"))
	}
	day, err := ParseDay(d.Date)
	if err != nil {
		return Transaction{}, invalid("date", err)
	}
	return Transaction{
		Type:        typ,
		Amount:      amount,
		Category:    category,
		Description: desc,
		Date:        FormatDay(day),
	}, nil
}

// Parse validates the draft and returns the budget it describes, without an ID.
func (d BudgetDraft) Parse() (Budget, error) {
	category := strings.TrimSpace(d.Category)
	if category == "" {
		return Budget{}, invalid("category", ErrMissingCategory)
	}
	amount, err := ParseAmount(d.Amount)
	if err != nil {
		return Budget{}, invalid("amount", err)
	}
	period := Period(strings.ToLower(strings.TrimSpace(d.Period)))
	if period == "" {
		period = Monthly
	}
	if !period.Valid() {
		return Budget{}, invalid("period", ErrInvalidPeriod)
	}
	return Budget{Category: category, Amount: amount, Period: period}, nil
}
