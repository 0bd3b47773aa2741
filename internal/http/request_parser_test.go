package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fintrack/internal/aggregate"
	"fintrack/internal/confirm"
	"fintrack/internal/core"
)

func TestRequestBodyParser_Form(t *testing.T) {
	body := "type=expense&amount=12.50&category=Travel&description=Train%01+ticket&date=2024-03-01"
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.IsJSON() {
		t.Error("IsJSON() = true for form body")
	}

	want := core.TransactionDraft{
		Type:        "expense",
		Amount:      "12.50",
		Category:    "Travel",
		Description: "Train ticket",
		Date:        "2024-03-01",
	}
	if got := p.TransactionDraft(); got != want {
		t.Errorf("TransactionDraft() = %+v, want %+v", got, want)
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"category":"Food & Dining","amount":150,"period":"monthly","extra":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/budgets", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !p.IsJSON() {
		t.Error("IsJSON() = false for JSON body")
	}

	want := core.BudgetDraft{Category: "Food & Dining", Amount: "150", Period: "monthly"}
	if got := p.BudgetDraft(); got != want {
		t.Errorf("BudgetDraft() = %+v, want %+v", got, want)
	}
	if got := p.Get("extra"); got != "true" {
		t.Errorf("Get(extra) = %q, want true", got)
	}
	if got := p.Get("missing"); got != "" {
		t.Errorf("Get(missing) = %q, want empty", got)
	}
}

func TestRequestBodyParser_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{"amount":`))
	req.Header.Set("Content-Type", "application/json")

	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err == nil {
		t.Fatal("Parse() expected error for truncated JSON")
	}
	// the error is sticky
	if err := p.Parse(); err == nil {
		t.Error("second Parse() expected the same error")
	}
}

func TestRequestBodyParser_OversizedBody(t *testing.T) {
	body := "description=" + strings.Repeat("x", maxBodyBytes)
	req := httptest.NewRequest(http.MethodPost, "/transactions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	err := p.Parse()
	var tooLarge *http.MaxBytesError
	if !errors.As(err, &tooLarge) {
		t.Fatalf("Parse() error = %v, want *http.MaxBytesError", err)
	}
	if tooLarge.Limit != maxBodyBytes {
		t.Errorf("Limit = %d, want %d", tooLarge.Limit, maxBodyBytes)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/budgets", nil)

	p := NewRequestBodyParser(httptest.NewRecorder(), req)
	if err := p.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := p.BudgetDraft(); got != (core.BudgetDraft{}) {
		t.Errorf("BudgetDraft() = %+v, want zero", got)
	}
}

func TestParseListParams(t *testing.T) {
	tests := []struct {
		name       string
		query      url.Values
		wantFilter aggregate.TypeFilter
		wantSort   aggregate.SortKey
		wantErr    bool
	}{
		{"defaults", url.Values{}, aggregate.FilterAll, aggregate.SortByDate, false},
		{"income by amount", url.Values{"type": {"income"}, "sort": {"amount"}}, aggregate.FilterIncome, aggregate.SortByAmount, false},
		{"bad type", url.Values{"type": {"transfer"}}, aggregate.FilterAll, aggregate.SortByDate, true},
		{"bad sort keeps filter", url.Values{"type": {"expense"}, "sort": {"category"}}, aggregate.FilterExpense, aggregate.SortByDate, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseListParams(tt.query)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseListParams() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got.Filter != tt.wantFilter || got.Sort != tt.wantSort {
				t.Errorf("ParseListParams() = %+v, want %s/%s", got, tt.wantFilter, tt.wantSort)
			}
		})
	}
}

func TestWithConfirmAnswer(t *testing.T) {
	ask := func(r *http.Request) (bool, error) {
		return confirm.ContextAnswer{}.Confirm(r.Context(), confirm.DeleteBudget("b1"))
	}

	req := withConfirmAnswer(httptest.NewRequest(http.MethodDelete, "/budgets/b1/delete?confirm=yes", nil))
	if ok, err := ask(req); err != nil || !ok {
		t.Errorf("query confirm=yes: got %v, %v", ok, err)
	}

	post := httptest.NewRequest(http.MethodPost, "/budgets/b1/delete", strings.NewReader("confirm=no"))
	post.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if ok, err := ask(withConfirmAnswer(post)); err != nil || ok {
		t.Errorf("form confirm=no: got %v, %v", ok, err)
	}

	bare := withConfirmAnswer(httptest.NewRequest(http.MethodPost, "/budgets/b1/delete", nil))
	if _, err := ask(bare); err != confirm.ErrNoAnswer {
		t.Errorf("no answer: err = %v, want ErrNoAnswer", err)
	}
}

func TestSanitizeInput(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  hello  ", "hello"},
		{"a\x00b\x07c", "abc"},
		{"tab\there", "tab\there"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sanitizeInput(tt.in); got != tt.want {
			t.Errorf("sanitizeInput(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
