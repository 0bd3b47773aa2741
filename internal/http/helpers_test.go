package http

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"fintrack/internal/confirm"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{3, "$3.00"},
		{-3, "-$3.00"},
		{999.999, "$1,000.00"},
		{1234.5, "$1,234.50"},
		{1234567.891, "$1,234,567.89"},
	}
	for _, tt := range tests {
		if got := formatMoney(tt.in); got != tt.want {
			t.Errorf("formatMoney(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBarWidth(t *testing.T) {
	tests := []struct {
		part, whole float64
		want        int
	}{
		{0, 100, 0},
		{10, 0, 0},
		{50, 100, 50},
		{0.1, 100, 2},
		{150, 100, 100},
	}
	for _, tt := range tests {
		if got := barWidth(tt.part, tt.whole); got != tt.want {
			t.Errorf("barWidth(%v, %v) = %d, want %d", tt.part, tt.whole, got, tt.want)
		}
	}
}

func TestErrorStatus(t *testing.T) {
	_, verr := core.TransactionDraft{Type: "expense", Amount: "abc", Category: "x", Description: "y", Date: "2024-01-01"}.Parse()
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", verr, http.StatusUnprocessableEntity},
		{"refused", errNotConfirmed, http.StatusConflict},
		{"no answer", fmt.Errorf("confirm: %w", confirm.ErrNoAnswer), http.StatusConflict},
		{"save", &storage.SaveError{Key: "transactions", Err: errors.New("disk full")}, http.StatusInternalServerError},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, msg := errorStatus(tt.err)
			if got != tt.want {
				t.Errorf("errorStatus() = %d, want %d", got, tt.want)
			}
			if msg == "" {
				t.Error("errorStatus() returned empty message")
			}
		})
	}
}
