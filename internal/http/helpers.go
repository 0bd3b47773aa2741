package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"fintrack/internal/confirm"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// errNotConfirmed marks a destructive action the user did not approve.
var errNotConfirmed = errors.New("action not confirmed")

// formatMoney renders an amount with two decimals, e.g. "$1,234.50" or "-$3.00".
func formatMoney(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.2f", v)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-$" + b.String() + frac
	}
	return "$" + b.String() + frac
}

// barWidth scales part against whole into a 0..100 CSS width, keeping small
// non-zero values visible.
func barWidth(part, whole float64) int {
	if whole <= 0 || part <= 0 {
		return 0
	}
	w := int(math.Round(part / whole * 100))
	if w < 2 {
		w = 2
	}
	if w > 100 {
		w = 100
	}
	return w
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// errorStatus maps ledger errors to an HTTP status and a user-facing message.
func errorStatus(err error) (int, string) {
	var verr *core.ValidationError
	var serr *storage.SaveError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, verr.Error()
	case errors.Is(err, errNotConfirmed), errors.Is(err, confirm.ErrNoAnswer):
		return http.StatusConflict, "Deletion was not confirmed"
	case errors.As(err, &serr):
		return http.StatusInternalServerError, "Could not save changes; nothing was modified"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}

type apiError struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to encode JSON response", log.FieldError, err)
	}
}

// writeJSONError writes err mapped through errorStatus and logs server-side failures.
func writeJSONError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldError, err, log.FieldPath, r.URL.Path)
	}
	body := apiError{Error: msg}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		body.Field = verr.Field
	}
	writeJSON(w, r, status, body)
}
