// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data:
// JSON-or-form bodies, draft extraction and listing parameters.

package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fintrack/internal/aggregate"
	"fintrack/internal/confirm"
	"fintrack/internal/core"
)

// maxBodyBytes bounds request bodies read by RequestBodyParser.
const maxBodyBytes = 64 << 10

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing. A body over
// maxBodyBytes makes Parse fail with *http.MaxBytesError.
func NewRequestBodyParser(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// TransactionDraft extracts the transaction fields. Amount stays raw so that
// validation reports it like any other draft field.
func (p *RequestBodyParser) TransactionDraft() core.TransactionDraft {
	return core.TransactionDraft{
		Type:        p.Get("type"),
		Amount:      p.Get("amount"),
		Category:    p.Get("category"),
		Description: p.Get("description"),
		Date:        p.Get("date"),
	}
}

func (p *RequestBodyParser) BudgetDraft() core.BudgetDraft {
	return core.BudgetDraft{
		Category: p.Get("category"),
		Amount:   p.Get("amount"),
		Period:   p.Get("period"),
	}
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ListParams holds the filter and sort of a transaction listing.
type ListParams struct {
	Filter aggregate.TypeFilter
	Sort   aggregate.SortKey
}

// ParseListParams reads type and sort from the query string.
func ParseListParams(query url.Values) (ListParams, error) {
	filter, err := aggregate.ParseTypeFilter(query.Get("type"))
	if err != nil {
		return ListParams{Filter: aggregate.FilterAll, Sort: aggregate.SortByDate}, err
	}
	sort, err := aggregate.ParseSortKey(query.Get("sort"))
	if err != nil {
		return ListParams{Filter: filter, Sort: aggregate.SortByDate}, err
	}
	return ListParams{Filter: filter, Sort: sort}, nil
}

// withConfirmAnswer stores the request's confirm field, when present, in the
// context for confirm.ContextAnswer.
func withConfirmAnswer(r *http.Request) *http.Request {
	v := r.URL.Query().Get("confirm")
	if r.Method == http.MethodPost {
		v = r.FormValue("confirm")
	}
	if v == "" {
		return r
	}
	return r.WithContext(confirm.WithAnswer(r.Context(), confirm.ParseAnswer(v)))
}
