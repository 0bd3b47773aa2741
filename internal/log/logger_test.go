package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("%q expected %v, got %v", in, want, got)
		}
	}
}

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentLedger, Output: &buf})
	l.Info("Transaction created", FieldTransactionID, "abc")
	out := buf.String()
	if !strings.Contains(out, "component=ledger") || !strings.Contains(out, "transaction_id=abc") {
		t.Fatalf("unexpected output: %s", out)
	}

	buf.Reset()
	l.WithComponent(ComponentStorage).Warn("Payload quarantined")
	if !strings.Contains(buf.String(), "component=storage") {
		t.Fatalf("expected storage component, got %s", buf.String())
	}
}

func TestFromContextFallsBack(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
	l := Discard()
	if FromContext(NewContext(context.Background(), l)) != l {
		t.Fatalf("expected logger from context")
	}
}

func TestContextLoggerCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentHTTP, Output: &buf})
	ctx := NewContext(context.Background(), l.With(NewFields().WithRequestID("req-1").ToSlice()...))
	FromContext(ctx).Info("inside")
	if !strings.Contains(buf.String(), "request_id=req-1") {
		t.Fatalf("expected request id in log, got %s", buf.String())
	}
}

func TestStructuredLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(New(Config{Output: &buf}))
	r := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)

	sl.LogHTTPEnd(context.Background(), r, 503, 3, "10.0.0.1")
	if !strings.Contains(buf.String(), "level=ERROR") {
		t.Fatalf("expected error level, got %s", buf.String())
	}

	buf.Reset()
	sl.LogError(context.Background(), "Save failed", errors.New("disk full"), ComponentStorage, OpSave, nil)
	if !strings.Contains(buf.String(), "error=\"disk full\"") {
		t.Fatalf("expected error field, got %s", buf.String())
	}
}
