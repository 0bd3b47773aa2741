//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"fintrack/internal/core"
	ports "fintrack/internal/sheets"
)

// Integration tests require a real spreadsheet shared with a service account.
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_ExportFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	cfg := Config{
		SpreadsheetID:   spreadsheetID,
		SheetName:       "Integration Transactions",
		DigestSheetName: "Integration Digest",
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}
	if cfg.CredentialsJSON == "" && cfg.CredentialsFile == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	e, err := New(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("Failed to create exporter: %v", err)
	}

	now := time.Now()
	ref, err := e.AppendTransaction(ctx, core.Transaction{
		ID:          "integration-" + now.Format("20060102150405"),
		Type:        core.Expense,
		Amount:      1.23,
		Category:    "Other",
		Description: "Integration test",
		Date:        core.FormatDay(now),
	})
	if err != nil {
		t.Fatalf("AppendTransaction: %v", err)
	}
	t.Logf("Appended row at %s", ref)

	if err := e.WriteDigest(ctx, ports.Digest{Month: now.Format("2006-01"), GeneratedAt: now}); err != nil {
		t.Fatalf("WriteDigest: %v", err)
	}
}
