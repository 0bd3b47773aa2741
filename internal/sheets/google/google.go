package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/log"
	ports "fintrack/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and service account used by the exporter.
// Sheet names are base names; the year of each row is prefixed automatically.
type Config struct {
	SpreadsheetID   string
	SheetName       string // transactions, default "Transactions"
	DigestSheetName string // digests, default "Digest"
	CredentialsJSON string
	CredentialsFile string
}

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string
	digestBase    string
	logger        *log.Logger
}

var _ ports.Exporter = (*Exporter)(nil)

// New creates an exporter authenticated with the configured service account.
// Extra client options are appended after the credentials; tests use them to
// point the client at a fake endpoint.
func New(ctx context.Context, cfg Config, logger *log.Logger, opts ...goption.ClientOption) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if logger == nil {
		logger = log.Discard()
	}
	if len(opts) == 0 {
		creds, err := credentials(cfg)
		if err != nil {
			return nil, err
		}
		opts = []goption.ClientOption{
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope),
		}
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	e := &Exporter{
		svc:           svc,
		spreadsheetID: strings.TrimSpace(cfg.SpreadsheetID),
		sheetBase:     strings.TrimSpace(cfg.SheetName),
		digestBase:    strings.TrimSpace(cfg.DigestSheetName),
		logger:        logger.WithComponent(log.ComponentSheets),
	}
	if e.sheetBase == "" {
		e.sheetBase = "Transactions"
	}
	if e.digestBase == "" {
		e.digestBase = "Digest"
	}
	return e, nil
}

func credentials(cfg Config) ([]byte, error) {
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		return []byte(cfg.CredentialsJSON), nil
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// AppendTransaction appends one row to the transactions sheet of the
// transaction's year and returns the range the API reports as updated.
func (e *Exporter) AppendTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		return "", errors.New("transaction without id")
	}
	year := time.Now().Year()
	if d, err := t.Day(); err == nil {
		year = d.Year()
	}
	rng := fmt.Sprintf("%s!A:F", yearPrefixedName(e.sheetBase, year))

	resp, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, &gsheet.ValueRange{
		Values: [][]interface{}{transactionRow(t)},
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append %s: %w", rng, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}
	e.logger.Debug("Transaction exported", log.FieldTransactionID, t.ID, log.FieldRange, ref)
	return ref, nil
}

// WriteDigest appends a summary row followed by one row per budget to the
// digest sheet of the digest's year.
func (e *Exporter) WriteDigest(ctx context.Context, d ports.Digest) error {
	year := d.GeneratedAt.Year()
	if y, err := strconv.Atoi(strings.SplitN(d.Month, "-", 2)[0]); err == nil {
		year = y
	}
	rng := fmt.Sprintf("%s!A:G", yearPrefixedName(e.digestBase, year))

	_, err := e.svc.Spreadsheets.Values.Append(e.spreadsheetID, rng, &gsheet.ValueRange{
		Values: digestRows(d),
	}).ValueInputOption("USER_ENTERED").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	e.logger.Info("Digest written", log.FieldMonth, d.Month, log.FieldRange, rng, "budgets", len(d.Budgets))
	return nil
}

// transactionRow lays out: Date, Type, Category, Description, Amount, ID.
func transactionRow(t core.Transaction) []interface{} {
	return []interface{}{t.Date, string(t.Type), t.Category, t.Description, formatAmount(t.Amount), t.ID}
}

// digestRows lays out a summary row (Month, "TOTAL", income, expenses,
// balance, over-budget count, generated at) followed by
// (Month, category, period, amount, spent, percentage, status) per budget.
func digestRows(d ports.Digest) [][]interface{} {
	rows := make([][]interface{}, 0, len(d.Budgets)+1)
	rows = append(rows, []interface{}{
		d.Month, "TOTAL",
		formatAmount(d.Stats.TotalIncome),
		formatAmount(d.Stats.TotalExpenses),
		formatAmount(d.Stats.Balance),
		d.OverBudget(),
		d.GeneratedAt.UTC().Format(time.RFC3339),
	})
	for _, b := range d.Budgets {
		rows = append(rows, []interface{}{
			d.Month, b.Category, string(b.Period),
			formatAmount(b.Amount),
			formatAmount(b.Spent),
			strconv.FormatFloat(b.Percentage, 'f', 1, 64),
			string(b.Status()),
		})
	}
	return rows
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
