// Package worker consumes ledger events and runs the scheduled digest:
// created transactions are exported to the spreadsheet, budgets crossing the
// alert threshold are reported, and a monthly summary is written on schedule.
package worker

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/sheets"
)

// Source reads the persisted ledger. *storage.Gateway satisfies it.
type Source interface {
	LoadTransactions(ctx context.Context) ([]core.Transaction, error)
	LoadBudgets(ctx context.Context) ([]core.Budget, error)
}

// Alert reports a budget whose spend reached the threshold or exceeded the amount.
type Alert struct {
	Budget     core.Budget
	Spent      float64
	Percentage float64
	Status     core.ProgressStatus
	PeriodKey  string // YYYY-MM for monthly budgets, YYYY for yearly ones
}

// Notifier delivers budget alerts.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, a Alert) error

func (f NotifierFunc) Notify(ctx context.Context, a Alert) error { return f(ctx, a) }

type Option func(*Worker)

// WithExporter enables the spreadsheet export of created transactions and digests.
func WithExporter(e sheets.Exporter) Option { return func(w *Worker) { w.exporter = e } }

func WithNotifier(n Notifier) Option { return func(w *Worker) { w.notifier = n } }

// WithThreshold sets the percentage at which a budget alert fires.
func WithThreshold(pct float64) Option { return func(w *Worker) { w.threshold = pct } }

func WithClock(now func() time.Time) Option { return func(w *Worker) { w.now = now } }

func WithLogger(l *log.Logger) Option { return func(w *Worker) { w.logger = l } }

type Worker struct {
	source    Source
	exporter  sheets.Exporter
	notifier  Notifier
	threshold float64
	now       func() time.Time
	logger    *log.Logger

	mu sync.Mutex
	// last alerted status per budget and period, so an alert fires once per escalation
	alerted map[string]core.ProgressStatus
}

func New(source Source, opts ...Option) *Worker {
	w := &Worker{
		source:    source,
		threshold: core.WarningPercentage,
		now:       time.Now,
		logger:    log.Discard(),
		alerted:   map[string]core.ProgressStatus{},
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent(log.ComponentWorker)
	if w.notifier == nil {
		w.notifier = logNotifier{logger: w.logger}
	}
	return w
}

// HandleEvent processes one ledger event. A returned error makes the
// consumer requeue the message.
func (w *Worker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	w.logger.DebugContext(ctx, "Processing ledger event",
		log.FieldEventKind, ev.Kind, log.FieldVersion, ev.Version)

	switch ev.Kind {
	case amqp.TransactionCreated:
		t := *ev.Transaction
		if w.exporter != nil {
			ref, err := w.exporter.AppendTransaction(ctx, t)
			if err != nil {
				return fmt.Errorf("export transaction %s: %w", t.ID, err)
			}
			w.logger.InfoContext(ctx, "Transaction exported",
				log.FieldTransactionID, t.ID, log.FieldRange, ref)
		}
		if t.Type == core.Expense {
			return w.CheckBudgets(ctx, t.Category)
		}
	case amqp.BudgetCreated:
		return w.CheckBudgets(ctx, ev.Budget.Category)
	case amqp.BudgetDeleted:
		w.forget(ev.ID)
	}
	return nil
}

// CheckBudgets recomputes progress of every budget in category and notifies
// about those whose status escalated to warning or over since the last alert.
func (w *Worker) CheckBudgets(ctx context.Context, category string) error {
	transactions, err := w.source.LoadTransactions(ctx)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}
	budgets, err := w.source.LoadBudgets(ctx)
	if err != nil {
		return fmt.Errorf("load budgets: %w", err)
	}

	matching := budgets[:0:0]
	for _, b := range budgets {
		if b.Category == category {
			matching = append(matching, b)
		}
	}
	if len(matching) == 0 {
		return nil
	}

	now := w.now()
	for _, p := range aggregate.ComputeBudgetProgress(matching, transactions, now) {
		status := w.status(p)
		if status == core.StatusOK {
			continue
		}
		a := Alert{
			Budget:     p.Budget,
			Spent:      p.Spent,
			Percentage: p.Percentage,
			Status:     status,
			PeriodKey:  periodKey(p.Period, now),
		}
		if !w.escalate(a) {
			continue
		}
		if err := w.notifier.Notify(ctx, a); err != nil {
			w.logger.WarnContext(ctx, "Failed to deliver budget alert",
				log.FieldBudgetID, p.ID, log.FieldError, err)
		}
	}
	return nil
}

func (w *Worker) status(p core.BudgetProgress) core.ProgressStatus {
	switch {
	case p.IsOverBudget:
		return core.StatusOver
	case p.Percentage >= w.threshold:
		return core.StatusWarning
	default:
		return core.StatusOK
	}
}

func (w *Worker) escalate(a Alert) bool {
	key := a.Budget.ID + "@" + a.PeriodKey
	w.mu.Lock()
	defer w.mu.Unlock()
	prev, seen := w.alerted[key]
	if seen && (prev == a.Status || prev == core.StatusOver) {
		return false
	}
	w.alerted[key] = a.Status
	return true
}

func (w *Worker) forget(budgetID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for key := range w.alerted {
		if strings.HasPrefix(key, budgetID+"@") {
			delete(w.alerted, key)
		}
	}
}

func periodKey(p core.Period, ref time.Time) string {
	if p == core.Yearly {
		return ref.Format("2006")
	}
	return ref.Format("2006-01")
}

type logNotifier struct {
	logger *log.Logger
}

func (n logNotifier) Notify(ctx context.Context, a Alert) error {
	n.logger.WarnContext(ctx, "Budget alert",
		log.FieldBudgetID, a.Budget.ID,
		log.FieldCategory, a.Budget.Category,
		log.FieldPeriod, a.Budget.Period,
		log.FieldAmount, a.Budget.Amount,
		"spent", a.Spent,
		"percentage", a.Percentage,
		"status", a.Status,
		"period_key", a.PeriodKey)
	return nil
}
