package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Snapshot is an immutable view of the ledger. Callers must not modify the
// slices; every mutation produces a new Snapshot with a higher Version.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
	Version      uint64
}

// EventPublisher receives an event after every committed mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event *amqp.LedgerEvent) error
}

// LoadWarning records a payload that could not be decoded at startup and
// was moved aside.
type LoadWarning struct {
	Key           string
	QuarantineKey string
	Err           error
}

func (w LoadWarning) String() string {
	return fmt.Sprintf("stored %s could not be read and were moved to %q; starting with an empty list (%v)", w.Key, w.QuarantineKey, w.Err)
}

// LedgerService serializes mutations and persists each one before making it
// visible: a failed save leaves the previous snapshot in place.
type LedgerService struct {
	gateway   *storage.Gateway
	publisher EventPublisher
	logger    *log.Logger
	newID     IDFunc
	now       func() time.Time

	mu       sync.Mutex
	snap     atomic.Pointer[Snapshot]
	warnings []LoadWarning
}

// Option configures a LedgerService.
type Option func(*LedgerService)

func WithPublisher(p EventPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

func WithIDFunc(f IDFunc) Option {
	return func(s *LedgerService) { s.newID = f }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

// Open loads both collections through gateway. Absent keys start empty.
// A malformed payload is copied to a quarantine key, reported through
// Warnings and replaced by an empty list; if the copy fails Open returns
// the error so that nothing can overwrite the original bytes.
func Open(ctx context.Context, gateway *storage.Gateway, opts ...Option) (*LedgerService, error) {
	s := &LedgerService{
		gateway: gateway,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(log.DefaultConfig())
	}
	s.logger = s.logger.WithComponent(log.ComponentLedger)

	transactions, err := gateway.LoadTransactions(ctx)
	if err != nil {
		if err := s.quarantineMalformed(ctx, err); err != nil {
			return nil, err
		}
		transactions = []core.Transaction{}
	}

	budgets, err := gateway.LoadBudgets(ctx)
	if err != nil {
		if err := s.quarantineMalformed(ctx, err); err != nil {
			return nil, err
		}
		budgets = []core.Budget{}
	}

	s.snap.Store(&Snapshot{Transactions: transactions, Budgets: budgets})
	s.logger.InfoContext(ctx, "Ledger loaded",
		"transactions", len(transactions),
		"budgets", len(budgets),
		"warnings", len(s.warnings))
	return s, nil
}

func (s *LedgerService) quarantineMalformed(ctx context.Context, err error) error {
	var lerr *storage.LoadError
	if !errors.As(err, &lerr) || !lerr.Malformed() {
		return fmt.Errorf("open ledger: %w", err)
	}

	s.logger.ErrorContext(ctx, "Stored payload is malformed",
		log.FieldKey, lerr.Key,
		log.FieldOperation, log.OpLoad,
		log.FieldError, lerr.Err)

	qkey, qerr := s.gateway.Quarantine(ctx, lerr.Key, lerr.Payload, s.now())
	if qerr != nil {
		return fmt.Errorf("open ledger: quarantine %q: %w", lerr.Key, qerr)
	}
	s.logger.WarnContext(ctx, "Malformed payload quarantined",
		log.FieldKey, lerr.Key,
		"quarantine_key", qkey,
		log.FieldOperation, log.OpQuarantine)

	s.warnings = append(s.warnings, LoadWarning{Key: lerr.Key, QuarantineKey: qkey, Err: lerr.Err})
	return nil
}

// Snapshot returns the current snapshot without locking.
func (s *LedgerService) Snapshot() *Snapshot {
	return s.snap.Load()
}

// Warnings returns the load incidents recorded by Open.
func (s *LedgerService) Warnings() []LoadWarning {
	return append([]LoadWarning(nil), s.warnings...)
}

// AddTransaction validates and stores a new transaction.
func (s *LedgerService) AddTransaction(ctx context.Context, draft core.TransactionDraft) (core.Transaction, error) {
	s.mu.Lock()
	cur := s.snap.Load()
	list, t, err := AddTransaction(cur.Transactions, draft, s.newID)
	if err != nil {
		s.mu.Unlock()
		return core.Transaction{}, err
	}
	if err := s.gateway.SaveTransactions(ctx, list); err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Failed to save transactions", log.FieldOperation, log.OpSave, log.FieldError, err)
		return core.Transaction{}, err
	}
	next := s.swap(cur, list, cur.Budgets)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction created",
		log.NewFields().WithTransaction(t.ID, string(t.Type), t.Category, t.Amount).ToSlice()...)
	s.publish(ctx, amqp.NewTransactionCreated(t, next.Version))
	return t, nil
}

// DeleteTransaction removes the transaction with id. It reports false, and
// stores nothing, when no such transaction exists.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	cur := s.snap.Load()
	list, removed := DeleteTransaction(cur.Transactions, id)
	if !removed {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.gateway.SaveTransactions(ctx, list); err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Failed to save transactions", log.FieldOperation, log.OpSave, log.FieldError, err)
		return false, err
	}
	next := s.swap(cur, list, cur.Budgets)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Transaction deleted", log.FieldTransactionID, id)
	s.publish(ctx, amqp.NewTransactionDeleted(id, next.Version))
	return true, nil
}

// AddBudget validates and stores a new budget.
func (s *LedgerService) AddBudget(ctx context.Context, draft core.BudgetDraft) (core.Budget, error) {
	s.mu.Lock()
	cur := s.snap.Load()
	list, b, err := AddBudget(cur.Budgets, draft, s.newID)
	if err != nil {
		s.mu.Unlock()
		return core.Budget{}, err
	}
	if err := s.gateway.SaveBudgets(ctx, list); err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Failed to save budgets", log.FieldOperation, log.OpSave, log.FieldError, err)
		return core.Budget{}, err
	}
	next := s.swap(cur, cur.Transactions, list)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Budget created",
		log.NewFields().WithBudget(b.ID, b.Category, string(b.Period), b.Amount).ToSlice()...)
	s.publish(ctx, amqp.NewBudgetCreated(b, next.Version))
	return b, nil
}

// DeleteBudget removes the budget with id, mirroring DeleteTransaction.
func (s *LedgerService) DeleteBudget(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	cur := s.snap.Load()
	list, removed := DeleteBudget(cur.Budgets, id)
	if !removed {
		s.mu.Unlock()
		return false, nil
	}
	if err := s.gateway.SaveBudgets(ctx, list); err != nil {
		s.mu.Unlock()
		s.logger.ErrorContext(ctx, "Failed to save budgets", log.FieldOperation, log.OpSave, log.FieldError, err)
		return false, err
	}
	next := s.swap(cur, cur.Transactions, list)
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Budget deleted", log.FieldBudgetID, id)
	s.publish(ctx, amqp.NewBudgetDeleted(id, next.Version))
	return true, nil
}

// swap must be called with s.mu held.
func (s *LedgerService) swap(cur *Snapshot, transactions []core.Transaction, budgets []core.Budget) *Snapshot {
	next := &Snapshot{Transactions: transactions, Budgets: budgets, Version: cur.Version + 1}
	s.snap.Store(next)
	return next
}

// publish is best-effort: the mutation is already durable.
func (s *LedgerService) publish(ctx context.Context, event *amqp.LedgerEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger event",
			log.FieldEventKind, event.Kind,
			log.FieldVersion, event.Version,
			log.FieldError, err)
	}
}
