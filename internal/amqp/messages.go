package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// EventKind names a ledger change.
type EventKind string

const (
	TransactionCreated EventKind = "transaction.created"
	TransactionDeleted EventKind = "transaction.deleted"
	BudgetCreated      EventKind = "budget.created"
	BudgetDeleted      EventKind = "budget.deleted"
)

func (k EventKind) Valid() bool {
	switch k {
	case TransactionCreated, TransactionDeleted, BudgetCreated, BudgetDeleted:
		return true
	}
	return false
}

// LedgerEvent describes one committed ledger mutation. Created events carry
// the full record, deleted events only its ID. Version is the snapshot
// version the mutation produced.
type LedgerEvent struct {
	Kind        EventKind         `json:"kind"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
	Budget      *core.Budget      `json:"budget,omitempty"`
	ID          string            `json:"id,omitempty"`
	Version     uint64            `json:"version"`
	Timestamp   time.Time         `json:"timestamp"`
}

func NewTransactionCreated(t core.Transaction, version uint64) *LedgerEvent {
	return &LedgerEvent{Kind: TransactionCreated, Transaction: &t, ID: t.ID, Version: version, Timestamp: time.Now()}
}

func NewTransactionDeleted(id string, version uint64) *LedgerEvent {
	return &LedgerEvent{Kind: TransactionDeleted, ID: id, Version: version, Timestamp: time.Now()}
}

func NewBudgetCreated(b core.Budget, version uint64) *LedgerEvent {
	return &LedgerEvent{Kind: BudgetCreated, Budget: &b, ID: b.ID, Version: version, Timestamp: time.Now()}
}

func NewBudgetDeleted(id string, version uint64) *LedgerEvent {
	return &LedgerEvent{Kind: BudgetDeleted, ID: id, Version: version, Timestamp: time.Now()}
}

// ToJSON converts the event to JSON bytes
func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes an event and checks that its kind is known
// and that created events carry their record.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.Kind == TransactionCreated && e.Transaction == nil {
		return nil, fmt.Errorf("%s event without transaction", e.Kind)
	}
	if e.Kind == BudgetCreated && e.Budget == nil {
		return nil, fmt.Errorf("%s event without budget", e.Kind)
	}
	return &e, nil
}
