package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"fintrack/internal/core"
)

// Gateway encodes the ledger collections as JSON arrays in a KeyValueStore.
type Gateway struct {
	store           KeyValueStore
	transactionsKey string
	budgetsKey      string
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithKeys overrides the storage keys. Empty values keep the defaults.
func WithKeys(transactions, budgets string) Option {
	return func(g *Gateway) {
		if transactions != "" {
			g.transactionsKey = transactions
		}
		if budgets != "" {
			g.budgetsKey = budgets
		}
	}
}

func NewGateway(store KeyValueStore, opts ...Option) *Gateway {
	g := &Gateway{
		store:           store,
		transactionsKey: DefaultTransactionsKey,
		budgetsKey:      DefaultBudgetsKey,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) TransactionsKey() string { return g.transactionsKey }
func (g *Gateway) BudgetsKey() string      { return g.budgetsKey }

// LoadTransactions returns the stored transactions. An absent key yields an
// empty list; an undecodable payload, a null payload or a record missing a
// field yields a *LoadError wrapping ErrMalformedPayload.
func (g *Gateway) LoadTransactions(ctx context.Context) ([]core.Transaction, error) {
	list, payload, err := load[core.Transaction](ctx, g.store, g.transactionsKey, transactionFields)
	if err != nil {
		return nil, err
	}
	for i, t := range list {
		if err := checkTransaction(t); err != nil {
			return nil, malformed(g.transactionsKey, payload, fmt.Errorf("record %d: %w", i, err))
		}
	}
	return list, nil
}

func (g *Gateway) SaveTransactions(ctx context.Context, list []core.Transaction) error {
	return save(ctx, g.store, g.transactionsKey, list)
}

// LoadBudgets mirrors LoadTransactions for budgets.
func (g *Gateway) LoadBudgets(ctx context.Context) ([]core.Budget, error) {
	list, payload, err := load[core.Budget](ctx, g.store, g.budgetsKey, budgetFields)
	if err != nil {
		return nil, err
	}
	for i, b := range list {
		if err := checkBudget(b); err != nil {
			return nil, malformed(g.budgetsKey, payload, fmt.Errorf("record %d: %w", i, err))
		}
	}
	return list, nil
}

func (g *Gateway) SaveBudgets(ctx context.Context, list []core.Budget) error {
	return save(ctx, g.store, g.budgetsKey, list)
}

// Quarantine copies payload to "<key>.corrupt.<unix>" and returns that key.
func (g *Gateway) Quarantine(ctx context.Context, key string, payload []byte, at time.Time) (string, error) {
	qkey := fmt.Sprintf("%s.corrupt.%d", key, at.Unix())
	if err := g.store.Save(ctx, qkey, payload); err != nil {
		return "", &SaveError{Key: qkey, Err: err}
	}
	return qkey, nil
}

// Every stored record must carry these keys with a non-null value.
var (
	transactionFields = []string{"id", "type", "amount", "category", "description", "date"}
	budgetFields      = []string{"id", "category", "amount", "period"}
)

func load[T any](ctx context.Context, store KeyValueStore, key string, required []string) ([]T, []byte, error) {
	payload, found, err := store.Load(ctx, key)
	if err != nil {
		return nil, nil, &LoadError{Key: key, Err: err}
	}
	if !found {
		return []T{}, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()
	var list []T
	if err := dec.Decode(&list); err != nil {
		return nil, payload, malformed(key, payload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, payload, malformed(key, payload, errors.New("trailing data after array"))
	}
	if list == nil {
		return nil, payload, malformed(key, payload, errors.New("payload is null, want an array"))
	}
	if err := checkFields(payload, required); err != nil {
		return nil, payload, malformed(key, payload, err)
	}
	return list, payload, nil
}

func checkFields(payload []byte, required []string) error {
	var records []map[string]json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		return err
	}
	for i, rec := range records {
		for _, field := range required {
			if v, ok := rec[field]; !ok || string(v) == "null" {
				return fmt.Errorf("record %d: missing %s", i, field)
			}
		}
	}
	return nil
}

func save[T any](ctx context.Context, store KeyValueStore, key string, list []T) error {
	if list == nil {
		list = []T{}
	}
	payload, err := json.Marshal(list)
	if err != nil {
		return &SaveError{Key: key, Err: err}
	}
	if err := store.Save(ctx, key, payload); err != nil {
		return &SaveError{Key: key, Err: err}
	}
	return nil
}

func malformed(key string, payload []byte, err error) *LoadError {
	return &LoadError{Key: key, Payload: payload, Err: fmt.Errorf("%w: %v", ErrMalformedPayload, err)}
}

func checkTransaction(t core.Transaction) error {
	switch {
	case t.ID == "":
		return errors.New("missing id")
	case !t.Type.Valid():
		return fmt.Errorf("unknown type %q", t.Type)
	}
	return nil
}

func checkBudget(b core.Budget) error {
	switch {
	case b.ID == "":
		return errors.New("missing id")
	case !b.Period.Valid():
		return fmt.Errorf("unknown period %q", b.Period)
	}
	return nil
}
