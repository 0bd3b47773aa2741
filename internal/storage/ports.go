package storage

import "context"

// KeyValueStore is the durability boundary of the ledger. Payloads are
// opaque bytes; the Gateway owns their encoding.
type KeyValueStore interface {
	// Load returns the payload stored under key. found is false when the key
	// has never been saved.
	Load(ctx context.Context, key string) (payload []byte, found bool, err error)
	// Save replaces the payload stored under key.
	Save(ctx context.Context, key string, payload []byte) error
}

// Default keys of the two ledger collections.
const (
	DefaultTransactionsKey = "transactions"
	DefaultBudgetsKey      = "budgets"
)
