// Package backend builds the KeyValueStore selected by configuration.
package backend

import (
	"context"

	"fintrack/internal/storage"
)

// Store is a KeyValueStore that can also enumerate its keys, which is how
// quarantined payloads are listed.
type Store interface {
	storage.KeyValueStore
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// CleanupFunc releases backend resources
type CleanupFunc func() error

// BackendResult contains the store and the hooks the caller must wire.
type BackendResult struct {
	Store   Store
	Cleanup CleanupFunc
	// Ping reports readiness; nil means always ready.
	Ping func(ctx context.Context) error
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Memory backend specific; empty means start empty
	SeedFile string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
