// Package memory is an in-process sheets.Exporter that keeps every exported
// row. The worker uses it when no spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"fintrack/internal/core"
	"fintrack/internal/sheets"
)

type Exporter struct {
	mu           sync.Mutex
	transactions []core.Transaction
	digests      []sheets.Digest
}

var _ sheets.Exporter = (*Exporter)(nil)

func New() *Exporter {
	return &Exporter{}
}

// AppendTransaction stores the transaction and returns a synthetic row reference.
func (e *Exporter) AppendTransaction(_ context.Context, t core.Transaction) (string, error) {
	if t.ID == "" {
		return "", fmt.Errorf("transaction without id")
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transactions = append(e.transactions, t)
	return fmt.Sprintf("mem:%d", len(e.transactions)), nil
}

func (e *Exporter) WriteDigest(_ context.Context, d sheets.Digest) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.digests = append(e.digests, d)
	return nil
}

// Transactions returns a copy of the exported transactions.
func (e *Exporter) Transactions() []core.Transaction {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]core.Transaction(nil), e.transactions...)
}

// Digests returns a copy of the written digests.
func (e *Exporter) Digests() []sheets.Digest {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]sheets.Digest(nil), e.digests...)
}
