package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newTestSQLite(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "fintrack.db")
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestSQLiteStoreLoadSave(t *testing.T) {
	s, _ := newTestSQLite(t)
	ctx := context.Background()

	_, found, err := s.Load(ctx, "transactions")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Save(ctx, "transactions", []byte(`[]`)))
	require.NoError(t, s.Save(ctx, "transactions", []byte(`[1]`)))

	raw, found, err := s.Load(ctx, "transactions")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "[1]", string(raw))
	require.NoError(t, s.Ping(ctx))
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	s, path := newTestSQLite(t)
	ctx := context.Background()
	g := NewGateway(s)

	budgets := []core.Budget{{ID: "b1", Category: "Food & Dining", Amount: 150, Period: core.Monthly}}
	require.NoError(t, g.SaveBudgets(ctx, budgets))
	require.NoError(t, s.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := NewGateway(reopened).LoadBudgets(ctx)
	require.NoError(t, err)
	assert.Equal(t, budgets, got)
}

func TestSQLiteStoreKeys(t *testing.T) {
	s, _ := newTestSQLite(t)
	ctx := context.Background()
	for _, k := range []string{"budgets", "budgets.corrupt.2", "budgets.corrupt.1", "transactions"} {
		require.NoError(t, s.Save(ctx, k, []byte("x")))
	}
	keys, err := s.Keys(ctx, "budgets.corrupt.")
	require.NoError(t, err)
	assert.Equal(t, []string{"budgets.corrupt.1", "budgets.corrupt.2"}, keys)
}
