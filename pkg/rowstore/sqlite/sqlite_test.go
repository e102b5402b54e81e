package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/rowstore/rowstoretest"
	"github.com/agentstation/ordersync/pkg/rowstore/sqlite"
	"github.com/agentstation/ordersync/pkg/schema"
)

func open(t *testing.T, path string, opts ...sqlite.Option) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStoreContract(t *testing.T) {
	rowstoretest.Run(t, func(t *testing.T) rowstore.Store {
		return open(t, filepath.Join(t.TempDir(), "rows.db"))
	})
}

func TestSheetsAreIsolated(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rows.db")

	a := open(t, path, sqlite.WithSheet("a"))
	require.NoError(t, a.Append(ctx, schema.Row{"header-a"}))

	b := open(t, path, sqlite.WithSheet("b"))
	rows, err := b.ReadAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Contains(t, b.Name(), "#b")
}

func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "rows.db")

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Append(ctx, schema.Row{"header"}))
	require.NoError(t, first.InsertAt(ctx, schema.Row{"193", "📦"}, 1))
	require.NoError(t, first.Close())

	second := open(t, path)
	rows, err := second.ReadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, []schema.Row{{"header"}, {"193", "📦"}}, rows)
}
