// Package rowstoretest holds the behavioural suite every row store must pass.
package rowstoretest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Factory returns an empty store. Cleanup is registered on t.
type Factory func(t *testing.T) rowstore.Store

// Run exercises the rowstore.Store contract against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Helper()

	t.Run("empty store reads empty", func(t *testing.T) {
		rows, err := newStore(t).ReadAll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("ensure header on empty store", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		s := schema.Default()

		rows, err := rowstore.EnsureHeader(ctx, store, s)
		require.NoError(t, err)
		require.Len(t, rows, 1)

		rows, err = rowstore.EnsureHeader(ctx, store, s)
		require.NoError(t, err)
		require.Len(t, rows, 1, "header is written once")
		assert.Equal(t, s.Header(), rows[0])
	})

	t.Run("insert at first data position is newest first", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)

		require.NoError(t, store.Append(ctx, schema.Row{"header"}))
		require.NoError(t, store.InsertAt(ctx, schema.Row{"old"}, 1))
		require.NoError(t, store.InsertAt(ctx, schema.Row{"new"}, 1))
		require.NoError(t, store.InsertAt(ctx, schema.Row{"tail"}, 3))

		rows, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []schema.Row{{"header"}, {"new"}, {"old"}, {"tail"}}, rows)
	})

	t.Run("insert out of range", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		require.NoError(t, store.Append(ctx, schema.Row{"header"}))

		err := store.InsertAt(ctx, schema.Row{"x"}, 5)
		require.Error(t, err)
		assert.ErrorIs(t, err, errors.ErrOutOfRange)
	})

	t.Run("patch cell", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		require.NoError(t, store.Append(ctx, schema.Row{"header", "h2"}))
		require.NoError(t, store.Append(ctx, schema.Row{"a", "b"}))

		require.NoError(t, store.PatchCell(ctx, 1, 1, "B"))
		require.NoError(t, store.PatchCell(ctx, 1, 3, "D"))

		rows, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, schema.Row{"a", "B", "", "D"}, rows[1])
		assert.Equal(t, schema.Row{"header", "h2"}, rows[0])

		err = store.PatchCell(ctx, 9, 0, "x")
		assert.ErrorIs(t, err, errors.ErrOutOfRange)
	})

	t.Run("rows are copied", func(t *testing.T) {
		ctx := context.Background()
		store := newStore(t)
		row := schema.Row{"a"}
		require.NoError(t, store.Append(ctx, row))
		row[0] = "mutated"

		rows, err := store.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "a", rows[0][0])
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := newStore(t).ReadAll(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}
