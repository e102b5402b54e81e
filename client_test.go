package ordersync_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/orders"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/rowstore/memory"
	"github.com/agentstation/ordersync/pkg/schedule"
	"github.com/agentstation/ordersync/pkg/sources"
)

var noon = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func noSleep(context.Context, time.Duration) error { return nil }

type countingObserver struct {
	mu      sync.Mutex
	rows    int
	patches int
}

func (c *countingObserver) RowInserted(context.Context, reconciler.InsertedRow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rows++
}

func (c *countingObserver) CellPatched(context.Context, reconciler.CellPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.patches++
}

func testOrders() []orders.Order {
	return []orders.Order{
		{
			AmazonOrderID: "408-0000001-0000001",
			OrderStatus:   "Unshipped",
			PurchaseDate:  "2024-05-01T10:00:00Z",
			Items: []orders.LineItem{
				{ASIN: "B0A", Title: "Water Bottle", QuantityOrdered: 1},
				{ASIN: "B0B", Title: "Bottle Brush", QuantityOrdered: 2},
			},
		},
	}
}

func newClient(t *testing.T, at time.Time, store *memory.Store, opts ...ordersync.Option) ordersync.Client {
	t.Helper()
	quiet, err := schedule.NewQuietWindow("00:30", "05:30", "UTC")
	require.NoError(t, err)

	base := []ordersync.Option{
		ordersync.WithClock(func() time.Time { return at }),
		ordersync.WithSleeper(noSleep),
		ordersync.WithQuietWindow(quiet),
	}
	c, err := ordersync.New(sources.NewStatic(testOrders()...), store, append(base, opts...)...)
	require.NoError(t, err)
	return c
}

func TestSyncInsertsAndFiresHooks(t *testing.T) {
	store := memory.New()
	obs := &countingObserver{}
	c := newClient(t, noon, store, ordersync.WithObserver(obs))

	var inserted []string
	var completed []*reconciler.Result
	c.OnRowInserted(func(row reconciler.InsertedRow) { inserted = append(inserted, row.OrderID) })
	c.OnPassCompleted(func(r *reconciler.Result) { completed = append(completed, r) })

	result, err := c.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsInserted)
	assert.Equal(t, 1, result.OrdersInserted)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, []string{"408-0000001-0000001", "408-0000001-0000001"}, inserted)
	assert.Equal(t, 2, obs.rows)
	require.Len(t, completed, 1)
	assert.Same(t, result, completed[0])

	// A second pass finds the order and leaves the store alone.
	result, err = c.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.RowsInserted)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 3, store.Len())

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.Index.HasOrder("408-0000001-0000001"))
	assert.Equal(t, 194, snap.NextSerial)
}

func TestSyncRefusedInQuietWindow(t *testing.T) {
	store := memory.New()
	c := newClient(t, time.Date(2024, 5, 1, 2, 0, 0, 0, time.UTC), store)

	result, err := c.Sync(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, errors.ErrQuietWindow)
	assert.Equal(t, 0, store.Len())

	result, err = c.Sync(context.Background(), ordersync.SyncWithForce(true))
	require.NoError(t, err)
	assert.Equal(t, 2, result.RowsInserted)
}

func TestDryRunLeavesStoreUntouched(t *testing.T) {
	store := memory.New()
	obs := &countingObserver{}
	c := newClient(t, noon, store, ordersync.WithObserver(obs))

	hookRows := 0
	c.OnRowInserted(func(reconciler.InsertedRow) { hookRows++ })

	result, err := c.Sync(context.Background(), ordersync.SyncWithDryRun(true))
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Equal(t, "dry-run(memory)", result.Store)
	assert.Equal(t, 2, result.RowsInserted)
	assert.Contains(t, result.Summary(), "Dry run completed.")
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 2, hookRows)
	assert.Equal(t, 0, obs.rows)
}

func TestAutoSync(t *testing.T) {
	store := memory.New()
	c := newClient(t, noon, store, ordersync.WithAutoSyncInterval(10*time.Millisecond))

	done := make(chan *reconciler.Result, 8)
	c.OnPassCompleted(func(r *reconciler.Result) {
		select {
		case done <- r:
		default:
		}
	})

	require.NoError(t, c.AutoSyncOn())
	t.Cleanup(func() { _ = c.AutoSyncOff() })

	select {
	case r := <-done:
		assert.Equal(t, 2, r.RowsInserted)
	case <-time.After(5 * time.Second):
		t.Fatal("auto-sync never ran a pass")
	}

	require.NoError(t, c.AutoSyncOff())
	require.NoError(t, c.AutoSyncOff())
}

func TestNewValidation(t *testing.T) {
	_, err := ordersync.New(nil, memory.New())
	assert.True(t, errors.IsValidationError(err))

	_, err = ordersync.New(sources.NewStatic(), nil)
	assert.True(t, errors.IsValidationError(err))

	cfg := reconciler.DefaultConfig()
	cfg.Lookback = 0
	_, err = ordersync.New(sources.NewStatic(), memory.New(), ordersync.WithConfig(cfg))
	assert.True(t, errors.IsValidationError(err))

	_, err = ordersync.New(sources.NewStatic(), memory.New(), ordersync.WithAutoSyncInterval(0))
	assert.True(t, errors.IsValidationError(err))
}
