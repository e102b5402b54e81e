package reconciler_test

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/pkg/orders"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/schema"
	"github.com/agentstation/ordersync/pkg/sources"
)

// now is the fixed pass time of every test.
var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

var errWrite = stderrors.New("quota exceeded")

// sleepRecorder records requested pauses without sleeping.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	hook   func()
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	hook := s.hook
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return ctx.Err()
}

func (s *sleepRecorder) count(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, got := range s.delays {
		if got == d {
			n++
		}
	}
	return n
}

// faultyStore wraps a store and fails selected writes.
type faultyStore struct {
	rowstore.Store
	readErr    error
	failInsert func(row schema.Row) bool
	failPatch  func(row, column int) bool
}

func (f *faultyStore) ReadAll(ctx context.Context) ([]schema.Row, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	return f.Store.ReadAll(ctx)
}

func (f *faultyStore) InsertAt(ctx context.Context, row schema.Row, position int) error {
	if f.failInsert != nil && f.failInsert(row) {
		return errWrite
	}
	return f.Store.InsertAt(ctx, row, position)
}

func (f *faultyStore) PatchCell(ctx context.Context, row, column int, value string) error {
	if f.failPatch != nil && f.failPatch(row, column) {
		return errWrite
	}
	return f.Store.PatchCell(ctx, row, column, value)
}

// recorder is an Observer collecting events.
type recorder struct {
	inserted []reconciler.InsertedRow
	patched  []reconciler.CellPatch
}

func (r *recorder) RowInserted(_ context.Context, row reconciler.InsertedRow) {
	r.inserted = append(r.inserted, row)
}

func (r *recorder) CellPatched(_ context.Context, patch reconciler.CellPatch) {
	r.patched = append(r.patched, patch)
}

func newReconciler(t *testing.T, cfg reconciler.Config, src sources.Source, store rowstore.Store, opts ...reconciler.Option) (reconciler.Reconciler, *sleepRecorder) {
	t.Helper()
	sleeper := &sleepRecorder{}
	opts = append([]reconciler.Option{
		reconciler.WithClock(func() time.Time { return now }),
		reconciler.WithSleeper(sleeper.sleep),
		reconciler.WithPassIDs(func() string { return "pass-test" }),
	}, opts...)
	r, err := reconciler.New(cfg, src, store, opts...)
	require.NoError(t, err)
	return r, sleeper
}

// order returns an order purchased purchasedAgo before now.
func order(id, status string, purchasedAgo time.Duration, items ...orders.LineItem) orders.Order {
	return orders.Order{
		AmazonOrderID:   id,
		OrderStatus:     status,
		PurchaseDate:    now.Add(-purchasedAgo).Format(time.RFC3339),
		ShippingAddress: &orders.Address{City: "Mumbai", StateOrRegion: "MAHARASHTRA"},
		BuyerInfo:       &orders.BuyerInfo{BuyerName: "Asha Rao"},
		OrderTotal:      &orders.Money{Amount: "499.00", CurrencyCode: "INR"},
		Items:           items,
	}
}

func item(title, asin string, qty int) orders.LineItem {
	return orders.LineItem{Title: title, ASIN: asin, QuantityOrdered: qty}
}

// storedRow builds a default-layout row; overrides replace individual cells.
func storedRow(serial, orderID, purchaseDate string, overrides map[schema.Column]string) schema.Row {
	values := map[schema.Column]string{
		schema.Serial:       serial,
		schema.PrintStatus:  "Printed",
		schema.PackStatus:   "Not Packed",
		schema.OrderStatus:  "Pending",
		schema.ProductName:  "Steel Water Bottle 1L",
		schema.Quantity:     "1",
		schema.OrderSummary: "Item 1 of 1",
		schema.OrderID:      orderID,
		schema.PurchaseDate: purchaseDate,
		schema.ShipDate:     "Pending",
		schema.BuyerName:    "Asha Rao",
		schema.ShipCity:     "Mumbai",
		schema.ShipState:    "MAHARASHTRA",
		schema.ProductID:    "B0TEST0001",
	}
	for k, v := range overrides {
		values[k] = v
	}
	return schema.Default().Build(values)
}

func tsv(rows []schema.Row) []byte {
	var b strings.Builder
	for _, row := range rows {
		b.WriteString(strings.Join(row, "\t"))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}

func column(t *testing.T, rows []schema.Row, c schema.Column) []string {
	t.Helper()
	s := schema.Default()
	out := make([]string, 0, len(rows))
	for _, row := range rows[1:] {
		out = append(out, s.Get(row, c))
	}
	return out
}
