// Package reconciler reconciles recent marketplace orders into a row store.
//
// Each pass reads the whole store once, builds an immutable duplicate index,
// and then classifies every listed order as exactly one of:
//
//   - insert: the order id is unknown, one row per line item is written at the
//     top of the table, all sharing one newly allocated serial number
//   - patch: the order id is known, its stored purchase date is inside the
//     patch window, and a mutable field drifted
//   - skip: everything else
//
// Source failures degrade to empty results and store write failures skip the
// affected row; only failing to read the store at pass start is fatal.
package reconciler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/differ"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/format"
	"github.com/agentstation/ordersync/pkg/index"
	"github.com/agentstation/ordersync/pkg/logging"
	"github.com/agentstation/ordersync/pkg/orders"
	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/schema"
	"github.com/agentstation/ordersync/pkg/sources"
)

// Reconciler runs reconciliation passes.
type Reconciler interface {
	// Reconcile runs one pass. The returned result is never nil.
	Reconcile(ctx context.Context) (*Result, error)
}

type reconciler struct {
	cfg       Config
	source    sources.Source
	store     rowstore.Store
	schema    *schema.Schema
	formatter *format.Formatter
	differ    differ.Differ
	throttle  *Throttle
	now       func() time.Time
	observer  Observer
	newID     func() string
}

// New creates a Reconciler over src and store.
func New(cfg Config, src sources.Source, store rowstore.Store, opts ...Option) (Reconciler, error) {
	if src == nil {
		return nil, &errors.ValidationError{Field: "source", Message: "cannot be nil"}
	}
	if store == nil {
		return nil, &errors.ValidationError{Field: "store", Message: "cannot be nil"}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	newID := options.newID
	if newID == nil {
		newID = uuid.NewString
	}

	return &reconciler{
		cfg:       cfg,
		source:    src,
		store:     store,
		schema:    options.schema,
		formatter: cfg.Formatter(),
		differ:    options.differ,
		throttle: &Throttle{
			RowDelay:   cfg.RowDelay,
			BatchDelay: cfg.BatchDelay,
			BatchSize:  cfg.BatchSize,
			Sleep:      options.sleep,
		},
		now:      options.now,
		observer: options.observer,
		newID:    newID,
	}, nil
}

// pass holds the state of one reconciliation pass.
type pass struct {
	view       *index.View
	snapshot   []schema.Row
	inserted   int // rows inserted so far; snapshot positions shift by this much
	nextSerial int
	now        time.Time
	result     *Result
	logger     *zerolog.Logger
}

// Reconcile implements Reconciler.
func (r *reconciler) Reconcile(ctx context.Context) (*Result, error) {
	result := NewResult(r.newID())
	result.Source = r.source.ID().String()
	result.Store = r.store.Name()
	defer result.Finalize()

	ctx = logging.WithPass(ctx, result.PassID)
	logger := logging.FromContext(ctx)

	rows, err := rowstore.EnsureHeader(ctx, r.store, r.schema)
	if err != nil {
		logger.Error().Err(err).Str("store", r.store.Name()).Msg("Failed to read row store, aborting pass")
		return result, errors.WrapResource("read", "rowstore", r.store.Name(), err)
	}

	p := &pass{
		view:       index.NewView(index.Build(rows, r.schema)),
		snapshot:   rows,
		nextSerial: index.NextSerial(rows, r.schema, r.cfg.SerialFloor),
		now:        r.now(),
		result:     result,
		logger:     logger,
	}
	logger.Debug().
		Int("rows", len(rows)).
		Int("known_orders", p.view.Orders()).
		Int("next_serial", p.nextSerial).
		Msg("Built duplicate index")

	list, err := r.source.ListRecentOrders(ctx, r.cfg.Lookback)
	if err != nil {
		if ctx.Err() != nil {
			result.Canceled = true
			return result, fmt.Errorf("%w: %w", errors.ErrCanceled, ctx.Err())
		}
		fetchErr := asSourceFetch("list_orders", "", err)
		logger.Warn().Err(fetchErr).Msg("Listing orders failed, treating as empty")
		result.SourceErrors++
		result.Errors = append(result.Errors, fetchErr)
		list = nil
	}
	result.OrdersSeen = len(list)

	for i := range list {
		if err := ctx.Err(); err != nil {
			result.Canceled = true
			result.Metadata.NextSerial = p.nextSerial
			logger.Warn().Int("processed", i).Int("total", len(list)).Msg("Pass canceled")
			return result, fmt.Errorf("%w after %d of %d orders: %w", errors.ErrCanceled, i, len(list), err)
		}

		r.reconcileOrder(ctx, p, &list[i])
		_ = r.throttle.AfterOrder(ctx, i+1, len(list))
	}

	result.Metadata.NextSerial = p.nextSerial
	logger.Info().
		Int("orders", result.OrdersSeen).
		Int("rows_inserted", result.RowsInserted).
		Int("cells_patched", result.CellsPatched).
		Int("skipped", result.Skipped).
		Int("failed_writes", result.FailedWrites).
		Msg("Pass completed")

	return result, nil
}

// reconcileOrder classifies one order and applies its outcome.
// Writes for an order already under way are not canceled, so an order is never
// left half inserted because the pass was stopped.
func (r *reconciler) reconcileOrder(ctx context.Context, p *pass, o *orders.Order) {
	id := o.ID()
	if orders.IsSentinel(id) {
		p.result.Invalid++
		p.logger.Warn().Msg("Order without identifier ignored")
		return
	}

	ctx = logging.WithOrder(ctx, id)
	writeCtx := context.WithoutCancel(ctx)

	if !p.view.Seen(id) {
		r.insertOrder(ctx, writeCtx, p, o)
		return
	}

	if p.view.HasOrder(id) && r.patchEligible(p, o) {
		if r.patchOrder(ctx, writeCtx, p, o) {
			return
		}
	}

	p.result.Skipped++
	logging.FromContext(ctx).Debug().Msg("Skipped known order")
}

// patchEligible reports whether the stored purchase date is inside the patch window.
// An unreadable stored date falls back to the upstream purchase date.
func (r *reconciler) patchEligible(p *pass, o *orders.Order) bool {
	if r.cfg.PatchWindow <= 0 {
		return false
	}
	positions := p.view.Positions(o.ID())
	if len(positions) == 0 {
		return false
	}

	cell := r.schema.Get(p.snapshot[positions[0]], schema.PurchaseDate)
	purchased, err := r.formatter.ParseDisplayDate(cell)
	if err != nil {
		if purchased, err = format.ParseTimestamp(o.PurchaseDate); err != nil {
			p.logger.Debug().Str("order_id", o.ID()).Str("purchase_date", cell).Msg("Purchase date unreadable, not patching")
			return false
		}
	}
	return p.now.Sub(purchased) <= r.cfg.PatchWindow
}

// patchOrder writes drifted cells on every stored row of the order.
// It returns false when nothing drifted.
func (r *reconciler) patchOrder(ctx, writeCtx context.Context, p *pass, o *orders.Order) bool {
	id := o.ID()
	items, ok := r.fetchItems(ctx, p, id)

	rows := make(map[int]schema.Row)
	for _, pos := range p.view.Positions(id) {
		rows[pos+p.inserted] = p.snapshot[pos]
	}

	desired := r.desired(o, items)
	if !ok {
		// Without items the ship date cannot be derived; keep the stored one.
		delete(desired, schema.ShipDate)
	}
	cs := r.differ.Order(r.schema, id, rows, desired)
	if cs.IsEmpty() {
		return false
	}

	logger := logging.FromContext(ctx)
	logger.Info().Str("changes", cs.Summary()).Msg("Patching order")

	patched := false
	for _, rp := range cs.Patches {
		wrote := false
		for _, change := range rp.Changes {
			if err := r.store.PatchCell(writeCtx, rp.Row, change.Index, change.New); err != nil {
				werr := &errors.StoreWriteError{Operation: "patch", Row: rp.Row, Column: change.Index, OrderID: id, Err: err}
				logger.Error().Err(werr).Str("column", string(change.Column)).Msg("Cell patch failed")
				p.result.FailedWrites++
				p.result.Errors = append(p.result.Errors, werr)
				continue
			}

			patch := CellPatch{
				OrderID: id,
				Row:     rp.Row,
				Column:  change.Column,
				Index:   change.Index,
				Old:     change.Old,
				New:     change.New,
				Reason:  change.Reason,
			}
			p.result.CellsPatched++
			p.result.Patched = append(p.result.Patched, patch)
			if r.observer != nil {
				r.observer.CellPatched(ctx, patch)
			}
			logger.Debug().Int("row", rp.Row).Str("column", string(change.Column)).
				Str("old", change.Old).Str("new", change.New).Msg("Patched cell")
			wrote = true
		}
		if wrote {
			patched = true
			_ = r.throttle.AfterRow(ctx)
		}
	}

	if patched {
		p.result.OrdersPatched++
	} else {
		p.result.OrdersFailed++
	}
	return true
}

// insertOrder writes one row per line item, or a placeholder row for an order without items.
// Rows are inserted last item first so the order reads top-down once all rows are in place.
func (r *reconciler) insertOrder(ctx, writeCtx context.Context, p *pass, o *orders.Order) {
	id := o.ID()
	logger := logging.FromContext(ctx)
	items, _ := r.fetchItems(ctx, p, id)
	o.Items = items

	hasSerial := r.schema.Has(schema.Serial)
	serial := 0
	if hasSerial {
		serial = p.nextSerial
	}

	rows := r.buildRows(o, items, serial, hasSerial)
	written, failed := 0, 0
	var keys []string
	for i := len(rows) - 1; i >= 0; i-- {
		row := rows[i]
		productID := r.schema.Get(row, schema.ProductID)
		if len(items) > 0 && p.view.SeenItem(id, productID) {
			continue
		}

		if err := r.store.InsertAt(writeCtx, row, rowstore.FirstDataPosition); err != nil {
			werr := &errors.StoreWriteError{Operation: "insert", Row: rowstore.FirstDataPosition, OrderID: id, Err: err}
			logger.Error().Err(werr).Msg("Row insert failed")
			p.result.FailedWrites++
			p.result.Errors = append(p.result.Errors, werr)
			failed++
			continue
		}

		p.inserted++
		written++
		keys = append(keys, productID)
		inserted := InsertedRow{OrderID: id, Serial: serial, Position: rowstore.FirstDataPosition, Row: row}
		p.result.RowsInserted++
		p.result.Inserted = append(p.result.Inserted, inserted)
		if r.observer != nil {
			r.observer.RowInserted(ctx, inserted)
		}
		_ = r.throttle.AfterRow(ctx)
	}

	if written == 0 {
		if failed > 0 {
			p.result.OrdersFailed++
		}
		return
	}

	p.view.Delta.AddOrder(id)
	for _, key := range keys {
		if !orders.IsSentinel(key) {
			p.view.Delta.AddItem(id, key)
		}
	}
	p.result.OrdersInserted++
	if hasSerial {
		p.nextSerial++
	}
	logger.Info().Int("rows", written).Int("serial", serial).Msg("Inserted order")
}

// fetchItems degrades a failed item fetch to zero items and reports ok=false.
func (r *reconciler) fetchItems(ctx context.Context, p *pass, orderID string) ([]orders.LineItem, bool) {
	items, err := r.source.ListLineItems(ctx, orderID)
	if err != nil {
		fetchErr := asSourceFetch("list_items", orderID, err)
		logging.FromContext(ctx).Warn().Err(fetchErr).Msg("Item fetch failed, treating order as having no items")
		p.result.SourceErrors++
		p.result.Errors = append(p.result.Errors, fetchErr)
		return nil, false
	}
	return items, true
}

// asSourceFetch wraps err unless a source already reported it as a fetch error.
func asSourceFetch(op, orderID string, err error) error {
	if errors.IsSourceFetch(err) {
		return err
	}
	return errors.NewSourceFetchError(op, orderID, err)
}

// desired renders the mutable columns of an order.
func (r *reconciler) desired(o *orders.Order, items []orders.LineItem) map[schema.Column]string {
	return map[schema.Column]string{
		schema.OrderStatus: r.formatter.Status(o.Status()),
		schema.ShipDate:    r.formatter.ShipDate(o, items),
		schema.ShipCity:    o.City(),
		schema.ShipState:   o.State(),
	}
}

// buildRows renders the rows of a new order in item order.
func (r *reconciler) buildRows(o *orders.Order, items []orders.LineItem, serial int, hasSerial bool) []schema.Row {
	base := r.desired(o, items)
	base[schema.PrintStatus] = r.cfg.PrintStatus
	base[schema.PackStatus] = r.cfg.PackStatus
	base[schema.OrderID] = o.ID()
	base[schema.BuyerName] = o.BuyerName()
	base[schema.TotalAmount] = o.Total()
	base[schema.PurchaseDate] = constants.NotAvailable
	if o.PurchaseDate != "" {
		base[schema.PurchaseDate] = r.formatter.PurchaseDate(o.PurchaseDate)
	}
	if hasSerial {
		base[schema.Serial] = strconv.Itoa(serial)
	}

	if len(items) == 0 {
		values := clone(base)
		values[schema.ProductName] = constants.NoItemsTitle
		values[schema.Quantity] = "0"
		values[schema.OrderSummary] = constants.SingleItemSummary
		values[schema.ProductID] = constants.NotAvailable
		return []schema.Row{r.schema.Build(values)}
	}

	rows := make([]schema.Row, 0, len(items))
	for i := range items {
		values := clone(base)
		values[schema.ProductName] = items[i].ProductName()
		values[schema.Quantity] = items[i].Quantity()
		values[schema.OrderSummary] = r.formatter.OrderSummary(i+1, len(items))
		values[schema.ProductID] = items[i].ProductID()
		rows = append(rows, r.schema.Build(values))
	}
	return rows
}

func clone(m map[schema.Column]string) map[schema.Column]string {
	out := make(map[schema.Column]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
