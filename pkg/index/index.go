// Package index builds the duplicate index of a reconciliation pass.
//
// An Index is a snapshot of the row store taken when the pass starts and is
// never mutated afterwards. Orders and items written during the pass go into a
// separate Delta, and Seen consults both.
package index

import (
	"strconv"
	"strings"

	"github.com/agentstation/ordersync/pkg/orders"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Index is the immutable duplicate index built from a row store snapshot.
type Index struct {
	orderIDs  map[string]struct{}
	itemKeys  map[string]struct{}
	positions map[string][]int
	rows      int
}

// ItemKey is the composite key of one order line.
func ItemKey(orderID, productID string) string {
	return orderID + ":" + productID
}

// Build scans rows, skipping the header at position 0.
// Empty and sentinel order id cells are ignored, and a row only contributes an
// item key when its product id cell carries a value.
func Build(rows []schema.Row, s *schema.Schema) *Index {
	idx := &Index{
		orderIDs:  make(map[string]struct{}),
		itemKeys:  make(map[string]struct{}),
		positions: make(map[string][]int),
		rows:      len(rows),
	}

	for pos := 1; pos < len(rows); pos++ {
		row := rows[pos]
		orderID := strings.TrimSpace(s.Get(row, schema.OrderID))
		if orders.IsSentinel(orderID) {
			continue
		}

		idx.orderIDs[orderID] = struct{}{}
		idx.positions[orderID] = append(idx.positions[orderID], pos)

		productID := strings.TrimSpace(s.Get(row, schema.ProductID))
		if !orders.IsSentinel(productID) {
			idx.itemKeys[ItemKey(orderID, productID)] = struct{}{}
		}
	}

	return idx
}

// HasOrder reports whether the snapshot contains orderID.
func (idx *Index) HasOrder(orderID string) bool {
	_, ok := idx.orderIDs[orderID]
	return ok
}

// HasItem reports whether the snapshot contains the order line.
func (idx *Index) HasItem(orderID, productID string) bool {
	_, ok := idx.itemKeys[ItemKey(orderID, productID)]
	return ok
}

// Positions returns the snapshot row positions of orderID in ascending order.
func (idx *Index) Positions(orderID string) []int {
	pos := idx.positions[orderID]
	out := make([]int, len(pos))
	copy(out, pos)
	return out
}

// Orders returns the number of distinct orders in the snapshot.
func (idx *Index) Orders() int {
	return len(idx.orderIDs)
}

// Items returns the number of distinct order lines in the snapshot.
func (idx *Index) Items() int {
	return len(idx.itemKeys)
}

// Rows returns the number of rows scanned, header included.
func (idx *Index) Rows() int {
	return idx.rows
}

// OrderIDs returns the snapshot's order identifiers.
func (idx *Index) OrderIDs() []string {
	ids := make([]string, 0, len(idx.orderIDs))
	for id := range idx.orderIDs {
		ids = append(ids, id)
	}
	return ids
}

// Delta tracks orders and lines written during the current pass.
type Delta struct {
	orderIDs map[string]struct{}
	itemKeys map[string]struct{}
}

// NewDelta returns an empty delta.
func NewDelta() *Delta {
	return &Delta{
		orderIDs: make(map[string]struct{}),
		itemKeys: make(map[string]struct{}),
	}
}

// AddOrder records an order as written.
func (d *Delta) AddOrder(orderID string) {
	d.orderIDs[orderID] = struct{}{}
}

// AddItem records an order line as written.
func (d *Delta) AddItem(orderID, productID string) {
	d.itemKeys[ItemKey(orderID, productID)] = struct{}{}
}

// Len returns the number of orders recorded.
func (d *Delta) Len() int {
	return len(d.orderIDs)
}

// View combines a snapshot with the delta of the running pass.
type View struct {
	*Index
	Delta *Delta
}

// NewView wraps idx with an empty delta.
func NewView(idx *Index) *View {
	return &View{Index: idx, Delta: NewDelta()}
}

// Seen reports whether orderID is in the snapshot or was written this pass.
func (v *View) Seen(orderID string) bool {
	if v.HasOrder(orderID) {
		return true
	}
	_, ok := v.Delta.orderIDs[orderID]
	return ok
}

// SeenItem reports whether the order line is in the snapshot or was written this pass.
func (v *View) SeenItem(orderID, productID string) bool {
	if v.HasItem(orderID, productID) {
		return true
	}
	_, ok := v.Delta.itemKeys[ItemKey(orderID, productID)]
	return ok
}

// NextSerial returns max(max(existing)+1, floor). Non-numeric serial cells are ignored.
// Layouts without a serial column always return floor.
func NextSerial(rows []schema.Row, s *schema.Schema, floor int) int {
	if !s.Has(schema.Serial) {
		return floor
	}

	next := floor
	for pos := 1; pos < len(rows); pos++ {
		n, err := strconv.Atoi(strings.TrimSpace(s.Get(rows[pos], schema.Serial)))
		if err != nil {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	return next
}
