package differ

import (
	"sort"
	"strings"

	"github.com/agentstation/ordersync/pkg/format"
	"github.com/agentstation/ordersync/pkg/orders"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Differ computes cell changes between a stored row and freshly rendered values.
type Differ interface {
	// Row compares one stored row against the desired values of the mutable columns.
	Row(s *schema.Schema, stored schema.Row, desired map[schema.Column]string) []CellChange

	// Order compares every stored row of an order and returns the combined changeset.
	Order(s *schema.Schema, orderID string, rows map[int]schema.Row, desired map[schema.Column]string) *Changeset
}

type differ struct {
	mutable []schema.Column
	ignore  map[schema.Column]bool
}

// MutableColumns are the columns patched by default.
func MutableColumns() []schema.Column {
	return []schema.Column{schema.OrderStatus, schema.ShipDate, schema.ShipCity, schema.ShipState}
}

// New creates a Differ that patches MutableColumns unless configured otherwise.
func New(opts ...Option) Differ {
	d := &differ{
		mutable: MutableColumns(),
		ignore:  make(map[schema.Column]bool),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Row implements Differ.
func (d *differ) Row(s *schema.Schema, stored schema.Row, desired map[schema.Column]string) []CellChange {
	var changes []CellChange

	storedStatus := s.Get(stored, schema.OrderStatus)
	newStatus, hasStatus := desired[schema.OrderStatus]
	leavingPending := hasStatus && format.IsPendingStatus(storedStatus) && !format.IsPendingStatus(newStatus)

	for _, column := range d.mutable {
		if d.ignore[column] {
			continue
		}
		pos, ok := s.Index(column)
		if !ok {
			continue
		}
		next, ok := desired[column]
		if !ok {
			continue
		}
		old := s.Get(stored, column)

		var reason Reason
		switch column {
		case schema.ShipCity, schema.ShipState:
			reason, ok = addressChange(old, next, leavingPending)
		default:
			reason, ok = valueChange(old, next)
		}
		if !ok {
			continue
		}

		changes = append(changes, CellChange{
			Column: column,
			Index:  pos,
			Old:    old,
			New:    next,
			Reason: reason,
		})
	}

	return changes
}

// Order implements Differ. Rows are visited in ascending position.
func (d *differ) Order(s *schema.Schema, orderID string, rows map[int]schema.Row, desired map[schema.Column]string) *Changeset {
	cs := &Changeset{OrderID: orderID}
	for _, pos := range sortedPositions(rows) {
		if changes := d.Row(s, rows[pos], desired); len(changes) > 0 {
			cs.Patches = append(cs.Patches, RowPatch{OrderID: orderID, Row: pos, Changes: changes})
		}
	}
	return cs
}

func valueChange(old, next string) (Reason, bool) {
	if strings.TrimSpace(old) == strings.TrimSpace(next) {
		return "", false
	}
	return ReasonChanged, true
}

// addressChange never writes the sentinel over a concrete value and never rewrites an equal value.
func addressChange(old, next string, leavingPending bool) (Reason, bool) {
	old, next = strings.TrimSpace(old), strings.TrimSpace(next)
	if old == next || orders.IsSentinel(next) {
		return "", false
	}
	switch {
	case orders.IsSentinel(old):
		return ReasonFilled, true
	case leavingPending:
		return ReasonLeftPending, true
	default:
		return ReasonChanged, true
	}
}

func sortedPositions(rows map[int]schema.Row) []int {
	out := make([]int, 0, len(rows))
	for pos := range rows {
		out = append(out, pos)
	}
	sort.Ints(out)
	return out
}
