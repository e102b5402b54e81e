// Package schema describes the column layout of the row store.
//
// Every piece of reconciliation logic addresses cells through a Schema rather
// than through positional literals, so one engine serves every sheet layout.
// Two layouts ship with the package: Default (14 columns, serial numbered) and
// Legacy (13 columns, no serial or ship date, with the order total). Custom
// layouts load from YAML.
package schema

import (
	"fmt"

	"github.com/agentstation/ordersync/pkg/errors"
)

// Column identifies a logical field independent of its position.
type Column string

// Logical columns understood by the reconciler.
const (
	Serial       Column = "serial"
	PrintStatus  Column = "print_status"
	PackStatus   Column = "pack_status"
	OrderStatus  Column = "order_status"
	ProductName  Column = "product_name"
	Quantity     Column = "quantity"
	OrderSummary Column = "order_summary"
	OrderID      Column = "order_id"
	PurchaseDate Column = "purchase_date"
	ShipDate     Column = "ship_date"
	BuyerName    Column = "buyer_name"
	ShipCity     Column = "ship_city"
	ShipState    Column = "ship_state"
	ProductID    Column = "product_id"
	TotalAmount  Column = "total_amount"
)

// Known returns every column the reconciler knows how to fill.
func Known() []Column {
	return []Column{
		Serial, PrintStatus, PackStatus, OrderStatus, ProductName, Quantity,
		OrderSummary, OrderID, PurchaseDate, ShipDate, BuyerName, ShipCity,
		ShipState, ProductID, TotalAmount,
	}
}

// IsKnown reports whether c is a column the reconciler can fill.
func (c Column) IsKnown() bool {
	for _, k := range Known() {
		if k == c {
			return true
		}
	}
	return false
}

// Field binds a logical column to its header text.
type Field struct {
	Column Column `json:"column" yaml:"column"`
	Header string `json:"header" yaml:"header"`
}

// Row is one line of the row store, cells ordered by the schema.
type Row []string

// Clone returns a copy of the row.
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	copy(out, r)
	return out
}

// Schema is an ordered list of fields.
type Schema struct {
	Name    string  `json:"name" yaml:"name"`
	Columns []Field `json:"columns" yaml:"columns"`

	positions map[Column]int
}

// New builds a schema from fields and validates it.
func New(name string, fields ...Field) (*Schema, error) {
	s := &Schema{Name: name, Columns: fields}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that the layout is usable by the reconciler.
// An order id column is mandatory and no column may appear twice.
func (s *Schema) Validate() error {
	if len(s.Columns) == 0 {
		return errors.NewValidationError("columns", 0, "schema has no columns")
	}

	positions := make(map[Column]int, len(s.Columns))
	for i, f := range s.Columns {
		if !f.Column.IsKnown() {
			return errors.NewValidationError("column", string(f.Column), "unknown column")
		}
		if _, dup := positions[f.Column]; dup {
			return errors.NewValidationError("column", string(f.Column), "duplicate column")
		}
		positions[f.Column] = i
	}

	if _, ok := positions[OrderID]; !ok {
		return errors.NewValidationError("column", string(OrderID), "order id column is required")
	}

	s.positions = positions
	return nil
}

func (s *Schema) index() map[Column]int {
	if s.positions == nil {
		s.positions = make(map[Column]int, len(s.Columns))
		for i, f := range s.Columns {
			s.positions[f.Column] = i
		}
	}
	return s.positions
}

// Index returns the position of c and whether the layout has it.
func (s *Schema) Index(c Column) (int, bool) {
	i, ok := s.index()[c]
	return i, ok
}

// Has reports whether the layout contains c.
func (s *Schema) Has(c Column) bool {
	_, ok := s.Index(c)
	return ok
}

// Width is the number of cells in a row.
func (s *Schema) Width() int {
	return len(s.Columns)
}

// Header returns the header row.
func (s *Schema) Header() Row {
	row := make(Row, len(s.Columns))
	for i, f := range s.Columns {
		row[i] = f.Header
	}
	return row
}

// Get returns the cell for c, or "" when the layout lacks the column or the row is short.
func (s *Schema) Get(row Row, c Column) string {
	i, ok := s.Index(c)
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// Set writes value into the cell for c. Columns missing from the layout are ignored.
func (s *Schema) Set(row Row, c Column, value string) {
	if i, ok := s.Index(c); ok && i < len(row) {
		row[i] = value
	}
}

// Build lays values out in schema order. Columns without a value are left empty.
func (s *Schema) Build(values map[Column]string) Row {
	row := make(Row, len(s.Columns))
	for i, f := range s.Columns {
		row[i] = values[f.Column]
	}
	return row
}

// IsHeader reports whether row matches this layout's header.
func (s *Schema) IsHeader(row Row) bool {
	if len(row) == 0 {
		return false
	}
	i, _ := s.Index(OrderID)
	return i < len(row) && row[i] == s.Columns[i].Header
}

// String implements fmt.Stringer.
func (s *Schema) String() string {
	return fmt.Sprintf("%s (%d columns)", s.Name, len(s.Columns))
}
