package schema

import (
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/ordersync/pkg/errors"
)

// Layout names accepted by Resolve.
const (
	LayoutDefault = "default"
	LayoutLegacy  = "legacy"
)

// Default returns the 14-column serial-numbered layout.
func Default() *Schema {
	s, _ := New(LayoutDefault,
		Field{Serial, "Serial No."},
		Field{PrintStatus, "Print Status"},
		Field{PackStatus, "Pack Status"},
		Field{OrderStatus, "Order Status"},
		Field{ProductName, "Product Name"},
		Field{Quantity, "Quantity"},
		Field{OrderSummary, "Order Summary"},
		Field{OrderID, "Order ID"},
		Field{PurchaseDate, "Purchase Date"},
		Field{ShipDate, "Ship Date"},
		Field{BuyerName, "Buyer Name"},
		Field{ShipCity, "Ship City"},
		Field{ShipState, "Ship State"},
		Field{ProductID, "Product ID"},
	)
	return s
}

// Legacy returns the 13-column layout without serial or ship date, carrying the order total.
func Legacy() *Schema {
	s, _ := New(LayoutLegacy,
		Field{PrintStatus, "Print Status"},
		Field{PackStatus, "Pack Status"},
		Field{OrderStatus, "Order Status"},
		Field{ProductName, "Product Name"},
		Field{Quantity, "Quantity"},
		Field{OrderSummary, "Order Summary"},
		Field{OrderID, "Order ID"},
		Field{PurchaseDate, "Purchase Date"},
		Field{TotalAmount, "Total Amount"},
		Field{BuyerName, "Buyer Name"},
		Field{ShipCity, "Ship City"},
		Field{ShipState, "Ship State"},
		Field{ProductID, "Product ID"},
	)
	return s
}

// Parse decodes a YAML layout.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.WrapParse("yaml", "schema", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Load reads a YAML layout from path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("layout", path)
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = path
	}
	return s, nil
}

// Resolve maps a layout name or YAML file path to a schema.
func Resolve(layout string) (*Schema, error) {
	switch strings.ToLower(strings.TrimSpace(layout)) {
	case "", LayoutDefault:
		return Default(), nil
	case LayoutLegacy:
		return Legacy(), nil
	default:
		return Load(layout)
	}
}

// Marshal renders a schema as YAML.
func Marshal(s *Schema) ([]byte, error) {
	return yaml.Marshal(s)
}
