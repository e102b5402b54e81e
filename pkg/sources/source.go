// Package sources defines the order source contract consumed by the reconciler.
//
// A Source lists the orders created within a lookback window and the line items
// of a single order. Implementations live in internal/sources (the Selling
// Partner API client and a JSON fixture reader); Static in this package serves
// tests and dry runs.
//
// Example usage:
//
//	src := sources.NewStatic(orders...)
//	recent, err := src.ListRecentOrders(ctx, 24*time.Hour)
//	if err != nil {
//	    return err
//	}
package sources

import (
	"context"
	"slices"
	"time"

	"github.com/agentstation/ordersync/pkg/orders"
)

// ID represents the identifier of an order source.
type ID string

// String returns the string representation of a source ID.
func (id ID) String() string {
	return string(id)
}

// Known source IDs.
const (
	SPAPIID  ID = "spapi"
	FileID   ID = "file"
	StaticID ID = "static"
)

// IDs returns all known source IDs.
func IDs() []ID {
	return []ID{SPAPIID, FileID, StaticID}
}

// IsValid returns true if the ID is one of the defined constants.
func (id ID) IsValid() bool {
	return slices.Contains(IDs(), id)
}

// Source supplies orders and their line items.
type Source interface {
	// ID identifies the source in logs and metrics.
	ID() ID

	// ListRecentOrders returns orders created within since of now.
	ListRecentOrders(ctx context.Context, since time.Duration) ([]orders.Order, error)

	// ListLineItems returns the line items of one order.
	ListLineItems(ctx context.Context, orderID string) ([]orders.LineItem, error)
}
