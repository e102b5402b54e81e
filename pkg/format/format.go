// Package format turns raw order fields into the display strings written to the row store.
//
// Formatting never fails from the caller's point of view: a value that cannot be
// parsed is passed through unchanged, or replaced by a sentinel, and the parse error
// is only surfaced by the Parse* helpers.
package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/orders"
)

// DisplayLayout is the layout of purchase and ship date cells.
const DisplayLayout = "Jan 02, 2006 03:04 PM"

// Ship date placeholders used when no upstream date exists.
const (
	ShipPending   = "Pending"
	ShipShipped   = "Shipped (Date TBD)"
	ShipDelivered = "Delivered (Date TBD)"
	ShipCanceled  = "Canceled"
)

// timestampLayouts are tried in order. Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Formatter renders order fields for one sheet.
type Formatter struct {
	// Offset is added to UTC before rendering dates.
	Offset time.Duration
	// MultiItemMarker is appended to summaries of orders with more than one item.
	MultiItemMarker string
	// Statuses translates upstream statuses before they are written.
	Statuses StatusMap
}

// Default returns a formatter with IST display dates and the standard marker.
func Default() *Formatter {
	return &Formatter{
		Offset:          constants.DefaultDisplayOffset,
		MultiItemMarker: constants.DefaultMultiItemMarker,
		Statuses:        StatusMap{},
	}
}

func (f *Formatter) zone() *time.Location {
	return time.FixedZone("display", int(f.Offset/time.Second))
}

// ParseTimestamp parses an ISO-8601 timestamp. Values without a zone are UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, errors.NewFormatError("timestamp", raw, lastErr)
}

// PurchaseDate renders raw as a display date, or returns raw unchanged when it does not parse.
func (f *Formatter) PurchaseDate(raw string) string {
	t, err := ParseTimestamp(raw)
	if err != nil {
		return raw
	}
	return t.In(f.zone()).Format(DisplayLayout)
}

// ParseDisplayDate is the inverse of PurchaseDate and returns the UTC instant of a cell.
func (f *Formatter) ParseDisplayDate(cell string) (time.Time, error) {
	t, err := time.ParseInLocation(DisplayLayout, strings.TrimSpace(cell), f.zone())
	if err != nil {
		return time.Time{}, errors.NewFormatError("display date", cell, err)
	}
	return t.UTC(), nil
}

// ShipDate resolves the ship date cell for an order.
// Order level fields win over item fields, item fields over nested fulfillment
// data, and only then does the status decide a placeholder.
func (f *Formatter) ShipDate(o *orders.Order, items []orders.LineItem) string {
	for _, v := range []string{o.ShipDate, o.LatestShipDate, o.EarliestShipDate} {
		if v != "" {
			return f.PurchaseDate(v)
		}
	}

	for _, item := range items {
		for _, v := range []string{item.ShipDate, item.LatestShipDate, item.EarliestShipDate} {
			if v != "" {
				return f.PurchaseDate(v)
			}
		}
	}

	for _, item := range items {
		if item.FulfillmentData != nil && item.FulfillmentData.ShipDate != "" {
			return f.PurchaseDate(item.FulfillmentData.ShipDate)
		}
	}

	return ShipPlaceholder(o.OrderStatus)
}

// ShipPlaceholder maps an upstream status to the ship date shown when no date is known.
func ShipPlaceholder(status string) string {
	switch fold(status) {
	case "pending", "unshipped", "partiallyshipped":
		return ShipPending
	case "shipped":
		return ShipShipped
	case "delivered", "invoiceunconfirmed":
		return ShipDelivered
	case "canceled":
		return ShipCanceled
	default:
		return constants.NotAvailable
	}
}

// OrderSummary renders "Item i of n", with the multi-item marker when n > 1.
func (f *Formatter) OrderSummary(index, total int) string {
	summary := fmt.Sprintf("Item %d of %d", index, total)
	if total > 1 {
		summary += f.MultiItemMarker
	}
	return summary
}

// Status translates an upstream status through the status map.
func (f *Formatter) Status(raw string) string {
	return f.Statuses.Translate(raw)
}

var defaultFormatter = Default()

// FormatPurchaseDate renders raw with the default formatter.
func FormatPurchaseDate(raw string) string {
	return defaultFormatter.PurchaseDate(raw)
}

// ParseDisplayDate parses a cell written by the default formatter.
func ParseDisplayDate(cell string) (time.Time, error) {
	return defaultFormatter.ParseDisplayDate(cell)
}

// ResolveShipDate resolves a ship date with the default formatter.
func ResolveShipDate(o *orders.Order, items []orders.LineItem) string {
	return defaultFormatter.ShipDate(o, items)
}

// OrderSummary renders a summary with the default marker.
func OrderSummary(index, total int) string {
	return defaultFormatter.OrderSummary(index, total)
}
