// Package orders defines the marketplace order data model consumed by the reconciler.
//
// Field names and JSON tags follow the Selling Partner Orders API so payloads decode
// directly into these types. Optional upstream fields are plain strings; an empty
// string means the source did not report a value.
package orders

import (
	"fmt"
	"strconv"

	"github.com/agentstation/ordersync/pkg/constants"
)

// Order represents a single marketplace order.
type Order struct {
	AmazonOrderID    string `json:"AmazonOrderId" yaml:"amazon_order_id"`                           // Unique order identifier
	OrderStatus      string `json:"OrderStatus" yaml:"order_status"`                                // Upstream status (Pending, Shipped, ...)
	PurchaseDate     string `json:"PurchaseDate" yaml:"purchase_date"`                              // Raw ISO-8601 purchase timestamp
	ShipDate         string `json:"ShipDate,omitempty" yaml:"ship_date,omitempty"`                  // Actual ship timestamp, if reported
	LatestShipDate   string `json:"LatestShipDate,omitempty" yaml:"latest_ship_date,omitempty"`     // End of the promised ship window
	EarliestShipDate string `json:"EarliestShipDate,omitempty" yaml:"earliest_ship_date,omitempty"` // Start of the promised ship window

	ShippingAddress *Address   `json:"ShippingAddress,omitempty" yaml:"shipping_address,omitempty"`
	BuyerInfo       *BuyerInfo `json:"BuyerInfo,omitempty" yaml:"buyer_info,omitempty"`
	OrderTotal      *Money     `json:"OrderTotal,omitempty" yaml:"order_total,omitempty"`

	// Items are attached by the reconciler after the per-order item fetch.
	Items []LineItem `json:"-" yaml:"items,omitempty"`
}

// Address is the subset of the shipping address written to the row store.
type Address struct {
	City          string `json:"City,omitempty" yaml:"city,omitempty"`
	StateOrRegion string `json:"StateOrRegion,omitempty" yaml:"state_or_region,omitempty"`
	PostalCode    string `json:"PostalCode,omitempty" yaml:"postal_code,omitempty"`
	CountryCode   string `json:"CountryCode,omitempty" yaml:"country_code,omitempty"`
}

// BuyerInfo holds buyer details.
type BuyerInfo struct {
	BuyerName  string `json:"BuyerName,omitempty" yaml:"buyer_name,omitempty"`
	BuyerEmail string `json:"BuyerEmail,omitempty" yaml:"buyer_email,omitempty"`
}

// Money is an amount with its ISO currency code.
type Money struct {
	Amount       string `json:"Amount" yaml:"amount"`
	CurrencyCode string `json:"CurrencyCode" yaml:"currency_code"`
}

// ID returns the order identifier.
func (o *Order) ID() string {
	return o.AmazonOrderID
}

// Status returns the upstream status or the sentinel when absent.
func (o *Order) Status() string {
	return orSentinel(o.OrderStatus)
}

// City returns the shipping city or the sentinel when absent.
func (o *Order) City() string {
	if o.ShippingAddress == nil {
		return constants.NotAvailable
	}
	return orSentinel(o.ShippingAddress.City)
}

// State returns the shipping state or region, or the sentinel when absent.
func (o *Order) State() string {
	if o.ShippingAddress == nil {
		return constants.NotAvailable
	}
	return orSentinel(o.ShippingAddress.StateOrRegion)
}

// BuyerName returns the buyer name or the sentinel when absent.
func (o *Order) BuyerName() string {
	if o.BuyerInfo == nil {
		return constants.NotAvailable
	}
	return orSentinel(o.BuyerInfo.BuyerName)
}

// Total renders the order total as "{Amount} {CurrencyCode}".
// A missing amount renders as the sentinel; a missing currency defaults to INR.
func (o *Order) Total() string {
	amount, currency := constants.NotAvailable, constants.DefaultCurrency
	if o.OrderTotal != nil {
		amount = orSentinel(o.OrderTotal.Amount)
		if o.OrderTotal.CurrencyCode != "" {
			currency = o.OrderTotal.CurrencyCode
		}
	}
	return fmt.Sprintf("%s %s", amount, currency)
}

// LineItem is one product line of an order.
type LineItem struct {
	OrderItemID      string `json:"OrderItemId,omitempty" yaml:"order_item_id,omitempty"`
	Title            string `json:"Title,omitempty" yaml:"title,omitempty"`
	QuantityOrdered  int    `json:"QuantityOrdered" yaml:"quantity_ordered"`
	ASIN             string `json:"ASIN,omitempty" yaml:"asin,omitempty"`
	SellerSKU        string `json:"SellerSKU,omitempty" yaml:"seller_sku,omitempty"`
	ShipDate         string `json:"ShipDate,omitempty" yaml:"ship_date,omitempty"`
	LatestShipDate   string `json:"LatestShipDate,omitempty" yaml:"latest_ship_date,omitempty"`
	EarliestShipDate string `json:"EarliestShipDate,omitempty" yaml:"earliest_ship_date,omitempty"`

	FulfillmentData *FulfillmentData `json:"FulfillmentData,omitempty" yaml:"fulfillment_data,omitempty"`
}

// FulfillmentData carries fulfillment details nested under an item.
type FulfillmentData struct {
	ShipDate string `json:"ShipDate,omitempty" yaml:"ship_date,omitempty"`
}

// ProductName returns the item title or the sentinel.
func (i *LineItem) ProductName() string {
	return orSentinel(i.Title)
}

// ProductID returns the ASIN or the sentinel.
func (i *LineItem) ProductID() string {
	return orSentinel(i.ASIN)
}

// Quantity renders the ordered quantity.
func (i *LineItem) Quantity() string {
	return strconv.Itoa(i.QuantityOrdered)
}

func orSentinel(s string) string {
	if s == "" {
		return constants.NotAvailable
	}
	return s
}

// IsSentinel reports whether a cell value carries no information.
func IsSentinel(value string) bool {
	return value == "" || value == constants.NotAvailable
}
