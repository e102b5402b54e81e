package format_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/format"
	"github.com/agentstation/ordersync/pkg/orders"
)

func TestFormatPurchaseDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"utc", "2024-05-01T10:00:00Z", "May 01, 2024 03:30 PM"},
		{"fractional seconds", "2024-05-01T10:00:00.123Z", "May 01, 2024 03:30 PM"},
		{"offset converted to utc first", "2024-05-01T23:45:00+05:30", "May 01, 2024 11:45 PM"},
		{"zone-less is utc", "2024-05-01T20:00:00", "May 02, 2024 01:30 AM"},
		{"unparseable passes through", "yesterday", "yesterday"},
		{"empty passes through", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format.FormatPurchaseDate(tt.raw))
		})
	}
}

func TestParseDisplayDate(t *testing.T) {
	got, err := format.ParseDisplayDate("May 01, 2024 03:30 PM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got)

	_, err = format.ParseDisplayDate("N/A")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFormat)
}

func TestCustomOffset(t *testing.T) {
	f := format.Default()
	f.Offset = 0

	assert.Equal(t, "May 01, 2024 10:00 AM", f.PurchaseDate("2024-05-01T10:00:00Z"))
	got, err := f.ParseDisplayDate("May 01, 2024 10:00 AM")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC), got)
}

func TestResolveShipDate(t *testing.T) {
	const raw = "2024-05-02T04:30:00Z"
	const formatted = "May 02, 2024 10:00 AM"

	tests := []struct {
		name  string
		order orders.Order
		items []orders.LineItem
		want  string
	}{
		{
			name:  "order ship date",
			order: orders.Order{ShipDate: raw, LatestShipDate: "2030-01-01T00:00:00Z"},
			want:  formatted,
		},
		{
			name:  "order latest ship date before items",
			order: orders.Order{LatestShipDate: raw},
			items: []orders.LineItem{{ShipDate: "2030-01-01T00:00:00Z"}},
			want:  formatted,
		},
		{
			name:  "item fields before fulfillment data",
			order: orders.Order{OrderStatus: "Shipped"},
			items: []orders.LineItem{
				{FulfillmentData: &orders.FulfillmentData{ShipDate: "2030-01-01T00:00:00Z"}},
				{EarliestShipDate: raw},
			},
			want: formatted,
		},
		{
			name:  "fulfillment data",
			order: orders.Order{OrderStatus: "Shipped"},
			items: []orders.LineItem{{FulfillmentData: &orders.FulfillmentData{ShipDate: raw}}},
			want:  formatted,
		},
		{"pending placeholder", orders.Order{OrderStatus: "PENDING"}, nil, "Pending"},
		{"unshipped placeholder", orders.Order{OrderStatus: "Unshipped"}, nil, "Pending"},
		{"partially shipped placeholder", orders.Order{OrderStatus: "PartiallyShipped"}, nil, "Pending"},
		{"shipped placeholder", orders.Order{OrderStatus: "Shipped"}, nil, "Shipped (Date TBD)"},
		{"delivered placeholder", orders.Order{OrderStatus: "InvoiceUnconfirmed"}, nil, "Delivered (Date TBD)"},
		{"canceled placeholder", orders.Order{OrderStatus: "Canceled"}, nil, "Canceled"},
		{"unknown status", orders.Order{OrderStatus: "Mystery"}, nil, "N/A"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format.ResolveShipDate(&tt.order, tt.items))
		})
	}
}

func TestOrderSummary(t *testing.T) {
	assert.Equal(t, "Item 1 of 1", format.OrderSummary(1, 1))
	assert.Equal(t, "Item 2 of 3 📦 SAME ORDER", format.OrderSummary(2, 3))

	f := format.Default()
	f.MultiItemMarker = ""
	assert.Equal(t, "Item 1 of 2", f.OrderSummary(1, 2))
}

func TestStatusMap(t *testing.T) {
	legacy, err := format.StatusPreset("legacy")
	require.NoError(t, err)
	assert.Equal(t, "Ordered", legacy.Translate("Shipped"))
	assert.Equal(t, "Ordered", legacy.Translate("SHIPPED"))
	assert.Equal(t, "Pending", legacy.Translate("Pending"))

	none, err := format.StatusPreset("")
	require.NoError(t, err)
	assert.Equal(t, "Shipped", none.Translate("Shipped"))

	_, err = format.StatusPreset("bogus")
	assert.True(t, errors.IsValidationError(err))
}

func TestIsPendingStatus(t *testing.T) {
	assert.True(t, format.IsPendingStatus("Pending"))
	assert.True(t, format.IsPendingStatus("unshipped"))
	assert.False(t, format.IsPendingStatus("Shipped"))
	assert.False(t, format.IsPendingStatus("N/A"))
}
