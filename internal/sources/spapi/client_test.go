package spapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/internal/sources/spapi"
	"github.com/agentstation/ordersync/pkg/errors"
)

var now = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func fixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

func newServer(t *testing.T, handler http.HandlerFunc) *spapi.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := spapi.New(spapi.Config{
		Endpoint:      srv.URL,
		MarketplaceID: "A21TJRUUN4KGV",
		AccessToken:   "Atza|test",
		HTTPClient:    srv.Client(),
		Now:           func() time.Time { return now },
	})
	require.NoError(t, err)
	return c
}

func TestListRecentOrdersPages(t *testing.T) {
	var queries []string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/v0/orders", r.URL.Path)
		assert.Equal(t, "Atza|test", r.Header.Get("x-amz-access-token"))
		assert.Equal(t, "A21TJRUUN4KGV", r.URL.Query().Get("MarketplaceIds"))
		queries = append(queries, r.URL.RawQuery)

		if r.URL.Query().Get("NextToken") == "page-2" {
			_, _ = w.Write(fixture(t, "orders_page2.json"))
			return
		}
		assert.Equal(t, "2024-04-30T12:00:00Z", r.URL.Query().Get("CreatedAfter"))
		assert.Equal(t, "50", r.URL.Query().Get("MaxResultsPerPage"))
		_, _ = w.Write(fixture(t, "orders_page1.json"))
	})

	list, err := c.ListRecentOrders(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, queries, 2)

	assert.Equal(t, "408-0000001-0000001", list[0].ID())
	assert.Equal(t, "Mumbai", list[0].City())
	assert.Equal(t, "N/A", list[0].BuyerName())
	assert.Equal(t, "499.00 INR", list[0].Total())
	assert.Equal(t, "Pending", list[1].Status())
}

func TestListLineItems(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/v0/orders/408-0000001-0000001/orderItems", r.URL.Path)
		_, _ = w.Write(fixture(t, "items.json"))
	})

	items, err := c.ListLineItems(context.Background(), "408-0000001-0000001")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "B0TEST0001", items[0].ProductID())
	assert.Equal(t, "2", items[0].Quantity())
	assert.Equal(t, "Bottle Brush", items[1].ProductName())
}

func TestErrorsMapToSourceFetch(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/orders/v0/orders" {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.ListRecentOrders(context.Background(), time.Hour)
	require.Error(t, err)
	assert.True(t, errors.IsSourceFetch(err))
	assert.True(t, errors.IsRateLimited(err))

	_, err = c.ListLineItems(context.Background(), "X")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrSourceUnavailable)
}

func TestNewRequiresToken(t *testing.T) {
	_, err := spapi.New(spapi.Config{})
	assert.ErrorIs(t, err, errors.ErrTokenRequired)

	_, err = spapi.New(spapi.Config{AccessToken: "x", Endpoint: "::bad"})
	assert.True(t, errors.IsValidationError(err))
}
