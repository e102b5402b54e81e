package metrics_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/internal/metrics"
	"github.com/agentstation/ordersync/pkg/differ"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/schema"
)

func TestObserverCounts(t *testing.T) {
	m := metrics.New()
	ctx := context.Background()

	m.RowInserted(ctx, reconciler.InsertedRow{OrderID: "A"})
	m.RowInserted(ctx, reconciler.InsertedRow{OrderID: "A"})
	m.CellPatched(ctx, reconciler.CellPatch{Column: schema.OrderStatus, Reason: differ.ReasonChanged})

	body := scrape(t, m)
	assert.Contains(t, body, "ordersync_rows_inserted_total 2")
	assert.Contains(t, body, `ordersync_cells_patched_total{column="order_status",reason="changed"} 1`)
}

func TestRecordPass(t *testing.T) {
	m := metrics.New()

	result := reconciler.NewResult("p1")
	result.OrdersSeen = 4
	result.OrdersInserted = 1
	result.Skipped = 3
	result.OrdersFailed = 1
	result.Metadata.NextSerial = 200
	result.Metadata.EndTime = time.Unix(1714564800, 0)
	m.RecordPass(result)

	failed := reconciler.NewResult("p2")
	failed.FailedWrites = 1
	failed.Errors = append(failed.Errors, errors.ErrStoreWrite)
	m.RecordPass(failed)
	m.RecordPass(nil)

	body := scrape(t, m)
	assert.Contains(t, body, `ordersync_passes_total{outcome="ok"} 1`)
	assert.Contains(t, body, `ordersync_passes_total{outcome="failed"} 1`)
	assert.Contains(t, body, `ordersync_orders_total{action="skipped"} 3`)
	assert.Contains(t, body, `ordersync_orders_total{action="failed"} 1`)
	assert.Contains(t, body, "ordersync_failed_writes_total 1")
	assert.Contains(t, body, "ordersync_next_serial 0")
	assert.Contains(t, body, "ordersync_last_success_timestamp_seconds 1.7145648e+09")

	count, err := testutil.GatherAndCount(m.Registry(), "ordersync_pass_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOutcome(t *testing.T) {
	r := reconciler.NewResult("p")
	assert.Equal(t, "ok", metrics.Outcome(r))

	r.OrdersSeen = 2
	assert.Equal(t, "soft_failure", metrics.Outcome(r))

	r.Canceled = true
	assert.Equal(t, "canceled", metrics.Outcome(r))
}

func scrape(t *testing.T, m *metrics.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}
