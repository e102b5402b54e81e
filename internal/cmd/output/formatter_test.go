package output_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/internal/cmd/output"
	"github.com/agentstation/ordersync/internal/cmd/table"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/schema"
)

var data = table.Data{
	Headers: []string{"Order ID", "Qty"},
	Rows:    [][]string{{"408-1", "2"}, {"408-2", "1"}},
}

func TestTSVFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, output.FormatTSV, data))
	assert.Equal(t, "Order ID\tQty\n408-1\t2\n408-2\t1\n", buf.String())
}

func TestTableFormatter(t *testing.T) {
	var buf bytes.Buffer
	d := data
	d.ColumnAlignment = []table.Align{table.AlignLeft, table.AlignRight}
	require.NoError(t, output.Write(&buf, output.FormatTable, d))
	assert.Contains(t, buf.String(), "408-1")
	assert.Contains(t, strings.ToUpper(buf.String()), "QTY")
}

func TestStructuredFallback(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, output.FormatTable, map[string]int{"orders": 3}))
	assert.Equal(t, "orders: 3\n", buf.String())
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"table", "TSV", "json", "yaml", ""} {
		_, err := output.ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := output.ParseFormat("xml")
	assert.Error(t, err)

	assert.True(t, output.FormatTSV.IsTabular())
	assert.False(t, output.FormatJSON.IsTabular())
	assert.Equal(t, output.FormatYAML, output.DetectFormat("YAML"))
}

func TestNewPassReport(t *testing.T) {
	s := schema.Default()
	result := reconciler.NewResult("p1")
	result.RowsInserted = 1
	result.OrdersFailed = 1
	result.Metadata.Duration = 1500 * time.Millisecond
	result.Inserted = append(result.Inserted, reconciler.InsertedRow{
		OrderID: "A",
		Row:     s.Build(map[schema.Column]string{schema.OrderID: "A"}),
	})
	result.Patched = append(result.Patched, reconciler.CellPatch{OrderID: "B", Row: 3, Column: schema.OrderStatus, Old: "Pending", New: "Shipped"})
	result.Errors = append(result.Errors, errors.New("quota exceeded"))

	var buf bytes.Buffer
	require.NoError(t, output.Write(&buf, output.FormatJSON, output.NewPassReport(result)))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "p1", decoded["pass_id"])
	assert.EqualValues(t, 1500, decoded["duration_ms"])
	assert.EqualValues(t, 1, decoded["orders_failed"])
	assert.Len(t, decoded["inserted"], 1)
	assert.Equal(t, []any{"quota exceeded"}, decoded["errors"])
}
