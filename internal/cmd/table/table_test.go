package table_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/ordersync/internal/cmd/table"
	"github.com/agentstation/ordersync/pkg/differ"
	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/schema"
)

func TestRowsToTableData(t *testing.T) {
	s := schema.Default()
	row := s.Build(map[schema.Column]string{schema.Serial: "193", schema.OrderID: "A"})

	data := table.RowsToTableData(s, []reconciler.InsertedRow{{OrderID: "A", Row: row}})
	assert.Equal(t, []string(s.Header()), data.Headers)
	assert.Len(t, data.Rows, 1)
	assert.Equal(t, "193", data.Rows[0][0])
	assert.Equal(t, table.AlignRight, data.ColumnAlignment[0])

	// Legacy has no serial column; only quantity is right aligned.
	legacy := schema.Legacy()
	data = table.RowsToTableData(legacy, nil)
	assert.Empty(t, data.Rows)
	q, _ := legacy.Index(schema.Quantity)
	assert.Equal(t, table.AlignRight, data.ColumnAlignment[q])
}

func TestPatchesToTableData(t *testing.T) {
	data := table.PatchesToTableData([]reconciler.CellPatch{{
		OrderID: "A", Row: 4, Column: schema.ShipCity, Old: "N/A", New: "Pune", Reason: differ.ReasonFilled,
	}})
	assert.Equal(t, [][]string{{"A", "4", "ship_city", "N/A", "Pune", "filled"}}, data.Rows)
}

func TestPropertiesToTableData(t *testing.T) {
	data := table.PropertiesToTableData([][2]string{{"Orders", "3"}})
	assert.Equal(t, []string{"Property", "Value"}, data.Headers)
	assert.Equal(t, [][]string{{"Orders", "3"}}, data.Rows)
}
