package index_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/ordersync/pkg/index"
	"github.com/agentstation/ordersync/pkg/schema"
)

func row(s *schema.Schema, serial, orderID, productID string) schema.Row {
	return s.Build(map[schema.Column]string{
		schema.Serial:    serial,
		schema.OrderID:   orderID,
		schema.ProductID: productID,
	})
}

func TestBuild(t *testing.T) {
	s := schema.Default()
	rows := []schema.Row{
		s.Header(),
		row(s, "200", "123-0000002", "B0002"),
		row(s, "199", "123-0000001", "B0001"),
		row(s, "199", "123-0000001", "N/A"),
		row(s, "", "N/A", "B0003"),
		row(s, "", "", "B0004"),
	}

	idx := index.Build(rows, s)

	assert.Equal(t, 2, idx.Orders())
	assert.Equal(t, 2, idx.Items())
	assert.Equal(t, 6, idx.Rows())
	assert.True(t, idx.HasOrder("123-0000001"))
	assert.True(t, idx.HasItem("123-0000001", "B0001"))
	assert.False(t, idx.HasItem("123-0000001", "N/A"))
	assert.False(t, idx.HasOrder("N/A"))
	assert.False(t, idx.HasOrder("Order ID"), "header row must not be indexed")
	assert.Equal(t, []int{2, 3}, idx.Positions("123-0000001"))
	assert.Empty(t, idx.Positions("missing"))
	assert.ElementsMatch(t, []string{"123-0000001", "123-0000002"}, idx.OrderIDs())
}

func TestViewSeenConsultsDelta(t *testing.T) {
	s := schema.Default()
	idx := index.Build([]schema.Row{s.Header(), row(s, "193", "A", "P1")}, s)
	view := index.NewView(idx)

	assert.True(t, view.Seen("A"))
	assert.False(t, view.Seen("B"))

	view.Delta.AddOrder("B")
	view.Delta.AddItem("B", "P9")

	assert.True(t, view.Seen("B"))
	assert.True(t, view.SeenItem("B", "P9"))
	assert.False(t, idx.HasOrder("B"), "snapshot stays immutable")
	assert.Equal(t, 1, view.Delta.Len())
}

func TestNextSerial(t *testing.T) {
	s := schema.Default()

	tests := []struct {
		name    string
		serials []string
		floor   int
		want    int
	}{
		{"empty store uses floor", nil, 193, 193},
		{"below floor", []string{"5", "12"}, 193, 193},
		{"above floor", []string{"193", "250", "201"}, 193, 251},
		{"non numeric ignored", []string{"abc", "", "N/A", "194"}, 193, 195},
		{"custom floor", []string{"3"}, 1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := []schema.Row{s.Header()}
			for _, serial := range tt.serials {
				rows = append(rows, row(s, serial, "X", "P"))
			}
			assert.Equal(t, tt.want, index.NextSerial(rows, s, tt.floor))
		})
	}
}

func TestNextSerialWithoutSerialColumn(t *testing.T) {
	s := schema.Legacy()
	require.False(t, s.Has(schema.Serial))
	assert.Equal(t, 193, index.NextSerial([]schema.Row{s.Header()}, s, 193))
}
