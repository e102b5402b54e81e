// Package table converts pass results and sheet rows into table data for CLI output.
package table

import (
	"strconv"

	"github.com/agentstation/ordersync/pkg/reconciler"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data represents table formatting data to avoid import cycles.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// RowsToTableData lays inserted rows out under the sheet header.
func RowsToTableData(s *schema.Schema, rows []reconciler.InsertedRow) Data {
	data := Data{
		Headers:         s.Header(),
		Rows:            make([][]string, 0, len(rows)),
		ColumnAlignment: make([]Align, s.Width()),
	}
	for _, c := range []schema.Column{schema.Serial, schema.Quantity} {
		if i, ok := s.Index(c); ok {
			data.ColumnAlignment[i] = AlignRight
		}
	}
	for _, r := range rows {
		data.Rows = append(data.Rows, r.Row.Clone())
	}
	return data
}

// PatchesToTableData lists cell patches one per line.
func PatchesToTableData(patches []reconciler.CellPatch) Data {
	data := Data{
		Headers:         []string{"Order ID", "Row", "Column", "Old", "New", "Reason"},
		Rows:            make([][]string, 0, len(patches)),
		ColumnAlignment: []Align{AlignLeft, AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft},
	}
	for _, p := range patches {
		data.Rows = append(data.Rows, []string{
			p.OrderID,
			strconv.Itoa(p.Row),
			string(p.Column),
			p.Old,
			p.New,
			string(p.Reason),
		})
	}
	return data
}

// PropertiesToTableData renders ordered key/value pairs as a two-column table.
func PropertiesToTableData(pairs [][2]string) Data {
	data := Data{
		Headers:         []string{"Property", "Value"},
		Rows:            make([][]string, 0, len(pairs)),
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
	for _, kv := range pairs {
		data.Rows = append(data.Rows, []string{kv[0], kv[1]})
	}
	return data
}
