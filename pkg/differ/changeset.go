// Package differ decides which cells of an existing row need patching.
package differ

import (
	"fmt"
	"strings"

	"github.com/agentstation/ordersync/pkg/schema"
)

// Reason explains why a cell is patched.
type Reason string

const (
	// ReasonChanged indicates the upstream value differs from the stored one.
	ReasonChanged Reason = "changed"
	// ReasonFilled indicates a sentinel cell now has a real value.
	ReasonFilled Reason = "filled"
	// ReasonLeftPending indicates the order moved out of a pending status.
	ReasonLeftPending Reason = "left_pending"
)

// CellChange is one cell patch.
type CellChange struct {
	Column schema.Column // Logical column
	Index  int           // Position of the column in the layout
	Old    string        // Stored value
	New    string        // Value to write
	Reason Reason
}

// String implements fmt.Stringer.
func (c CellChange) String() string {
	return fmt.Sprintf("%s: %q -> %q (%s)", c.Column, c.Old, c.New, c.Reason)
}

// RowPatch groups the changes of one stored row.
type RowPatch struct {
	OrderID string
	Row     int // Position in the row store
	Changes []CellChange
}

// Changeset is every patch computed for one order.
type Changeset struct {
	OrderID string
	Patches []RowPatch
}

// IsEmpty reports whether there is nothing to patch.
func (cs *Changeset) IsEmpty() bool {
	return cs == nil || cs.Cells() == 0
}

// Cells returns the number of cell changes across all rows.
func (cs *Changeset) Cells() int {
	if cs == nil {
		return 0
	}
	n := 0
	for _, p := range cs.Patches {
		n += len(p.Changes)
	}
	return n
}

// Summary returns a one-line description for logs.
func (cs *Changeset) Summary() string {
	if cs.IsEmpty() {
		return "no changes"
	}
	var cols []string
	seen := make(map[schema.Column]bool)
	for _, p := range cs.Patches {
		for _, c := range p.Changes {
			if !seen[c.Column] {
				seen[c.Column] = true
				cols = append(cols, string(c.Column))
			}
		}
	}
	return fmt.Sprintf("%d cells on %d rows (%s)", cs.Cells(), len(cs.Patches), strings.Join(cols, ", "))
}
