package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/agentstation/ordersync/pkg/differ"
	"github.com/agentstation/ordersync/pkg/schema"
)

// InsertedRow records one row written by a pass.
type InsertedRow struct {
	OrderID  string
	Serial   int // Zero when the layout has no serial column
	Position int // Position at the moment of the insert
	Row      schema.Row
}

// CellPatch records one cell overwritten by a pass.
type CellPatch struct {
	OrderID string
	Row     int
	Column  schema.Column
	Index   int
	Old     string
	New     string
	Reason  differ.Reason
}

// Observer is told about every successful write.
type Observer interface {
	RowInserted(ctx context.Context, row InsertedRow)
	CellPatched(ctx context.Context, patch CellPatch)
}

// Result represents the outcome of one reconciliation pass.
type Result struct {
	PassID string
	Source string
	Store  string
	DryRun bool

	// Order level outcomes
	OrdersSeen     int // Orders listed by the source
	OrdersInserted int // New orders with at least one row written
	OrdersPatched  int // Known orders with at least one cell patched
	OrdersFailed   int // Orders that needed writes and got none of them through
	Skipped        int // Known orders left untouched
	Invalid        int // Orders without an identifier

	// Write level outcomes
	RowsInserted int
	CellsPatched int
	FailedWrites int
	SourceErrors int

	// Canceled is set when the pass stopped before every order was processed.
	Canceled bool

	Inserted []InsertedRow
	Patched  []CellPatch
	Errors   []error

	Metadata ResultMetadata
}

// ResultMetadata contains timing information about the pass.
type ResultMetadata struct {
	StartTime  time.Time
	EndTime    time.Time
	Duration   time.Duration
	NextSerial int // Serial the next new order would receive
}

// NewResult creates a new result with defaults.
func NewResult(passID string) *Result {
	return &Result{
		PassID:   passID,
		Inserted: []InsertedRow{},
		Patched:  []CellPatch{},
		Errors:   []error{},
		Metadata: ResultMetadata{StartTime: time.Now()},
	}
}

// Finalize calculates duration and marks completion.
func (r *Result) Finalize() {
	r.Metadata.EndTime = time.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Sub(r.Metadata.StartTime)
}

// IsSuccess returns true if no write or source error occurred.
func (r *Result) IsSuccess() bool {
	return len(r.Errors) == 0 && !r.Canceled
}

// HasChanges returns true if the pass wrote anything.
func (r *Result) HasChanges() bool {
	return r.RowsInserted > 0 || r.CellsPatched > 0
}

// IsSoftFailure flags a pass that saw orders but inserted, patched, and skipped none of them.
// Orders counted in OrdersFailed do not clear it.
// Callers may alert on it; the reconciler itself does not escalate.
func (r *Result) IsSoftFailure() bool {
	return r.OrdersSeen > 0 && r.RowsInserted == 0 && r.CellsPatched == 0 && r.Skipped == 0
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	prefix := "Pass completed."
	switch {
	case r.Canceled:
		prefix = "Pass canceled."
	case r.DryRun:
		prefix = "Dry run completed."
	}
	return fmt.Sprintf("%s %d orders seen: inserted %d rows for %d orders, patched %d cells on %d orders, skipped %d, failed %d orders, failed writes %d, source errors %d",
		prefix, r.OrdersSeen, r.RowsInserted, r.OrdersInserted, r.CellsPatched, r.OrdersPatched,
		r.Skipped, r.OrdersFailed, r.FailedWrites, r.SourceErrors)
}
