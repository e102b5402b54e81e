package output

import (
	"github.com/agentstation/ordersync/pkg/reconciler"
)

// PassReport is the structured form of a pass result for json and yaml output.
type PassReport struct {
	PassID         string        `json:"pass_id" yaml:"pass_id"`
	Source         string        `json:"source" yaml:"source"`
	Store          string        `json:"store" yaml:"store"`
	DryRun         bool          `json:"dry_run" yaml:"dry_run"`
	Canceled       bool          `json:"canceled,omitempty" yaml:"canceled,omitempty"`
	OrdersSeen     int           `json:"orders_seen" yaml:"orders_seen"`
	OrdersInserted int           `json:"orders_inserted" yaml:"orders_inserted"`
	OrdersPatched  int           `json:"orders_patched" yaml:"orders_patched"`
	OrdersFailed   int           `json:"orders_failed" yaml:"orders_failed"`
	Skipped        int           `json:"skipped" yaml:"skipped"`
	Invalid        int           `json:"invalid" yaml:"invalid"`
	RowsInserted   int           `json:"rows_inserted" yaml:"rows_inserted"`
	CellsPatched   int           `json:"cells_patched" yaml:"cells_patched"`
	FailedWrites   int           `json:"failed_writes" yaml:"failed_writes"`
	SourceErrors   int           `json:"source_errors" yaml:"source_errors"`
	NextSerial     int           `json:"next_serial" yaml:"next_serial"`
	DurationMS     int64         `json:"duration_ms" yaml:"duration_ms"`
	Inserted       [][]string    `json:"inserted,omitempty" yaml:"inserted,omitempty"`
	Patched        []PatchReport `json:"patched,omitempty" yaml:"patched,omitempty"`
	Errors         []string      `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// PatchReport is one patched cell.
type PatchReport struct {
	OrderID string `json:"order_id" yaml:"order_id"`
	Row     int    `json:"row" yaml:"row"`
	Column  string `json:"column" yaml:"column"`
	Old     string `json:"old" yaml:"old"`
	New     string `json:"new" yaml:"new"`
	Reason  string `json:"reason" yaml:"reason"`
}

// NewPassReport flattens result.
func NewPassReport(result *reconciler.Result) PassReport {
	r := PassReport{
		PassID:         result.PassID,
		Source:         result.Source,
		Store:          result.Store,
		DryRun:         result.DryRun,
		Canceled:       result.Canceled,
		OrdersSeen:     result.OrdersSeen,
		OrdersInserted: result.OrdersInserted,
		OrdersPatched:  result.OrdersPatched,
		OrdersFailed:   result.OrdersFailed,
		Skipped:        result.Skipped,
		Invalid:        result.Invalid,
		RowsInserted:   result.RowsInserted,
		CellsPatched:   result.CellsPatched,
		FailedWrites:   result.FailedWrites,
		SourceErrors:   result.SourceErrors,
		NextSerial:     result.Metadata.NextSerial,
		DurationMS:     result.Metadata.Duration.Milliseconds(),
	}
	for _, row := range result.Inserted {
		r.Inserted = append(r.Inserted, row.Row.Clone())
	}
	for _, p := range result.Patched {
		r.Patched = append(r.Patched, PatchReport{
			OrderID: p.OrderID,
			Row:     p.Row,
			Column:  string(p.Column),
			Old:     p.Old,
			New:     p.New,
			Reason:  string(p.Reason),
		})
	}
	for _, err := range result.Errors {
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}
