package reconciler

import (
	"time"

	"github.com/agentstation/ordersync/pkg/constants"
	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/format"
)

// Config is the reconciliation configuration. It is built once at process
// start and passed to New; the reconciler never reads the environment.
type Config struct {
	// Lookback is how far back orders are listed.
	Lookback time.Duration `json:"lookback" yaml:"lookback"`
	// PatchWindow bounds patching to orders whose stored purchase date is this recent.
	// Zero disables patching.
	PatchWindow time.Duration `json:"patch_window" yaml:"patch_window"`
	// SerialFloor is the lowest serial number assigned.
	SerialFloor int `json:"serial_floor" yaml:"serial_floor"`

	// RowDelay is the pause after each successful row write.
	RowDelay time.Duration `json:"row_delay" yaml:"row_delay"`
	// BatchDelay is the pause after every BatchSize orders.
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay"`
	// BatchSize is the number of orders between batch delays. Zero disables the batch delay.
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Statuses translates upstream statuses before they are written or compared.
	Statuses format.StatusMap `json:"statuses,omitempty" yaml:"statuses,omitempty"`
	// PrintStatus and PackStatus seed the workflow cells of new rows.
	PrintStatus string `json:"print_status" yaml:"print_status"`
	PackStatus  string `json:"pack_status" yaml:"pack_status"`
	// MultiItemMarker is appended to summaries of multi-item orders.
	MultiItemMarker string `json:"multi_item_marker" yaml:"multi_item_marker"`
	// DisplayOffset is added to UTC before dates are rendered.
	DisplayOffset time.Duration `json:"display_offset" yaml:"display_offset"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Lookback:        constants.DefaultLookback,
		PatchWindow:     constants.DefaultPatchWindow,
		SerialFloor:     constants.DefaultSerialFloor,
		RowDelay:        constants.DefaultRowDelay,
		BatchDelay:      constants.DefaultBatchDelay,
		BatchSize:       constants.DefaultBatchSize,
		Statuses:        format.StatusMap{},
		PrintStatus:     constants.DefaultPrintStatus,
		PackStatus:      constants.DefaultPackStatus,
		MultiItemMarker: constants.DefaultMultiItemMarker,
		DisplayOffset:   constants.DefaultDisplayOffset,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	switch {
	case c.Lookback <= 0:
		return errors.NewValidationError("lookback", c.Lookback, "must be positive")
	case c.PatchWindow < 0:
		return errors.NewValidationError("patch_window", c.PatchWindow, "cannot be negative")
	case c.SerialFloor < 0:
		return errors.NewValidationError("serial_floor", c.SerialFloor, "cannot be negative")
	case c.RowDelay < 0:
		return errors.NewValidationError("row_delay", c.RowDelay, "cannot be negative")
	case c.BatchDelay < 0:
		return errors.NewValidationError("batch_delay", c.BatchDelay, "cannot be negative")
	case c.BatchSize < 0:
		return errors.NewValidationError("batch_size", c.BatchSize, "cannot be negative")
	}
	return nil
}

// Formatter returns the field formatter described by the configuration.
func (c Config) Formatter() *format.Formatter {
	statuses := c.Statuses
	if statuses == nil {
		statuses = format.StatusMap{}
	}
	return &format.Formatter{
		Offset:          c.DisplayOffset,
		MultiItemMarker: c.MultiItemMarker,
		Statuses:        statuses,
	}
}
