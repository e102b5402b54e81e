package errors

import "fmt"

// SourceFetchError wraps a failed order or line item listing. The engine
// logs it, counts it and carries on with an empty result.
type SourceFetchError struct {
	Operation string // list_orders or list_items
	OrderID   string
	Err       error
}

func (e *SourceFetchError) Error() string {
	if e.OrderID == "" {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("%s for order %s: %v", e.Operation, e.OrderID, e.Err)
}

func (e *SourceFetchError) Unwrap() error { return e.Err }

// Is matches ErrSourceFetch.
func (e *SourceFetchError) Is(target error) bool { return target == ErrSourceFetch }

// NewSourceFetchError creates a SourceFetchError.
func NewSourceFetchError(operation, orderID string, err error) *SourceFetchError {
	return &SourceFetchError{Operation: operation, OrderID: orderID, Err: err}
}

// StoreWriteError wraps a failed append, insert or cell patch. Row is the
// sheet position the write targeted; Column is only set for patches.
type StoreWriteError struct {
	Operation string // append, insert or patch
	Row       int
	Column    int
	OrderID   string
	Err       error
}

func (e *StoreWriteError) Error() string {
	at := fmt.Sprintf("row %d", e.Row)
	if e.Operation == "patch" {
		at += fmt.Sprintf(" column %d", e.Column)
	}
	if e.OrderID != "" {
		at += " order " + e.OrderID
	}
	return fmt.Sprintf("%s at %s: %v", e.Operation, at, e.Err)
}

func (e *StoreWriteError) Unwrap() error { return e.Err }

// Is matches ErrStoreWrite.
func (e *StoreWriteError) Is(target error) bool { return target == ErrStoreWrite }

// FormatError reports a cell value that could not be parsed. Display
// formatters fall back to the raw value instead of returning it.
type FormatError struct {
	Field string
	Value string
	Err   error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is matches ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// NewFormatError creates a FormatError.
func NewFormatError(field, value string, err error) *FormatError {
	return &FormatError{Field: field, Value: value, Err: err}
}
