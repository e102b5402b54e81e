// Package rowstore defines the positional row table the reconciler writes to.
//
// Position 0 holds the header row. Data rows follow newest first, so new orders
// are inserted at position 1. Every write is a discrete operation that can be
// retried on its own; stores never reorder or delete rows.
package rowstore

import (
	"context"
	"fmt"

	"github.com/agentstation/ordersync/pkg/errors"
	"github.com/agentstation/ordersync/pkg/schema"
)

// HeaderPosition is the position of the header row.
const HeaderPosition = 0

// FirstDataPosition is where new rows are inserted.
const FirstDataPosition = 1

// Store is a durable ordered table of rows.
type Store interface {
	// Name identifies the store in logs.
	Name() string

	// ReadAll returns every row, header included, in position order.
	ReadAll(ctx context.Context) ([]schema.Row, error)

	// Append adds row after the last row.
	Append(ctx context.Context, row schema.Row) error

	// InsertAt inserts row at position, shifting later rows down by one.
	// Position may equal the current row count, which appends.
	InsertAt(ctx context.Context, row schema.Row, position int) error

	// PatchCell overwrites one cell. Rows shorter than column are padded.
	PatchCell(ctx context.Context, row, column int, value string) error
}

// Closer is implemented by stores holding external resources.
type Closer interface {
	Close() error
}

// Close closes s when it holds resources.
func Close(s Store) error {
	if c, ok := s.(Closer); ok {
		return c.Close()
	}
	return nil
}

// ErrPosition builds the error returned for a position outside the table.
func ErrPosition(position, rows int) error {
	return fmt.Errorf("position %d outside table of %d rows: %w", position, rows, errors.ErrOutOfRange)
}

// EnsureHeader appends the header when the store is empty and returns the rows as read.
// A store whose first row is not the header is left untouched.
func EnsureHeader(ctx context.Context, store Store, s *schema.Schema) ([]schema.Row, error) {
	rows, err := store.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows, nil
	}

	header := s.Header()
	if err := store.Append(ctx, header); err != nil {
		return nil, &errors.StoreWriteError{Operation: "append", Row: HeaderPosition, Err: err}
	}
	return []schema.Row{header}, nil
}

// PadTo returns row extended with empty cells up to width.
func PadTo(row schema.Row, width int) schema.Row {
	if len(row) >= width {
		return row
	}
	out := make(schema.Row, width)
	copy(out, row)
	return out
}
