// Package memory provides an in-memory row store.
package memory

import (
	"context"
	"sync"

	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/schema"
)

// Store keeps rows in a slice guarded by a mutex.
type Store struct {
	mu   sync.RWMutex
	rows []schema.Row
	name string
}

var _ rowstore.Store = (*Store)(nil)

// New returns a store seeded with copies of rows.
func New(rows ...schema.Row) *Store {
	s := &Store{name: "memory"}
	for _, r := range rows {
		s.rows = append(s.rows, r.Clone())
	}
	return s
}

// CopyOf reads every row of src into a new memory store.
// Writes to the copy never reach src, which is how dry runs are served.
func CopyOf(ctx context.Context, src rowstore.Store) (*Store, error) {
	rows, err := src.ReadAll(ctx)
	if err != nil {
		return nil, err
	}
	s := New(rows...)
	s.name = "dry-run(" + src.Name() + ")"
	return s, nil
}

// Name implements rowstore.Store.
func (s *Store) Name() string {
	return s.name
}

// ReadAll implements rowstore.Store.
func (s *Store) ReadAll(ctx context.Context) ([]schema.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]schema.Row, len(s.rows))
	for i, r := range s.rows {
		out[i] = r.Clone()
	}
	return out, nil
}

// Append implements rowstore.Store.
func (s *Store) Append(ctx context.Context, row schema.Row) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, row.Clone())
	return nil
}

// InsertAt implements rowstore.Store.
func (s *Store) InsertAt(ctx context.Context, row schema.Row, position int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 || position > len(s.rows) {
		return rowstore.ErrPosition(position, len(s.rows))
	}
	s.rows = append(s.rows, nil)
	copy(s.rows[position+1:], s.rows[position:])
	s.rows[position] = row.Clone()
	return nil
}

// PatchCell implements rowstore.Store.
func (s *Store) PatchCell(ctx context.Context, row, column int, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 0 || row >= len(s.rows) || column < 0 {
		return rowstore.ErrPosition(row, len(s.rows))
	}
	s.rows[row] = rowstore.PadTo(s.rows[row], column+1)
	s.rows[row][column] = value
	return nil
}

// Len returns the number of rows, header included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
