// Package postgres provides a row store shared through a PostgreSQL database.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/schema"
)

const createTable = `
CREATE TABLE IF NOT EXISTS sheet_rows (
    sheet      TEXT        NOT NULL,
    position   INTEGER     NOT NULL,
    cells      TEXT[]      NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (sheet, position)
)`

// DefaultSheet is the sheet name used when none is configured.
const DefaultSheet = "orders"

// Store is a PostgreSQL row store.
// Writes take a transaction-scoped advisory lock on the sheet so concurrent
// writers cannot interleave position shifts.
type Store struct {
	pool  *pgxpool.Pool
	sheet string
}

var _ rowstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithSheet selects the sheet inside the table.
func WithSheet(sheet string) Option {
	return func(s *Store) {
		if sheet != "" {
			s.sheet = sheet
		}
	}
}

// Open connects to dsn and creates the table when missing.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	if _, err := pool.Exec(ctx, createTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{pool: pool, sheet: DefaultSheet}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// Name implements rowstore.Store.
func (s *Store) Name() string {
	return "postgres#" + s.sheet
}

// ReadAll implements rowstore.Store.
func (s *Store) ReadAll(ctx context.Context) ([]schema.Row, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT cells FROM sheet_rows WHERE sheet = $1 ORDER BY position`, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	defer rows.Close()

	out := []schema.Row{}
	for rows.Next() {
		var cells []string
		if err := rows.Scan(&cells); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, schema.Row(cells))
	}
	return out, rows.Err()
}

// Append implements rowstore.Store.
func (s *Store) Append(ctx context.Context, row schema.Row) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		n, err := s.count(ctx, tx)
		if err != nil {
			return err
		}
		return s.insert(ctx, tx, n, row)
	})
}

// InsertAt implements rowstore.Store.
func (s *Store) InsertAt(ctx context.Context, row schema.Row, position int) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		n, err := s.count(ctx, tx)
		if err != nil {
			return err
		}
		if position < 0 || position > n {
			return rowstore.ErrPosition(position, n)
		}

		// Shift through negative positions so the primary key never collides mid-update.
		if _, err := tx.Exec(ctx,
			`UPDATE sheet_rows SET position = -position - 1 WHERE sheet = $1 AND position >= $2`,
			s.sheet, position); err != nil {
			return fmt.Errorf("shift rows: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`UPDATE sheet_rows SET position = -position WHERE sheet = $1 AND position < 0`,
			s.sheet); err != nil {
			return fmt.Errorf("shift rows: %w", err)
		}
		return s.insert(ctx, tx, position, row)
	})
}

// PatchCell implements rowstore.Store.
func (s *Store) PatchCell(ctx context.Context, row, column int, value string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var cells []string
		err := tx.QueryRow(ctx,
			`SELECT cells FROM sheet_rows WHERE sheet = $1 AND position = $2`, s.sheet, row).Scan(&cells)
		if errors.Is(err, pgx.ErrNoRows) || column < 0 {
			n, cerr := s.count(ctx, tx)
			if cerr != nil {
				return cerr
			}
			return rowstore.ErrPosition(row, n)
		}
		if err != nil {
			return fmt.Errorf("read row %d: %w", row, err)
		}

		cells = rowstore.PadTo(cells, column+1)
		cells[column] = value

		_, err = tx.Exec(ctx,
			`UPDATE sheet_rows SET cells = $1, updated_at = now() WHERE sheet = $2 AND position = $3`,
			cells, s.sheet, row)
		return err
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, s.sheet); err != nil {
		return fmt.Errorf("lock sheet: %w", err)
	}
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) count(ctx context.Context, tx pgx.Tx) (int, error) {
	var n int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM sheet_rows WHERE sheet = $1`, s.sheet).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

func (s *Store) insert(ctx context.Context, tx pgx.Tx, position int, row schema.Row) error {
	cells := []string(row)
	if cells == nil {
		cells = []string{}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO sheet_rows (sheet, position, cells) VALUES ($1, $2, $3)`,
		s.sheet, position, cells); err != nil {
		return fmt.Errorf("insert row at %d: %w", position, err)
	}
	return nil
}
