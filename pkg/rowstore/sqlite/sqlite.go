// Package sqlite provides a row store backed by a local SQLite database.
//
// Each sheet is a set of (position, cells) records in one table, cells encoded
// as a JSON array. Several sheets may share a database file.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/agentstation/ordersync/pkg/rowstore"
	"github.com/agentstation/ordersync/pkg/schema"
)

//go:embed schema.sql
var schemaSQL string

// DefaultSheet is the sheet name used when none is configured.
const DefaultSheet = "orders"

// Store is a SQLite row store.
type Store struct {
	db    *sql.DB
	path  string
	sheet string
}

var _ rowstore.Store = (*Store)(nil)

// Option configures a Store.
type Option func(*Store)

// WithSheet selects the sheet inside the database.
func WithSheet(sheet string) Option {
	return func(s *Store) {
		if sheet != "" {
			s.sheet = sheet
		}
	}
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
//
// Open is idempotent.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	s := &Store{db: db, path: path, sheet: DefaultSheet}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Name implements rowstore.Store.
func (s *Store) Name() string {
	return fmt.Sprintf("sqlite(%s#%s)", s.path, s.sheet)
}

// ReadAll implements rowstore.Store.
func (s *Store) ReadAll(ctx context.Context) ([]schema.Row, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT cells FROM sheet_rows WHERE sheet = ? ORDER BY position`, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	defer rows.Close()

	out := []schema.Row{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row, err := decodeCells(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Append implements rowstore.Store.
func (s *Store) Append(ctx context.Context, row schema.Row) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		n, err := s.count(ctx, tx)
		if err != nil {
			return err
		}
		return s.insert(ctx, tx, n, row)
	})
}

// InsertAt implements rowstore.Store.
func (s *Store) InsertAt(ctx context.Context, row schema.Row, position int) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		n, err := s.count(ctx, tx)
		if err != nil {
			return err
		}
		if position < 0 || position > n {
			return rowstore.ErrPosition(position, n)
		}

		// Shift through negative positions so the primary key never collides mid-update.
		if _, err := tx.ExecContext(ctx,
			`UPDATE sheet_rows SET position = -position - 1 WHERE sheet = ? AND position >= ?`,
			s.sheet, position); err != nil {
			return fmt.Errorf("shift rows: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE sheet_rows SET position = -position WHERE sheet = ? AND position < 0`,
			s.sheet); err != nil {
			return fmt.Errorf("shift rows: %w", err)
		}
		return s.insert(ctx, tx, position, row)
	})
}

// PatchCell implements rowstore.Store.
func (s *Store) PatchCell(ctx context.Context, row, column int, value string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var raw string
		err := tx.QueryRowContext(ctx,
			`SELECT cells FROM sheet_rows WHERE sheet = ? AND position = ?`, s.sheet, row).Scan(&raw)
		if err == sql.ErrNoRows || column < 0 {
			n, cerr := s.count(ctx, tx)
			if cerr != nil {
				return cerr
			}
			return rowstore.ErrPosition(row, n)
		}
		if err != nil {
			return fmt.Errorf("read row %d: %w", row, err)
		}

		cells, err := decodeCells(raw)
		if err != nil {
			return err
		}
		cells = rowstore.PadTo(cells, column+1)
		cells[column] = value

		encoded, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("encode row %d: %w", row, err)
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE sheet_rows SET cells = ?, updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
			 WHERE sheet = ? AND position = ?`, string(encoded), s.sheet, row)
		return err
	})
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) count(ctx context.Context, tx *sql.Tx) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sheet_rows WHERE sheet = ?`, s.sheet).Scan(&n); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	return n, nil
}

func (s *Store) insert(ctx context.Context, tx *sql.Tx, position int, row schema.Row) error {
	if row == nil {
		row = schema.Row{}
	}
	encoded, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sheet_rows (sheet, position, cells) VALUES (?, ?, ?)`,
		s.sheet, position, string(encoded)); err != nil {
		return fmt.Errorf("insert row at %d: %w", position, err)
	}
	return nil
}

func decodeCells(raw string) (schema.Row, error) {
	var row schema.Row
	if err := json.Unmarshal([]byte(raw), &row); err != nil {
		return nil, fmt.Errorf("decode row: %w", err)
	}
	return row, nil
}
