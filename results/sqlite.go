package results

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

var initStatements = []string{
	"PRAGMA journal_mode=WAL",
	`CREATE TABLE IF NOT EXISTS records (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		check_name TEXT NOT NULL,
		category   TEXT NOT NULL,
		layer      TEXT NOT NULL,
		x          REAL NOT NULL,
		y          REAL NOT NULL,
		value      REAL,
		message    TEXT NOT NULL
	)`,
	"CREATE INDEX IF NOT EXISTS records_check ON records(check_name)",
}

// SQLiteRecorder stores records in a SQLite file so large runs do not hold
// every finding in memory.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// records table exists.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("results: open %s: %w", path, err)
	}
	// One writer at a time; WAL lets readers proceed.
	db.SetMaxOpenConns(1)
	for _, stmt := range initStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("results: init %s: %w", path, err)
		}
	}
	return &SQLiteRecorder{db: db}, nil
}

// Record inserts recs in one transaction.
func (s *SQLiteRecorder) Record(ctx context.Context, recs ...Record) error {
	if len(recs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return s.transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO records (check_name, category, layer, x, y, value, message) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, r := range recs {
			if _, err := stmt.ExecContext(ctx, r.Check, r.Category.String(), r.Layer, r.X, r.Y, nullable(r.Value), r.Message); err != nil {
				return err
			}
		}
		return nil
	})
}

// Records returns the records of check in insertion order; an empty check
// returns all of them.
func (s *SQLiteRecorder) Records(ctx context.Context, check string) ([]Record, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	q := `SELECT check_name, category, layer, x, y, value, message FROM records`
	var args []any
	if check != "" {
		q += ` WHERE check_name = ?`
		args = append(args, check)
	}
	q += ` ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("results: query: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r     Record
			cat   string
			value sql.NullFloat64
		)
		if err := rows.Scan(&r.Check, &cat, &r.Layer, &r.X, &r.Y, &value, &r.Message); err != nil {
			return nil, fmt.Errorf("results: scan: %w", err)
		}
		if r.Category, err = ParseCategory(cat); err != nil {
			return nil, err
		}
		r.Value = nanIfNull(value)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database. Further calls return ErrClosed.
func (s *SQLiteRecorder) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQLiteRecorder) transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("results: begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("results: rollback after %v: %w", err, rbErr)
		}
		return fmt.Errorf("results: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("results: commit: %w", err)
	}
	return nil
}
