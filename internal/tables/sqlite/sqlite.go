package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jusunglee/romanization/internal/tables"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps character tables in a SQLite database and serves them as a
// tables.Provider.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath.
func New(ctx context.Context, dbPath string) (*Store, error) {
	dbPath = strings.TrimPrefix(dbPath, "sqlite://")

	isNew := dbPath == ":memory:"
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		isNew = true
	}

	// Pragmas in the DSN run on every pooled connection, not just the first.
	sqliteDB, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening SQLite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if dbPath == ":memory:" {
		sqliteDB.SetMaxOpenConns(1)
	}

	if _, err := sqliteDB.ExecContext(ctx, schemaSQL); err != nil {
		sqliteDB.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if isNew {
		slog.Info("created new SQLite table store", "path", dbPath)
	}

	return &Store{db: sqliteDB}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Rows returns the rows of a table in import order.
func (s *Store) Rows(ctx context.Context, name string) ([]tables.Row, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM character_tables WHERE name = ?`, name).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", tables.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT key, value
		FROM character_rows
		WHERE table_name = ?
		ORDER BY position
	`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []tables.Row
	for rows.Next() {
		var r tables.Row
		if err := rows.Scan(&r.Key, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Import replaces the contents of a table.
func (s *Store) Import(ctx context.Context, name string, rows []tables.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM character_tables WHERE name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO character_tables (name) VALUES (?)`, name); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO character_rows (table_name, position, key, value)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, name, i, r.Key, r.Value); err != nil {
			return fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Names lists the stored tables.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM character_tables ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

// Delete drops a table and its rows. It returns the number of tables removed.
func (s *Store) Delete(ctx context.Context, name string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `DELETE FROM character_tables WHERE name = ?`, name)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
