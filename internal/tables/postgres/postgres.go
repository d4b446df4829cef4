package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jusunglee/romanization/internal/tables"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS character_tables (
    name        TEXT PRIMARY KEY,
    imported_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS character_rows (
    table_name TEXT    NOT NULL REFERENCES character_tables (name) ON DELETE CASCADE,
    position   INTEGER NOT NULL,
    key        TEXT    NOT NULL,
    value      TEXT    NOT NULL,
    PRIMARY KEY (table_name, position)
);
`

// Store keeps character tables in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and makes sure the schema exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	// Tables are read once per system construction; a small pool is plenty.
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = 5 * time.Minute
	config.MaxConnIdleTime = 30 * time.Second
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return &Store{pool: pool}, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) PoolStats() *pgxpool.Stat {
	return s.pool.Stat()
}

func (s *Store) Rows(ctx context.Context, name string) ([]tables.Row, error) {
	var exists int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM character_tables WHERE name = $1`, name).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", tables.ErrTableNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT key, value
		FROM character_rows
		WHERE table_name = $1
		ORDER BY position
	`, name)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (tables.Row, error) {
		var r tables.Row
		err := row.Scan(&r.Key, &r.Value)
		return r, err
	})
}

// Import replaces the contents of a table using COPY for the rows.
func (s *Store) Import(ctx context.Context, name string, rows []tables.Row) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM character_tables WHERE name = $1`, name); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO character_tables (name) VALUES ($1)`, name); err != nil {
		return err
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"character_rows"},
		[]string{"table_name", "position", "key", "value"},
		pgx.CopyFromSlice(len(rows), func(i int) ([]any, error) {
			return []any{name, int32(i), rows[i].Key, rows[i].Value}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copying rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM character_tables ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

func (s *Store) Delete(ctx context.Context, name string) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM character_tables WHERE name = $1`, name)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
