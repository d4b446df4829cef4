// Package store opens a persistent table store from a connection URL.
package store

import (
	"context"
	"strings"

	"github.com/jusunglee/romanization/internal/tables"
	"github.com/jusunglee/romanization/internal/tables/postgres"
	"github.com/jusunglee/romanization/internal/tables/sqlite"
)

// Store is a table provider that can also be written to.
type Store interface {
	tables.Provider
	Import(ctx context.Context, name string, rows []tables.Row) error
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) (int64, error)
	Close() error
}

var (
	_ Store = (*sqlite.Store)(nil)
	_ Store = (*postgres.Store)(nil)
)

// EmbeddedURL selects the tables compiled into the binary.
const EmbeddedURL = "embedded"

// OpenProvider returns the embedded tables for "" or EmbeddedURL, and the
// store at url otherwise. The returned Store is nil for embedded tables and
// must be closed by the caller otherwise.
func OpenProvider(ctx context.Context, url string) (tables.Provider, Store, error) {
	if url == "" || url == EmbeddedURL {
		return tables.Embedded(), nil, nil
	}
	s, err := Open(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}

// IsPostgres reports whether url names a PostgreSQL database.
func IsPostgres(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// Open connects to PostgreSQL for postgres:// URLs and opens a SQLite file
// (or :memory:) for anything else.
func Open(ctx context.Context, url string) (Store, error) {
	if IsPostgres(url) {
		s, err := postgres.New(ctx, url)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := sqlite.New(ctx, url)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CopyAll imports every named table from src into dst and returns the number
// of rows written.
func CopyAll(ctx context.Context, src tables.Provider, dst Store, names []string) (int, error) {
	total := 0
	for _, name := range names {
		rows, err := src.Rows(ctx, name)
		if err != nil {
			return total, err
		}
		if err := dst.Import(ctx, name, rows); err != nil {
			return total, err
		}
		total += len(rows)
	}
	return total, nil
}
