// tableimport copies the character tables compiled into the binary into a
// SQLite or PostgreSQL table store.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/samber/lo"

	"github.com/jusunglee/romanization/internal/logger"
	"github.com/jusunglee/romanization/internal/tables"
	"github.com/jusunglee/romanization/internal/tables/store"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func mainE() error {
	_ = godotenv.Load()

	fs_ := ff.NewFlagSet("tableimport")

	var (
		tablesURL = fs_.StringLong("tables-url", "", "Destination: a SQLite path or a PostgreSQL URL")
		only      = fs_.StringLong("tables", "", "Comma-separated table names to import (default: all)")
		prune     = fs_.BoolLong("prune", "Delete tables in the store that are not being imported")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}
	if *tablesURL == "" || *tablesURL == store.EmbeddedURL {
		return errors.New("tables-url must name a SQLite path or a PostgreSQL URL")
	}

	log := logger.New()
	ctx := context.Background()

	dst, err := store.Open(ctx, *tablesURL)
	if err != nil {
		return fmt.Errorf("opening table store: %w", err)
	}
	defer dst.Close()

	src := tables.Embedded()
	names, err := selectTables(src, *only)
	if err != nil {
		return err
	}

	n, err := importTables(ctx, log, src, dst, names, *prune)
	if err != nil {
		return err
	}
	log.InfoContext(ctx, "import complete", "tables", len(names), "rows", n)
	return nil
}

// selectTables returns the requested table names, or every embedded table
// when only is empty.
func selectTables(src tables.FSProvider, only string) ([]string, error) {
	available, err := src.Names()
	if err != nil {
		return nil, fmt.Errorf("listing embedded tables: %w", err)
	}
	if strings.TrimSpace(only) == "" {
		return available, nil
	}

	requested := lo.Compact(lo.Map(strings.Split(only, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if missing := lo.Without(requested, available...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", tables.ErrTableNotFound, strings.Join(missing, ", "))
	}
	return lo.Uniq(requested), nil
}

func importTables(ctx context.Context, log *slog.Logger, src tables.Provider, dst store.Store, names []string, prune bool) (int, error) {
	n, err := store.CopyAll(ctx, src, dst, names)
	if err != nil {
		return n, fmt.Errorf("importing tables: %w", err)
	}
	if !prune {
		return n, nil
	}

	existing, err := dst.Names(ctx)
	if err != nil {
		return n, fmt.Errorf("listing stored tables: %w", err)
	}
	for _, name := range lo.Without(existing, names...) {
		deleted, err := dst.Delete(ctx, name)
		if err != nil {
			return n, fmt.Errorf("deleting table %s: %w", name, err)
		}
		log.InfoContext(ctx, "pruned table", "table", name, "deleted", deleted)
	}
	return n, nil
}
