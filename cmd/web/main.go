package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"

	"github.com/jusunglee/romanization/internal/envsetup"
	"github.com/jusunglee/romanization/internal/health"
	"github.com/jusunglee/romanization/internal/logger"
	"github.com/jusunglee/romanization/internal/metrics"
	"github.com/jusunglee/romanization/internal/systems"
	"github.com/jusunglee/romanization/internal/tables/postgres"
	"github.com/jusunglee/romanization/internal/tables/store"
	"github.com/jusunglee/romanization/internal/web"
	"github.com/jusunglee/romanization/internal/web/middleware"
)

const envFile = ".env"

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	if envsetup.NeedsSetup(envFile) && isatty.IsTerminal(os.Stdin.Fd()) {
		done, err := envsetup.Run(envFile)
		if err != nil {
			return fmt.Errorf("running setup wizard: %w", err)
		}
		if !done {
			return errors.New("setup cancelled")
		}
	}
	_ = godotenv.Load(envFile)

	fs_ := ff.NewFlagSet("romanization-web")

	var (
		port           = fs_.Int64Long("port", 3000, "HTTP server port")
		tablesURL      = fs_.StringLong("tables-url", store.EmbeddedURL, "Character tables: embedded, a SQLite path, or a PostgreSQL URL")
		allowedOrigins = fs_.StringLong("allowed-origins", "", "Comma-separated list of allowed CORS origins")
		rateLimit      = fs_.Int64Long("rate-limit", 120, "Requests per client per rate window; 0 disables limiting")
		rateWindow     = fs_.DurationLong("rate-window", time.Minute, "Rate limit window")
	)

	if err := ff.Parse(fs_, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs_))
		return fmt.Errorf("parsing flags: %w", err)
	}

	log := logger.New()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	provider, st, err := store.OpenProvider(ctx, *tablesURL)
	if err != nil {
		return fmt.Errorf("opening tables: %w", err)
	}
	checks := map[string]health.Check{}
	if st != nil {
		defer st.Close()
		checks["tables"] = func(ctx context.Context) error {
			_, err := st.Names(ctx)
			return err
		}
		log.InfoContext(ctx, "opened table store", "postgres", store.IsPostgres(*tablesURL))
	}

	// Periodically export pgxpool stats as Prometheus gauges
	if pg, ok := st.(*postgres.Store); ok {
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					s := pg.PoolStats()
					metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
					metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
					metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
					metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	registry := systems.NewRegistry(provider, log)
	for _, k := range systems.Kinds() {
		if _, err := registry.Get(ctx, systems.Config{Kind: k}); err != nil {
			return fmt.Errorf("loading %s: %w", k, err)
		}
	}

	origins := lo.Compact(lo.Map(strings.Split(*allowedOrigins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))

	router := web.NewRouter(registry, log, web.Options{
		Origins:   origins,
		RateLimit: middleware.Limit{Requests: int(*rateLimit), Window: *rateWindow},
		Checks:    checks,
	})
	defer router.Close()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.InfoContext(ctx, "received signal, shutting down gracefully", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting web server", "port", *port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
