package web

import (
	"log/slog"
	"net/http"

	"github.com/jusunglee/romanization/internal/health"
	"github.com/jusunglee/romanization/internal/systems"
	"github.com/jusunglee/romanization/internal/web/handlers"
	"github.com/jusunglee/romanization/internal/web/middleware"
)

type Options struct {
	// Origins allowed by CORS; empty allows any.
	Origins   []string
	RateLimit middleware.Limit
	Checks    map[string]health.Check
}

type Router struct {
	registry *systems.Registry
	log      *slog.Logger
	opts     Options
	limiter  *middleware.RateLimiter
}

func NewRouter(registry *systems.Registry, log *slog.Logger, opts Options) *Router {
	return &Router{
		registry: registry,
		log:      log,
		opts:     opts,
		limiter:  middleware.NewRateLimiter(opts.RateLimit),
	}
}

// Close stops the rate limiter's background work.
func (r *Router) Close() {
	r.limiter.Close()
}

func (r *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	romanizeHandler := handlers.NewRomanizeHandler(r.registry, r.log)

	post := func(h http.HandlerFunc) http.Handler {
		return middleware.Chain(
			h,
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.RateLimit(r.limiter),
		)
	}

	mux.Handle("POST /api/v1/romanize", post(romanizeHandler.Romanize))
	mux.Handle("POST /api/v1/readings", post(romanizeHandler.Readings))
	mux.Handle("POST /api/v1/numerals", post(romanizeHandler.Numerals))

	mux.Handle("GET /api/v1/systems",
		middleware.Chain(
			http.HandlerFunc(romanizeHandler.Systems),
			middleware.PrometheusMetrics(),
			middleware.RequestLogger(r.log),
			middleware.CacheControl("public, max-age=3600"),
		),
	)

	mux.Handle("GET /health", health.Handler(r.opts.Checks))

	return middleware.CORS(r.opts.Origins)(mux)
}
