package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Web server metrics.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romanization_http_requests_total",
		Help: "Total HTTP requests by route, method, status code, and resolved system",
	}, []string{"route", "method", "status", "system"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "romanization_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route", "method"})

	RateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "romanization_rate_limit_hits_total",
		Help: "Total rate limit rejections",
	})
)

// Engine metrics.
var (
	RomanizationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romanization_requests_total",
		Help: "Texts processed by system and mode",
	}, []string{"system", "mode"})

	RomanizedCharacters = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romanization_characters_total",
		Help: "Input characters processed by system",
	}, []string{"system"})

	SystemBuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "romanization_system_builds_total",
		Help: "System constructions by kind and result",
	}, []string{"system", "result"})

	SystemBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "romanization_system_build_duration_seconds",
		Help:    "Time spent loading tables and building a system",
		Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"system"})
)

// Database pool metrics (gauges updated periodically).
var (
	DBPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romanization_db_pool_total_conns",
		Help: "Total number of connections in the pool",
	})

	DBPoolIdleConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romanization_db_pool_idle_conns",
		Help: "Number of idle connections in the pool",
	})

	DBPoolAcquiredConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romanization_db_pool_acquired_conns",
		Help: "Number of acquired connections in the pool",
	})

	DBPoolMaxConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "romanization_db_pool_max_conns",
		Help: "Max connections configured for the pool",
	})
)
