package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/jusunglee/romanization/internal/metrics"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusTeapot)
})

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	rec := httptest.NewRecorder()
	Chain(ok, mark("a"), mark("b"), mark("c")).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{"any origin", nil, "https://example.com", "*"},
		{"listed origin", []string{"https://example.com"}, "https://example.com", "https://example.com"},
		{"unlisted origin", []string{"https://example.com"}, "https://evil.example", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			CORS(tt.origins)(ok).ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, http.StatusTeapot, rec.Code)
		})
	}

	rec := httptest.NewRecorder()
	CORS(nil)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(Limit{Requests: 2, Window: time.Minute})
	defer rl.Close()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	allowed, _ := rl.Allow("1.2.3.4")
	assert.True(t, allowed)
	allowed, _ = rl.Allow("1.2.3.4")
	assert.True(t, allowed)

	now = now.Add(20 * time.Second)
	allowed, retryAfter := rl.Allow("1.2.3.4")
	assert.False(t, allowed)
	assert.Equal(t, 40*time.Second, retryAfter)

	allowed, _ = rl.Allow("5.6.7.8")
	assert.True(t, allowed)

	now = now.Add(40 * time.Second)
	allowed, _ = rl.Allow("1.2.3.4")
	assert.True(t, allowed, "a new window starts once the old one ends")
}

func TestRateLimiterSweep(t *testing.T) {
	rl := NewRateLimiter(Limit{Requests: 1, Window: time.Minute})
	defer rl.Close()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("1.2.3.4")
	now = now.Add(30 * time.Second)
	rl.Allow("5.6.7.8")
	assert.Equal(t, 2, rl.tracked())

	now = now.Add(45 * time.Second)
	rl.sweep()
	assert.Equal(t, 1, rl.tracked())
}

func TestRateLimiterClose(t *testing.T) {
	rl := NewRateLimiter(Limit{Requests: 1, Window: time.Minute})

	closed := make(chan struct{})
	go func() {
		rl.Close()
		rl.Close()
		close(closed)
	}()
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not stop the sweep")
	}

	select {
	case <-rl.done:
	default:
		t.Fatal("sweep goroutine still running")
	}

	// Closing only stops the sweep; counting still works.
	allowed, _ := rl.Allow("1.2.3.4")
	assert.True(t, allowed)
}

func TestRateLimitDisabled(t *testing.T) {
	rl := NewRateLimiter(Limit{})
	defer rl.Close()

	h := RateLimit(rl)(ok)
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}
	assert.Zero(t, rl.tracked())
}

func TestRateLimit(t *testing.T) {
	rl := NewRateLimiter(Limit{Requests: 1, Window: time.Minute})
	defer rl.Close()

	h := RateLimit(rl)(ok)
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "9.9.9.9:1234"

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, rec.Body.String())
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", ClientIP(req))

	req.Header.Set("X-Real-IP", " 203.0.113.7 ")
	assert.Equal(t, "203.0.113.7", ClientIP(req))
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	rec := httptest.NewRecorder()
	RequestLogger(log)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/systems", nil))
	assert.Contains(t, buf.String(), "level=INFO")
	assert.Contains(t, buf.String(), "path=/api/v1/systems")
	assert.Contains(t, buf.String(), "status=418")
	assert.NotContains(t, buf.String(), "system=")
}

func TestRequestLoggerReportsSystem(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Annotate(r.Context(), "hanyu-pinyin", 2)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	rec := httptest.NewRecorder()
	h := Chain(annotated, PrometheusMetrics(), RequestLogger(log))
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/romanize", nil))

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "system=hanyu-pinyin")
	assert.Contains(t, buf.String(), "runes=2")
}

func TestPrometheusMetricsLabelsSystem(t *testing.T) {
	annotated := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Annotate(r.Context(), "attic-numerals", 3)
	})

	counter := metrics.HTTPRequestsTotal.WithLabelValues("unmatched", http.MethodPost, "200", "attic-numerals")
	before := testutil.ToFloat64(counter)
	PrometheusMetrics()(annotated).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))

	none := metrics.HTTPRequestsTotal.WithLabelValues("unmatched", http.MethodGet, "418", "none")
	before = testutil.ToFloat64(none)
	PrometheusMetrics()(ok).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(none))
}

func TestAnnotateOutsideChain(t *testing.T) {
	assert.NotPanics(t, func() {
		Annotate(context.Background(), "hanyu-pinyin", 1)
	})
}

func TestCacheControl(t *testing.T) {
	rec := httptest.NewRecorder()
	CacheControl("public, max-age=60")(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
}
