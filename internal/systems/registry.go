package systems

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jusunglee/romanization/internal/metrics"
	"github.com/jusunglee/romanization/internal/readings"
	"github.com/jusunglee/romanization/internal/tables"
)

// Config selects the variant of a system to build.
type Config struct {
	Kind Kind
	// Reading types to request; 0 picks the system's default. Ignored by
	// systems without reading types.
	Readings readings.Type
}

// Registry builds systems from a table provider and keeps one instance per
// Config. The zero value is not usable; create one with NewRegistry.
type Registry struct {
	provider tables.Provider
	log      *slog.Logger

	mu      sync.RWMutex
	systems map[Config]System
	builds  singleflight.Group
}

func NewRegistry(provider tables.Provider, log *slog.Logger) *Registry {
	if log == nil {
		log = slog.Default()
	}
	return &Registry{
		provider: provider,
		log:      log,
		systems:  make(map[Config]System),
	}
}

// Get returns the system for cfg, building it on first use. Concurrent
// callers asking for the same Config share one build; builds of different
// Configs run in parallel. A failed build is not cached, so the next call
// tries again with whatever the provider returns then.
func (r *Registry) Get(ctx context.Context, cfg Config) (System, error) {
	if ReadingTypeNames(cfg.Kind) == nil {
		cfg.Readings = 0
	}

	if s, ok := r.cached(cfg); ok {
		return s, nil
	}

	// The build outlives a cancelled caller so other waiters still get it.
	buildCtx := context.WithoutCancel(ctx)
	ch := r.builds.DoChan(fmt.Sprintf("%s/%d", cfg.Kind, cfg.Readings), func() (any, error) {
		if s, ok := r.cached(cfg); ok {
			return s, nil
		}
		s, err := r.build(buildCtx, cfg)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.systems[cfg] = s
		r.mu.Unlock()
		return s, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(System), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) cached(cfg Config) (System, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.systems[cfg]
	return s, ok
}

func (r *Registry) build(ctx context.Context, cfg Config) (System, error) {
	start := time.Now()
	s, err := New(ctx, cfg, r.provider)
	if err != nil {
		metrics.SystemBuildsTotal.WithLabelValues(string(cfg.Kind), "error").Inc()
		r.log.ErrorContext(ctx, "building system", "system", cfg.Kind, "error", err)
		return nil, err
	}
	metrics.SystemBuildsTotal.WithLabelValues(string(cfg.Kind), "ok").Inc()
	metrics.SystemBuildDuration.WithLabelValues(string(cfg.Kind)).Observe(time.Since(start).Seconds())
	r.log.DebugContext(ctx, "built system", "system", cfg.Kind, "readings", uint32(cfg.Readings))
	return s, nil
}

// New builds a system without caching it.
func New(ctx context.Context, cfg Config, p tables.Provider) (System, error) {
	switch cfg.Kind {
	case KindHanyuPinyin:
		s, err := NewHanyuPinyin(ctx, p, cfg.Readings)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindHanjaReadings:
		if cfg.Readings != 0 && !ReadingHangeul.Has(cfg.Readings) {
			return nil, fmt.Errorf("hanja readings: unsupported reading types %b", cfg.Readings)
		}
		s, err := NewHanjaReadings(ctx, p, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	case KindRevisedRomanization:
		return NewRevisedRomanization(), nil
	case KindAtticNumerals:
		s, err := NewAtticNumerals()
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}
