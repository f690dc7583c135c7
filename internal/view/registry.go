package view

import (
	"context"
	"time"

	"github.com/joestump/journey-web/internal/metrics"
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/zap"
)

const (
	// DefaultIdleTTL is how long a guard survives without a request.
	DefaultIdleTTL = 30 * time.Minute
	// DefaultMaxGuards caps how many visitors keep a guard at once.
	DefaultMaxGuards = 10000
)

// RegistryOptions tunes a Registry. Zero values pick the defaults.
type RegistryOptions struct {
	IdleTTL   time.Duration
	MaxGuards int
}

// Registry holds the guard of each visitor's current page. A full page load
// remounts it; HTMX navigation inside the page reuses it.
type Registry struct {
	guards    cmap.ConcurrentMap[string, *Guard]
	cfg       GuardConfig
	health    HealthChecker
	idleTTL   time.Duration
	maxGuards int
	logger    *zap.Logger
}

// NewRegistry creates a Registry whose guards share cfg and health.
func NewRegistry(cfg GuardConfig, health HealthChecker, opts RegistryOptions, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.IdleTTL <= 0 {
		opts.IdleTTL = DefaultIdleTTL
	}
	if opts.MaxGuards <= 0 {
		opts.MaxGuards = DefaultMaxGuards
	}
	return &Registry{
		guards:    cmap.New[*Guard](),
		cfg:       cfg,
		health:    health,
		idleTTL:   opts.IdleTTL,
		maxGuards: opts.MaxGuards,
		logger:    logger,
	}
}

// Ephemeral mounts a guard that is not kept. Its health check runs until the
// backend answers.
func (r *Registry) Ephemeral() *Guard {
	return NewGuard(r.cfg, r.health, r.logger)
}

// full reports whether a new visitor would exceed the cap. The count is
// taken outside the shard locks, so the cap is approximate.
func (r *Registry) full(id string) bool {
	if r.guards.Has(id) {
		return false
	}
	return r.guards.Count() >= r.maxGuards
}

// Acquire returns the guard of id's current page, mounting one if there is
// none. The guard is marked as seen before it is returned, so a concurrent
// Sweep keeps it.
func (r *Registry) Acquire(id string) *Guard {
	if r.full(id) {
		return r.Ephemeral()
	}
	now := time.Now()
	return r.guards.Upsert(id, nil, func(exist bool, inMap, _ *Guard) *Guard {
		if exist {
			inMap.touch(now)
			return inMap
		}
		metrics.GuardsActive.Inc()
		return NewGuard(r.cfg, r.health, r.logger)
	})
}

// Remount replaces id's guard with a fresh one, as a full page load does,
// and unmounts the previous guard.
func (r *Registry) Remount(id string) *Guard {
	if r.full(id) {
		return r.Ephemeral()
	}
	var prev *Guard
	g := r.guards.Upsert(id, nil, func(exist bool, inMap, _ *Guard) *Guard {
		if exist {
			prev = inMap
		} else {
			metrics.GuardsActive.Inc()
		}
		return NewGuard(r.cfg, r.health, r.logger)
	})
	if prev != nil {
		prev.Unmount()
	}
	return g
}

// Len returns the number of kept guards.
func (r *Registry) Len() int {
	return r.guards.Count()
}

// Sweep unmounts guards idle for longer than the registry TTL and returns
// how many were removed.
func (r *Registry) Sweep(now time.Time) int {
	var idle []*Guard
	for _, id := range r.guards.Keys() {
		r.guards.RemoveCb(id, func(_ string, g *Guard, exists bool) bool {
			if !exists || g.idleSince(now) <= r.idleTTL {
				return false
			}
			idle = append(idle, g)
			return true
		})
	}
	for _, g := range idle {
		metrics.GuardsActive.Dec()
		g.Unmount()
	}
	if len(idle) > 0 {
		r.logger.Debug("swept idle guards", zap.Int("count", len(idle)), zap.Int("remaining", r.Len()))
	}
	return len(idle)
}

// Run sweeps every interval until ctx is done, then unmounts every guard.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			r.Sweep(now)
		case <-ctx.Done():
			r.Close()
			return nil
		}
	}
}

// Close unmounts and removes every guard.
func (r *Registry) Close() {
	for _, id := range r.guards.Keys() {
		if g, ok := r.guards.Pop(id); ok {
			metrics.GuardsActive.Dec()
			g.Unmount()
		}
	}
}
