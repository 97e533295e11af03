package authkit

import (
	"context"
	"time"

	"github.com/restodash/authkit/internal/metrics"
)

// Guard enforces session expiration. It is the only component allowed
// to force a logout; everything else either reads state or asks the
// guard.
type Guard struct {
	manager *Manager
}

// IsExpired reports whether the current session is expired at this
// instant, leeway included. Anonymous counts as expired.
func (g *Guard) IsExpired() bool {
	m := g.manager
	return m.snapshot().ExpiredAt(m.now(), m.cfg.Guard.ExpiryLeeway)
}

// CheckAndEnforce forces a logout if the current session is expired.
// It returns true only when this call terminated the session; with no
// session held it returns false, leaving 401 responses to surface any
// server-side disagreement. Safe to call from timers, request paths,
// and visibility handlers concurrently; the logout fires once.
func (g *Guard) CheckAndEnforce(ctx context.Context) bool {
	m := g.manager
	m.metrics.Inc(metrics.MetricGuardChecks)

	sess := m.snapshot()
	if sess == nil || !sess.ExpiredAt(m.now(), m.cfg.Guard.ExpiryLeeway) {
		return false
	}
	return m.forceLogout(ctx, ReasonTokenExpired)
}

// EnforceUnauthorized terminates the session after the backend rejected
// its token, regardless of what the local clock says about expiry. The
// server is authoritative. Returns true when a session was terminated.
func (g *Guard) EnforceUnauthorized(ctx context.Context) bool {
	return g.manager.forceLogout(ctx, ReasonUnauthorized)
}

// Watch runs CheckAndEnforce on the configured interval until ctx is
// canceled. Run it in its own goroutine:
//
//	go manager.Guard().Watch(ctx)
func (g *Guard) Watch(ctx context.Context) {
	interval := g.manager.cfg.Guard.CheckInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.CheckAndEnforce(ctx)
		}
	}
}
