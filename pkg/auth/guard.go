package auth

import (
	"context"
	"sync"
	"time"
)

// LoginGuard counts failed logins per source and locks a source out for a
// while once it reaches the failure limit.
type LoginGuard struct {
	maxFailures int
	lockout     time.Duration
	idleTTL     time.Duration
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*loginFailures
}

type loginFailures struct {
	fails        int
	blockedUntil time.Time
	lastFailure  time.Time
}

// NewLoginGuard locks a source for lockout after maxFailures consecutive
// failures. Sources that stop failing are forgotten after idleTTL.
func NewLoginGuard(maxFailures int, lockout, idleTTL time.Duration) *LoginGuard {
	if maxFailures < 1 {
		maxFailures = 1
	}
	return &LoginGuard{
		maxFailures: maxFailures,
		lockout:     lockout,
		idleTTL:     idleTTL,
		now:         time.Now,
		entries:     make(map[string]*loginFailures),
	}
}

// Locked reports whether key is locked out and for how much longer.
func (g *LoginGuard) Locked(key string) (bool, time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.entries[key]
	if !ok || e.blockedUntil.IsZero() {
		return false, 0
	}
	now := g.now()
	if !now.Before(e.blockedUntil) {
		// Lockout over: the source starts from a clean slate.
		delete(g.entries, key)
		return false, 0
	}
	return true, e.blockedUntil.Sub(now)
}

// Fail records a failed attempt and reports whether key is now locked.
func (g *LoginGuard) Fail(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	e, ok := g.entries[key]
	if !ok {
		e = &loginFailures{}
		g.entries[key] = e
	}
	e.fails++
	e.lastFailure = now
	if e.fails >= g.maxFailures {
		e.blockedUntil = now.Add(g.lockout)
		return true
	}
	return false
}

// Reset clears the failure count for key after a successful login.
func (g *LoginGuard) Reset(key string) {
	g.mu.Lock()
	delete(g.entries, key)
	g.mu.Unlock()
}

// Prune forgets lockouts that are over and sources idle for longer than
// idleTTL. It returns the number of removed entries.
func (g *LoginGuard) Prune() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	removed := 0
	for key, e := range g.entries {
		locked := !e.blockedUntil.IsZero() && now.Before(e.blockedUntil)
		if locked {
			continue
		}
		if !e.blockedUntil.IsZero() || now.Sub(e.lastFailure) >= g.idleTTL {
			delete(g.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sources.
func (g *LoginGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

// Run prunes every interval until ctx is done.
func (g *LoginGuard) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Prune()
		}
	}
}
