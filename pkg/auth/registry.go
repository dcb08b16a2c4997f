package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Registry is the in-memory store of admin sessions. Sessions do not
// survive a restart.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a Registry whose sessions live for ttl.
func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create issues a new session for username.
func (r *Registry) Create(username string) (*Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	now := r.now()
	s := &Session{
		ID:        token,
		Username:  username,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.sessions[token] = s
	r.mu.Unlock()
	return s, nil
}

// Lookup returns the session for id if it exists and has not expired.
// An expired session found here is deleted.
func (r *Registry) Lookup(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if s.Expired(r.now()) {
		r.deleteIfExpired(id)
		return nil, false
	}
	copied := *s
	return &copied, true
}

// Delete removes the session. Deleting an unknown id is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of stored sessions, expired ones included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) deleteIfExpired(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok || !s.Expired(r.now()) {
		return false
	}
	delete(r.sessions, id)
	return true
}

// Sweep deletes expired sessions and returns how many were removed.
// Expired ids are collected under the read lock and deleted one at a time,
// so the write lock is only ever held for a single entry.
func (r *Registry) Sweep() int {
	now := r.now()
	var expired []string
	r.mu.RLock()
	for id, s := range r.sessions {
		if s.Expired(now) {
			expired = append(expired, id)
		}
	}
	r.mu.RUnlock()

	removed := 0
	for _, id := range expired {
		if r.deleteIfExpired(id) {
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				slog.Debug("expired admin sessions swept", "count", n)
			}
		}
	}
}
