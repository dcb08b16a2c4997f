// Package throttle gates how often one source may submit the request form.
//
// It is best-effort flood protection, not a security boundary: two requests
// from the same source arriving together may both pass.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Throttle decides whether key may act now. An allowed call records the
// attempt; a rejected call does not.
type Throttle interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Memory is a process-local Throttle keyed by source.
type Memory struct {
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

// NewMemory creates a Memory throttle with the given cooldown.
func NewMemory(cooldown time.Duration) *Memory {
	return &Memory{
		cooldown: cooldown,
		now:      time.Now,
		last:     make(map[string]time.Time),
	}
}

var _ Throttle = (*Memory)(nil)

// Allow reports whether at least cooldown has passed since key's last
// allowed attempt.
func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.last[key]; ok && now.Sub(last) < m.cooldown {
		return false, nil
	}
	m.last[key] = now
	return true, nil
}

// Prune drops sources whose cooldown is over; they would be allowed anyway.
func (m *Memory) Prune() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, last := range m.last {
		if now.Sub(last) >= m.cooldown {
			delete(m.last, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked sources.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.last)
}

// Run prunes every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Prune()
		}
	}
}
