package throttle

import (
	"context"
	"testing"
	"time"
)

func newTestMemory(cooldown time.Duration) (*Memory, *time.Time) {
	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	m := NewMemory(cooldown)
	m.now = func() time.Time { return now }
	return m, &now
}

func TestMemory_SecondAttemptWithinCooldownRejected(t *testing.T) {
	m, now := newTestMemory(15 * time.Second)
	ctx := context.Background()

	if ok, _ := m.Allow(ctx, "1.2.3.4"); !ok {
		t.Fatal("expected first attempt allowed")
	}
	*now = now.Add(14 * time.Second)
	if ok, _ := m.Allow(ctx, "1.2.3.4"); ok {
		t.Error("expected attempt within cooldown rejected")
	}
	*now = now.Add(time.Second)
	if ok, _ := m.Allow(ctx, "1.2.3.4"); !ok {
		t.Error("expected attempt allowed once cooldown elapsed")
	}
}

func TestMemory_RejectedAttemptDoesNotExtendCooldown(t *testing.T) {
	m, now := newTestMemory(15 * time.Second)
	ctx := context.Background()

	m.Allow(ctx, "k")
	*now = now.Add(10 * time.Second)
	m.Allow(ctx, "k")
	*now = now.Add(5 * time.Second)
	if ok, _ := m.Allow(ctx, "k"); !ok {
		t.Error("expected cooldown measured from the last allowed attempt")
	}
}

func TestMemory_KeysAreIndependent(t *testing.T) {
	m, _ := newTestMemory(15 * time.Second)
	ctx := context.Background()

	m.Allow(ctx, "a")
	if ok, _ := m.Allow(ctx, "b"); !ok {
		t.Error("expected other source allowed")
	}
}

func TestMemory_Prune(t *testing.T) {
	m, now := newTestMemory(15 * time.Second)
	ctx := context.Background()

	m.Allow(ctx, "old")
	*now = now.Add(10 * time.Second)
	m.Allow(ctx, "new")
	*now = now.Add(6 * time.Second)

	if n := m.Prune(); n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}
	if m.Len() != 1 {
		t.Errorf("expected 1 tracked source, got %d", m.Len())
	}
	if ok, _ := m.Allow(ctx, "new"); ok {
		t.Error("expected pruning not to reset an active cooldown")
	}
}
