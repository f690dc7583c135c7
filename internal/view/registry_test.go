package view

import (
	"context"
	"testing"
	"time"
)

func newTestRegistry(t *testing.T, opts RegistryOptions) *Registry {
	t.Helper()
	r := NewRegistry(DefaultGuardConfig(), &countingChecker{}, opts, nil)
	t.Cleanup(r.Close)
	return r
}

func TestRegistry_AcquireReturnsSameGuard(t *testing.T) {
	r := newTestRegistry(t, RegistryOptions{IdleTTL: time.Minute})

	a := r.Acquire("visitor-a")
	if a != r.Acquire("visitor-a") {
		t.Error("Acquire returned a different guard for the same id")
	}
	if a == r.Acquire("visitor-b") {
		t.Error("Acquire shared a guard between visitors")
	}
	if got := r.Len(); got != 2 {
		t.Errorf("Len = %d, want 2", got)
	}
}

func TestRegistry_RemountReplacesGuard(t *testing.T) {
	r := newTestRegistry(t, RegistryOptions{IdleTTL: time.Minute})

	first := r.Remount("visitor")
	second := r.Remount("visitor")
	if first == second {
		t.Fatal("Remount returned the previous guard")
	}
	if first.ctx.Err() == nil {
		t.Error("previous guard was not unmounted")
	}
	if second.ctx.Err() != nil {
		t.Error("fresh guard is already unmounted")
	}
	if r.Acquire("visitor") != second {
		t.Error("Acquire did not return the remounted guard")
	}
	if got := r.Len(); got != 1 {
		t.Errorf("Len = %d, want 1", got)
	}
}

func TestRegistry_EphemeralGuardIsNotKept(t *testing.T) {
	r := newTestRegistry(t, RegistryOptions{})

	g := r.Ephemeral()
	if g == nil {
		t.Fatal("Ephemeral returned nil")
	}
	if got := r.Len(); got != 0 {
		t.Errorf("Len = %d, want 0", got)
	}
}

func TestRegistry_CapsKeptGuards(t *testing.T) {
	r := newTestRegistry(t, RegistryOptions{MaxGuards: 2})

	a := r.Acquire("a")
	r.Remount("b")
	over := r.Acquire("c")
	r.Remount("d")

	if got := r.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
	if over == nil || over == a {
		t.Error("visitor over the cap did not get its own guard")
	}
	// Visitors already kept are still served from the registry.
	if r.Acquire("a") != a {
		t.Error("kept visitor lost its guard at capacity")
	}
	if r.Remount("a") == a {
		t.Error("Remount at capacity reused the previous guard")
	}
	if got := r.Len(); got != 2 {
		t.Errorf("Len = %d after remount at capacity, want 2", got)
	}
}

func TestRegistry_AcquireMarksGuardSeen(t *testing.T) {
	ttl := time.Minute
	r := newTestRegistry(t, RegistryOptions{IdleTTL: ttl})

	g := r.Acquire("visitor")
	g.mu.Lock()
	g.lastSeen = time.Now().Add(-2 * ttl)
	g.mu.Unlock()

	if r.Acquire("visitor") != g {
		t.Fatal("Acquire returned a different guard")
	}
	if n := r.Sweep(time.Now()); n != 0 {
		t.Fatalf("Sweep removed %d guards right after Acquire, want 0", n)
	}
	if g.ctx.Err() != nil {
		t.Error("acquired guard was unmounted by Sweep")
	}
}

func TestRegistry_SweepRemovesOnlyIdleGuards(t *testing.T) {
	ttl := time.Minute
	r := newTestRegistry(t, RegistryOptions{IdleTTL: ttl})

	idle := r.Acquire("idle")
	r.Acquire("fresh")
	now := time.Now()
	idle.mu.Lock()
	idle.lastSeen = now.Add(-2 * ttl)
	idle.mu.Unlock()

	if n := r.Sweep(now); n != 1 {
		t.Fatalf("Sweep removed %d guards, want 1", n)
	}
	if got := r.Len(); got != 1 {
		t.Errorf("Len = %d, want 1", got)
	}
	if idle.ctx.Err() == nil {
		t.Error("swept guard was not unmounted")
	}
	if r.Acquire("idle") == idle {
		t.Error("Acquire returned the swept guard")
	}
}

func TestRegistry_RunClosesOnCancel(t *testing.T) {
	r := NewRegistry(DefaultGuardConfig(), &countingChecker{}, RegistryOptions{IdleTTL: time.Minute}, nil)
	g := r.Acquire("visitor")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, time.Hour) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if r.Len() != 0 {
		t.Errorf("Len = %d after Run returned, want 0", r.Len())
	}
	if g.ctx.Err() == nil {
		t.Error("guard not unmounted on shutdown")
	}
}
