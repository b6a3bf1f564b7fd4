package breaker

import (
	"testing"
	"time"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestBreaker(cfg Config) (*Breaker, *fakeClock) {
	clock := &fakeClock{current: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := New(cfg)
	b.now = clock.now
	b.windowStart = clock.current
	return b, clock
}

func TestAllowUpToMaxRecursion(t *testing.T) {
	b, _ := newTestBreaker(Config{MaxRecursion: 3, ResetInterval: 5 * time.Second})

	for i := 1; i <= 3; i++ {
		if !b.Allow() {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if b.Allow() {
		t.Fatal("call 4 should be refused")
	}
}

func TestRefusedCallsDoNotIncrement(t *testing.T) {
	b, _ := newTestBreaker(Config{MaxRecursion: 2, ResetInterval: 5 * time.Second})

	b.Allow()
	b.Allow()
	b.Allow() // refused
	b.Allow() // refused

	if got := b.Count(); got != 2 {
		t.Fatalf("refused calls must not increment the count, got %d", got)
	}
}

func TestWindowExpiryResets(t *testing.T) {
	b, clock := newTestBreaker(Config{MaxRecursion: 3, ResetInterval: 5 * time.Second})

	for i := 0; i < 3; i++ {
		b.Allow()
	}
	if b.Allow() {
		t.Fatal("should be tripped inside the window")
	}

	clock.advance(6 * time.Second)
	if !b.Allow() {
		t.Fatal("elapsed reset interval should reopen the breaker")
	}
	if got := b.Count(); got != 1 {
		t.Fatalf("count should restart at 1 after expiry, got %d", got)
	}
}

func TestExplicitReset(t *testing.T) {
	b, _ := newTestBreaker(Config{MaxRecursion: 2, ResetInterval: time.Hour})

	b.Allow()
	b.Allow()
	if b.Allow() {
		t.Fatal("should be tripped")
	}

	b.Reset()
	if !b.Allow() {
		t.Fatal("explicit Reset should reopen the breaker")
	}
}

func TestDefaults(t *testing.T) {
	b := New(Config{})
	if b.config.MaxRecursion != defaultMaxRecursion {
		t.Fatalf("default max recursion not applied: %d", b.config.MaxRecursion)
	}
	if b.config.ResetInterval != defaultResetInterval {
		t.Fatalf("default reset interval not applied: %v", b.config.ResetInterval)
	}
}

func TestNilBreakerAllows(t *testing.T) {
	var b *Breaker
	if !b.Allow() {
		t.Fatal("nil breaker must allow")
	}
	b.Reset() // must not panic
}
