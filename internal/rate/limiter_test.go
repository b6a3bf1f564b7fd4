package rate

import (
	"testing"
	"time"
)

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time { return c.current }

func (c *fakeClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestLimiter(cfg Config) (*Limiter, *fakeClock) {
	clock := &fakeClock{current: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(cfg)
	l.now = clock.now
	return l, clock
}

func TestAllowWithinBudget(t *testing.T) {
	l, _ := newTestLimiter(Config{MaxAttempts: 10, Window: 60 * time.Second})

	for i := 1; i <= 10; i++ {
		if !l.Allow("c1") {
			t.Fatalf("call %d should be allowed", i)
		}
	}
	if l.Allow("c1") {
		t.Fatal("call 11 should be rate limited")
	}
}

func TestWindowSlidesOpen(t *testing.T) {
	l, clock := newTestLimiter(Config{MaxAttempts: 10, Window: 60 * time.Second})

	for i := 0; i < 11; i++ {
		l.Allow("c1")
	}
	if l.Allow("c1") {
		t.Fatal("still inside the window, should be limited")
	}

	clock.advance(120 * time.Second)
	if !l.Allow("c1") {
		t.Fatal("after the window elapsed the key should be allowed again")
	}
}

func TestThrottledCallsStillCount(t *testing.T) {
	l, clock := newTestLimiter(Config{MaxAttempts: 2, Window: 60 * time.Second})

	l.Allow("c1")
	l.Allow("c1")
	if l.Allow("c1") {
		t.Fatal("third call should be limited")
	}

	// The throttled call was recorded, so 30s later the window still holds
	// three attempts and the key stays limited.
	clock.advance(30 * time.Second)
	if l.Allow("c1") {
		t.Fatal("throttled attempt should extend the window")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(Config{MaxAttempts: 2, Window: 60 * time.Second})

	l.Allow("c1")
	l.Allow("c1")
	if l.Allow("c1") {
		t.Fatal("c1 should be limited")
	}
	if !l.Allow("c2") {
		t.Fatal("c2 must not inherit c1's attempts")
	}
}

func TestEmptyKeySharesAnonymousBucket(t *testing.T) {
	l, _ := newTestLimiter(Config{MaxAttempts: 2, Window: 60 * time.Second})

	l.Allow("")
	l.Allow("")
	if l.Allow(AnonymousBucket) {
		t.Fatal("anonymous callers share one bucket")
	}
}

func TestAttemptsDoesNotRecord(t *testing.T) {
	l, _ := newTestLimiter(Config{MaxAttempts: 5, Window: 60 * time.Second})

	l.Allow("c1")
	l.Allow("c1")
	if got := l.Attempts("c1"); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
	if got := l.Attempts("c1"); got != 2 {
		t.Fatalf("Attempts must not record: expected 2, got %d", got)
	}
}

func TestResetClearsKey(t *testing.T) {
	l, _ := newTestLimiter(Config{MaxAttempts: 1, Window: 60 * time.Second})

	l.Allow("c1")
	if l.Allow("c1") {
		t.Fatal("should be limited before reset")
	}
	l.Reset("c1")
	if !l.Allow("c1") {
		t.Fatal("should be allowed after reset")
	}
}

func TestCleanupDropsExpiredKeys(t *testing.T) {
	l, clock := newTestLimiter(Config{MaxAttempts: 10, Window: 60 * time.Second})

	l.Allow("old")
	clock.advance(61 * time.Second)
	l.Allow("fresh")
	l.Cleanup()

	l.mu.Lock()
	_, oldPresent := l.attempts["old"]
	_, freshPresent := l.attempts["fresh"]
	l.mu.Unlock()

	if oldPresent {
		t.Fatal("expired key should be removed by Cleanup")
	}
	if !freshPresent {
		t.Fatal("fresh key must survive Cleanup")
	}
}

// Invariant: the attempt list never contains entries older than the window.
func TestNoStaleEntriesAfterAllow(t *testing.T) {
	l, clock := newTestLimiter(Config{MaxAttempts: 10, Window: 60 * time.Second})

	l.Allow("c1")
	clock.advance(2 * time.Minute)
	l.Allow("c1")

	l.mu.Lock()
	list := l.attempts["c1"]
	cutoff := clock.current.Add(-60 * time.Second)
	l.mu.Unlock()

	for _, ts := range list {
		if !ts.After(cutoff) {
			t.Fatalf("stale entry %v survived past cutoff %v", ts, cutoff)
		}
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 surviving entry, got %d", len(list))
	}
}

func TestNilLimiterAllows(t *testing.T) {
	var l *Limiter
	if !l.Allow("c1") {
		t.Fatal("nil limiter must allow")
	}
}
