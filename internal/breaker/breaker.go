// Package breaker guards the session engine against recursive
// re-authentication storms.
//
// Unlike a classic failure-counting circuit breaker, this one counts
// authentication checks themselves: a navigation guard that triggers a check
// that triggers a redirect that triggers another check will trip the breaker
// within one reset window and every further check becomes a silent no-op.
// Scope is strictly local to one engine instance — the breaker never
// coordinates across runtime contexts.
package breaker

import (
	"sync"
	"time"
)

// Config holds recursion guard tuning parameters.
type Config struct {
	// MaxRecursion is the number of checks permitted per reset window.
	MaxRecursion int
	// ResetInterval is the window after which the count self-resets.
	ResetInterval time.Duration
}

const (
	defaultMaxRecursion  = 3
	defaultResetInterval = 5 * time.Second
)

// Breaker is the recursion guard. All methods are safe for concurrent use.
type Breaker struct {
	mu          sync.Mutex
	config      Config
	count       int
	windowStart time.Time

	// now is injectable for simulated-time tests.
	now func() time.Time
}

// New creates a [Breaker], substituting defaults for zero config fields.
func New(cfg Config) *Breaker {
	if cfg.MaxRecursion <= 0 {
		cfg.MaxRecursion = defaultMaxRecursion
	}
	if cfg.ResetInterval <= 0 {
		cfg.ResetInterval = defaultResetInterval
	}
	b := &Breaker{config: cfg, now: time.Now}
	b.windowStart = b.now()
	return b
}

// WithClock replaces the breaker's time source. Used by simulated-time
// tests; returns the receiver for chaining.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	if b != nil && now != nil {
		b.now = now
		b.windowStart = now()
	}
	return b
}

// Allow reports whether another authentication check may proceed. The count
// is incremented only on permitted calls; refused calls do not extend the
// window.
func (b *Breaker) Allow() bool {
	if b == nil {
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if now.Sub(b.windowStart) > b.config.ResetInterval {
		b.count = 0
		b.windowStart = now
	}

	if b.count >= b.config.MaxRecursion {
		return false
	}

	b.count++
	return true
}

// Reset clears the recursion count. Called after every successful
// authentication transition so legitimate follow-up checks are not penalized
// by a prior storm.
func (b *Breaker) Reset() {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.count = 0
	b.windowStart = b.now()
}

// Count returns the current recursion count. Intended for introspection and
// tests.
func (b *Breaker) Count() int {
	if b == nil {
		return 0
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}
