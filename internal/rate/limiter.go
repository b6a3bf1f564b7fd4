package rate

import (
	"sync"
	"time"
)

// AnonymousBucket is the shared key used when a caller supplies no client
// identifier. Unidentified callers share fate: one abusive anonymous caller
// throttles all of them. Documented trade-off.
const AnonymousBucket = "__anonymous__"

// Config holds sliding-window limiter tuning parameters.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

const (
	defaultMaxAttempts = 10
	defaultWindow      = 60 * time.Second
)

// Limiter enforces a per-key sliding-window attempt budget. All methods are
// safe for concurrent use. State never leaves the owning instance.
type Limiter struct {
	mu       sync.Mutex
	config   Config
	attempts map[string][]time.Time

	// now is injectable for simulated-time tests.
	now func() time.Time
}

// New creates a sliding-window [Limiter], substituting defaults for zero
// config fields.
func New(cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = defaultWindow
	}
	return &Limiter{
		config:   cfg,
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// WithClock replaces the limiter's time source. Used by simulated-time
// tests; returns the receiver for chaining.
func (l *Limiter) WithClock(now func() time.Time) *Limiter {
	if l != nil && now != nil {
		l.now = now
	}
	return l
}

// Allow records an attempt for key and reports whether the caller is still
// within budget. The attempt is recorded even when the answer is false.
// An empty key falls into [AnonymousBucket].
func (l *Limiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	if key == "" {
		key = AnonymousBucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	kept := l.prune(key, now)
	kept = append(kept, now)
	l.attempts[key] = kept

	return len(kept) <= l.config.MaxAttempts
}

// Attempts returns the number of attempts currently inside the window for
// key, without recording one.
func (l *Limiter) Attempts(key string) int {
	if l == nil {
		return 0
	}
	if key == "" {
		key = AnonymousBucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	kept := l.prune(key, l.now())
	if len(kept) == 0 {
		delete(l.attempts, key)
	} else {
		l.attempts[key] = kept
	}
	return len(kept)
}

// Reset clears the attempt list for key.
func (l *Limiter) Reset(key string) {
	if l == nil {
		return
	}
	if key == "" {
		key = AnonymousBucket
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// Cleanup removes keys with no attempts inside the window. Callable
// independently for periodic housekeeping and test isolation.
func (l *Limiter) Cleanup() {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key := range l.attempts {
		kept := l.prune(key, now)
		if len(kept) == 0 {
			delete(l.attempts, key)
		} else {
			l.attempts[key] = kept
		}
	}
}

// prune drops entries older than the window for key. Caller holds the lock.
func (l *Limiter) prune(key string, now time.Time) []time.Time {
	list := l.attempts[key]
	cutoff := now.Add(-l.config.Window)

	// Timestamps are appended in order, so find the first survivor.
	i := 0
	for i < len(list) && !list[i].After(cutoff) {
		i++
	}
	return list[i:]
}
