// Package requests wraps outbound API calls with per-call timeouts and a
// cancellation registry.
//
// Cancellation is advisory, not preemptive: the wrapped action must observe
// its context cooperatively. The registry invariant is that every tracked
// call is removed exactly once, on settle, regardless of outcome — the
// active set never leaks entries.
package requests

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout reports a call that exceeded its per-call deadline.
	ErrTimeout = errors.New("request timed out")
	// ErrCancelled reports a call cancelled by CancelAll or a parent context.
	ErrCancelled = errors.New("request cancelled")
)

// Manager tracks in-flight outbound calls so they can be cancelled as a
// group. Safe for concurrent use. Each engine owns its own Manager; nothing
// is shared across instances.
type Manager struct {
	mu     sync.Mutex
	nextID uint64
	active map[uint64]context.CancelFunc
}

// New creates an empty request [Manager].
func New() *Manager {
	return &Manager{active: make(map[uint64]context.CancelFunc)}
}

// Do runs fn under a context bounded by timeout and registered for group
// cancellation. Context errors are translated into [ErrTimeout] and
// [ErrCancelled]; any other error from fn passes through unchanged.
func Do[T any](ctx context.Context, m *Manager, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	if m == nil {
		return zero, ErrCancelled
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	id := m.register(cancel)
	defer m.release(id, cancel)

	result, err := fn(callCtx)
	if err == nil {
		return result, nil
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(callCtx.Err(), context.DeadlineExceeded):
		return zero, ErrTimeout
	case errors.Is(err, context.Canceled), errors.Is(callCtx.Err(), context.Canceled):
		return zero, ErrCancelled
	default:
		return zero, err
	}
}

// CancelAll triggers every registered cancellation signal and reports how
// many registrations it signalled. In-flight actions observe it through
// their contexts; the registry entries are released by the owning Do calls
// as they settle.
func (m *Manager) CancelAll() int {
	if m == nil {
		return 0
	}

	m.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(m.active))
	for _, cancel := range m.active {
		cancels = append(cancels, cancel)
	}
	m.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
	return len(cancels)
}

// Active returns the number of calls currently registered.
func (m *Manager) Active() int {
	if m == nil {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

func (m *Manager) register(cancel context.CancelFunc) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := m.nextID
	m.active[id] = cancel
	return id
}

func (m *Manager) release(id uint64, cancel context.CancelFunc) {
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
	cancel()
}
