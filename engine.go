package authcore

import (
	"context"
	"sync"
	"time"

	"github.com/rodaquino-OMNI/authcore/broadcast"
	"github.com/rodaquino-OMNI/authcore/internal/breaker"
	"github.com/rodaquino-OMNI/authcore/internal/rate"
	"github.com/rodaquino-OMNI/authcore/internal/requests"
	"github.com/rodaquino-OMNI/authcore/session"
	"github.com/rodaquino-OMNI/authcore/token"
)

// Engine defines a public type used by authcore APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// All session transitions are serialized under one mutex so that observers
// see a single, ordered history of phases regardless of caller concurrency.
type Engine struct {
	config       Config
	api          APIClient
	validator    *token.Validator
	loginLimiter *rate.Limiter
	breaker      *breaker.Breaker
	requests     *requests.Manager
	sync         broadcast.Broadcaster[SessionEvent]
	syncSub      broadcast.Subscriber[SessionEvent]
	observers    *broadcast.Memory[Session]
	audit        *auditDispatcher
	metrics      *Metrics
	store        *session.Store
	storeKey     string
	instanceID   string
	ownsSync     bool

	// now is swapped for a fake clock in tests.
	now func() time.Time

	mu            sync.Mutex
	session       Session
	generation    uint64
	lastCheck     time.Time
	lastAppliedID string
	checkFlight   *checkFlight
	loginFlight   *loginFlight

	syncStop    context.CancelFunc
	syncWg      sync.WaitGroup
	persistStop context.CancelFunc
	persistWg   sync.WaitGroup
	closeOnce   sync.Once
}

// checkFlight is the shared result of one in-flight profile call. Waiters
// block on done and then read the settled snapshot.
type checkFlight struct {
	done    chan struct{}
	session Session
	err     error
}

// loginFlight is the shared result of one in-flight login call. Concurrent
// Login callers block on done and resolve to the same outcome.
type loginFlight struct {
	done   chan struct{}
	result LoginResult
	err    error
}

// InstanceID returns the unique origin identifier used for sync messages.
func (e *Engine) InstanceID() string {
	if e == nil {
		return ""
	}
	return e.instanceID
}

// State returns a defensive copy of the current session.
//
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) State() Session {
	if e == nil {
		return Session{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return cloneSession(e.session)
}

// Subscribe registers a local observer of session transitions. Each state
// change is delivered as a snapshot; slow observers miss intermediate
// snapshots rather than blocking the engine. The subscription ends when ctx
// is cancelled or the engine closes.
func (e *Engine) Subscribe(ctx context.Context) broadcast.Subscriber[Session] {
	if e == nil || e.observers == nil {
		return nil
	}
	return e.observers.Subscribe(ctx, "")
}

// Close stops the sync receive loop, drains the audit dispatcher, and
// cancels any in-flight requests. The engine must not be used afterwards.
//
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.closeOnce.Do(func() {
		if e.syncStop != nil {
			e.syncStop()
		}
		if e.syncSub != nil {
			_ = e.syncSub.Close()
		}
		e.syncWg.Wait()
		if e.ownsSync && e.sync != nil {
			_ = e.sync.Close()
		}
		if e.persistStop != nil {
			e.persistStop()
		}
		e.persistWg.Wait()
		if e.observers != nil {
			_ = e.observers.Close()
		}
		e.requests.CancelAll()
		e.audit.Close()
	})
}

// AuditDropped reports how many audit events were discarded under
// backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) clock() time.Time {
	if e.now != nil {
		return e.now()
	}
	return time.Now()
}

// setSessionLocked replaces the session and notifies local observers.
// Callers hold e.mu.
func (e *Engine) setSessionLocked(s Session) {
	e.session = s
	e.notifyObserversLocked()
}

func (e *Engine) notifyObserversLocked() {
	if e.observers == nil {
		return
	}
	snapshot := cloneSession(e.session)
	msg := broadcast.NewMessage(e.instanceID, broadcast.Type(snapshot.Phase.String()), snapshot)
	_ = e.observers.Broadcast(context.Background(), msg)
}
