package authcore

import (
	"context"
	"time"

	"github.com/rodaquino-OMNI/authcore/broadcast"
)

const (
	syncTypeLogin  = broadcast.TypeLogin
	syncTypeLogout = broadcast.TypeLogout
)

// runSync is the receive loop for cross-instance session messages. One
// goroutine per engine; it exits when the subscription closes.
func (e *Engine) runSync(ctx context.Context) {
	defer e.syncWg.Done()

	ch := e.syncSub.Receive()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			e.applySync(ctx, msg)
		}
	}
}

// applySync folds one peer message into the local session. Messages are
// applied at most once: the transport already filters the publisher's own
// origin, and the last-applied ID drops redelivery.
func (e *Engine) applySync(ctx context.Context, msg broadcast.Message[SessionEvent]) {
	e.mu.Lock()

	if msg.ID == "" || msg.ID == e.lastAppliedID {
		e.mu.Unlock()
		e.metricInc(MetricBroadcastReplayDropped)
		e.emitAudit(ctx, auditEventSyncReplayDropped, false, "", e.session.Phase, nil, func() map[string]string {
			return map[string]string{"origin": msg.Origin}
		})
		return
	}
	e.lastAppliedID = msg.ID

	switch msg.Type {
	case syncTypeLogin:
		if msg.Payload.User == nil {
			e.mu.Unlock()
			return
		}
		// Adopt the peer's session without a network round-trip. The
		// peer confirmed it remotely moments ago, so it also counts as
		// fresh here.
		user := cloneUser(msg.Payload.User)
		now := e.clock()
		e.lastCheck = now
		e.breaker.Reset()
		e.setSessionLocked(Session{
			Phase:     PhaseAuthenticated,
			User:      user,
			CheckedAt: now,
		})
		e.mu.Unlock()

		e.metricInc(MetricBroadcastApplied)
		e.emitAudit(ctx, auditEventSyncApplied, true, user.ID, PhaseAuthenticated, nil, func() map[string]string {
			return map[string]string{"origin": msg.Origin, "type": string(msg.Type)}
		})

	case syncTypeLogout:
		// A peer logged out; local in-flight results are void too.
		e.generation++
		e.lastCheck = time.Time{}
		e.breaker.Reset()
		e.setSessionLocked(Session{Phase: PhaseAnonymous})
		e.mu.Unlock()

		e.requests.CancelAll()
		e.metricInc(MetricBroadcastApplied)
		e.emitAudit(ctx, auditEventSyncApplied, true, "", PhaseAnonymous, nil, func() map[string]string {
			return map[string]string{"origin": msg.Origin, "type": string(msg.Type)}
		})

	default:
		e.mu.Unlock()
	}
}

// publishSync tells peer instances about a local transition. Delivery is
// best-effort; a failed publish only means peers converge on their next
// check instead.
func (e *Engine) publishSync(ctx context.Context, typ broadcast.Type, user *UserSnapshot) {
	if e.sync == nil {
		return
	}

	msg := broadcast.NewMessage(e.instanceID, typ, SessionEvent{User: cloneUser(user)})
	if err := e.sync.Broadcast(ctx, msg); err != nil {
		return
	}
	e.metricInc(MetricBroadcastSent)
}
