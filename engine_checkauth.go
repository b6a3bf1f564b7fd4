package authcore

import (
	"context"
	"errors"
	"time"

	"github.com/rodaquino-OMNI/authcore/internal/requests"
)

// CheckAuth confirms the session against the remote API and returns the
// settled snapshot. Three gates run before any network traffic: the
// freshness debounce (a recently confirmed authenticated session is trusted
// as-is), in-flight de-duplication (concurrent callers share one profile
// call and observe the identical result), and the recursion circuit breaker
// (rapid repeats are suppressed without touching session state).
//
// CheckAuth may return an error when input validation, dependency calls, or security checks fail.
// CheckAuth does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CheckAuth(ctx context.Context) (Session, error) {
	if e == nil || e.api == nil {
		return Session{}, ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.Lock()

	if e.session.Phase == PhaseAuthenticated &&
		e.config.Session.FreshnessWindow > 0 &&
		e.clock().Sub(e.lastCheck) < e.config.Session.FreshnessWindow {
		snapshot := cloneSession(e.session)
		e.mu.Unlock()
		e.metricInc(MetricCheckSkippedFresh)
		return snapshot, nil
	}

	if flight := e.checkFlight; flight != nil {
		e.mu.Unlock()
		e.metricInc(MetricCheckDeduped)
		select {
		case <-flight.done:
			return flight.session, flight.err
		case <-ctx.Done():
			return e.State(), ErrRequestCancelled
		}
	}

	if !e.breaker.Allow() {
		snapshot := cloneSession(e.session)
		e.mu.Unlock()
		e.metricInc(MetricCheckSuppressed)
		e.emitAudit(ctx, auditEventCheckSuppressed, false, "", snapshot.Phase, ErrCheckSuppressed, nil)
		return snapshot, ErrCheckSuppressed
	}

	flight := &checkFlight{done: make(chan struct{})}
	e.checkFlight = flight
	gen := e.generation
	e.mu.Unlock()

	started := time.Now()
	user, err := requests.Do(ctx, e.requests, e.config.Request.ProfileTimeout,
		func(callCtx context.Context) (*UserSnapshot, error) {
			return e.api.GetProfile(callCtx)
		})
	e.metrics.Observe(MetricCheckLatency, time.Since(started))

	e.mu.Lock()
	defer e.mu.Unlock()

	e.checkFlight = nil

	if e.generation != gen {
		e.metricInc(MetricStaleResultDiscarded)
		e.emitAudit(ctx, auditEventStaleResultDropped, false, "", e.session.Phase, ErrRequestCancelled, nil)
		flight.session = cloneSession(e.session)
		flight.err = ErrRequestCancelled
		close(flight.done)
		return flight.session, flight.err
	}

	flight.session, flight.err = e.settleCheckLocked(ctx, user, err)
	close(flight.done)

	return flight.session, flight.err
}

// settleCheckLocked folds one profile-call outcome into the session.
// Callers hold e.mu.
func (e *Engine) settleCheckLocked(ctx context.Context, user *UserSnapshot, err error) (Session, error) {
	switch {
	case err == nil && user != nil:
		now := e.clock()
		e.lastCheck = now
		e.breaker.Reset()
		e.setSessionLocked(Session{
			Phase:     PhaseAuthenticated,
			User:      cloneUser(user),
			CheckedAt: now,
		})
		e.metricInc(MetricCheckSuccess)
		e.emitAudit(ctx, auditEventCheckSuccess, true, user.ID, PhaseAuthenticated, nil, nil)
		return cloneSession(e.session), nil

	case errors.Is(err, ErrUnauthorized) || (err == nil && user == nil):
		// Remote says the session is gone. Show the expired phase to
		// observers, then settle anonymous so the UI can offer login.
		wasAuthenticated := e.session.Phase == PhaseAuthenticated
		if wasAuthenticated {
			e.setSessionLocked(Session{Phase: PhaseExpired, Reason: msgSessionExpired})
			e.metricInc(MetricSessionExpired)
			e.emitAudit(ctx, auditEventSessionExpired, false, "", PhaseExpired, ErrUnauthorized, nil)
		}
		e.setSessionLocked(Session{Phase: PhaseAnonymous})
		e.metricInc(MetricCheckFailure)
		e.emitAudit(ctx, auditEventCheckFailure, false, "", PhaseAnonymous, ErrUnauthorized, nil)
		return cloneSession(e.session), ErrUnauthorized

	case errors.Is(err, ErrRequestCancelled):
		// Cancellation is not evidence about the session; leave it alone.
		e.metricInc(MetricRequestCancelled)
		return cloneSession(e.session), ErrRequestCancelled

	default:
		if errors.Is(err, ErrRequestTimeout) {
			e.metricInc(MetricRequestTimeout)
		}
		e.setSessionLocked(Session{Phase: PhaseError, Reason: msgCheckFailed})
		e.metricInc(MetricCheckFailure)
		e.emitAudit(ctx, auditEventCheckFailure, false, "", PhaseError, err, nil)
		return cloneSession(e.session), err
	}
}

// RefreshToken asks the remote API to extend the session. Success keeps the
// authenticated phase and resets the recursion breaker; failure changes
// nothing and leaves the next CheckAuth to settle the state.
//
// RefreshToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) RefreshToken(ctx context.Context) bool {
	if e == nil || e.api == nil {
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.Lock()
	gen := e.generation
	e.mu.Unlock()

	resp, err := requests.Do(ctx, e.requests, e.config.Request.RefreshTimeout,
		func(callCtx context.Context) (*RefreshResponse, error) {
			return e.api.Refresh(callCtx)
		})

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.generation != gen {
		e.metricInc(MetricStaleResultDiscarded)
		return false
	}

	if err != nil || resp == nil {
		switch {
		case errors.Is(err, ErrRequestTimeout):
			e.metricInc(MetricRequestTimeout)
		case errors.Is(err, ErrRequestCancelled):
			e.metricInc(MetricRequestCancelled)
		}
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshFailure, false, "", e.session.Phase, err, nil)
		return false
	}

	if resp.Token != "" {
		verdict := e.validator.Validate(resp.Token, clientKeyFromContext(ctx))
		if !verdict.Valid {
			e.recordValidationFailure(ctx, verdict, e.session.Phase)
			e.metricInc(MetricRefreshFailure)
			e.emitAudit(ctx, auditEventRefreshFailure, false, "", e.session.Phase, ErrUnauthorized, nil)
			return false
		}
	}

	e.lastCheck = e.clock()
	e.breaker.Reset()
	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, "", e.session.Phase, nil, nil)

	return true
}
