package authcore

import (
	"context"
	"strconv"
	"time"

	"github.com/rodaquino-OMNI/authcore/internal/requests"
	"github.com/rodaquino-OMNI/authcore/token"
)

// Logout clears the local session unconditionally and immediately. The
// generation counter advances first so every in-flight result becomes stale,
// then active requests are cancelled, and only then is the remote side told.
// The remote call is best-effort; its failure never resurrects the session.
//
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Logout(ctx context.Context) {
	if e == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.mu.Lock()

	e.generation++
	userID := ""
	if e.session.User != nil {
		userID = e.session.User.ID
	}
	e.lastCheck = time.Time{}
	e.breaker.Reset()
	e.setSessionLocked(Session{Phase: PhaseAnonymous})

	e.mu.Unlock()

	e.requests.CancelAll()

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, userID, PhaseAnonymous, nil, nil)
	e.publishSync(ctx, syncTypeLogout, nil)

	if e.api != nil {
		_, err := requests.Do(ctx, e.requests, e.config.Request.LogoutTimeout,
			func(callCtx context.Context) (struct{}, error) {
				return struct{}{}, e.api.Logout(callCtx)
			})
		if err != nil {
			e.emitAudit(ctx, auditEventRequestsCancelled, false, userID, PhaseAnonymous, err, func() map[string]string {
				return map[string]string{"scope": "remote_logout"}
			})
		}
	}
}

// CancelAllRequests triggers every registered cancellation signal. Session
// state is untouched; interrupted operations observe ErrRequestCancelled.
//
// CancelAllRequests does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) CancelAllRequests() {
	if e == nil {
		return
	}
	// The cancelled counter tracks calls actually interrupted; those are
	// counted where the interrupted call settles, not here.
	cancelled := e.requests.CancelAll()
	e.emitAudit(context.Background(), auditEventRequestsCancelled, true, "", e.State().Phase, nil, func() map[string]string {
		return map[string]string{"in_flight": strconv.Itoa(cancelled)}
	})
}

// ClearError returns an errored session to anonymous so the caller can
// retry. Any other phase is left untouched.
//
// ClearError does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ClearError() {
	if e == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Phase != PhaseError {
		return
	}
	e.setSessionLocked(Session{Phase: PhaseAnonymous})
}

// IsTokenValid reports whether raw passes the credential validation
// pipeline. It is a convenience wrapper; use ValidateToken for the tagged
// verdict.
//
// IsTokenValid does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) IsTokenValid(raw any) bool {
	return e.ValidateToken(raw, "").Valid
}

// ValidateToken runs the full validation pipeline and returns the tagged
// verdict. clientKey selects the rate-limit bucket; empty shares the
// anonymous bucket.
//
// ValidateToken does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) ValidateToken(raw any, clientKey string) token.Result {
	if e == nil || e.validator == nil {
		return token.Result{Valid: false, Error: token.KindEmptyToken}
	}

	verdict := e.validator.Validate(raw, clientKey)
	if !verdict.Valid {
		e.recordValidationFailure(context.Background(), verdict, e.State().Phase)
	}
	return verdict
}
