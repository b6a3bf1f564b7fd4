package authcore

import (
	"context"
	"errors"

	"github.com/rodaquino-OMNI/authcore/internal/requests"
	"github.com/rodaquino-OMNI/authcore/token"
)

// Login authenticates against the remote API and, on success, adopts the
// returned session. The session passes through PhaseAuthenticating while the
// network call is in flight; failures surface a sanitized message and settle
// back to PhaseAnonymous so the next attempt starts clean. Concurrent callers
// join the single in-flight attempt and resolve to the same result.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *Engine) Login(ctx context.Context, creds Credentials) (LoginResult, error) {
	if e == nil || e.api == nil {
		return LoginResult{Success: false, Error: msgLoginFailed}, ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	clientKey := clientKeyFromContext(ctx)

	e.mu.Lock()

	if flight := e.loginFlight; flight != nil {
		e.mu.Unlock()
		e.metricInc(MetricLoginDeduped)
		select {
		case <-flight.done:
			result := flight.result
			result.User = cloneUser(result.User)
			return result, flight.err
		case <-ctx.Done():
			return LoginResult{Success: false, Error: msgLoginFailed}, ErrRequestCancelled
		}
	}

	if !e.loginLimiter.Allow(clientKey) {
		e.mu.Unlock()
		e.metricInc(MetricRateLimitHit)
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventRateLimitTriggered, false, "", PhaseAnonymous, ErrLoginRateLimited, func() map[string]string {
			return map[string]string{"scope": "login"}
		})
		return LoginResult{Success: false, Error: msgLoginFailed}, ErrLoginRateLimited
	}

	if creds.Email == "" || creds.Password == "" {
		e.mu.Unlock()
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginRejected, false, "", PhaseAnonymous, ErrInvalidCredentials, nil)
		return LoginResult{Success: false, Error: msgLoginFailed}, ErrInvalidCredentials
	}

	flight := &loginFlight{done: make(chan struct{})}
	e.loginFlight = flight
	gen := e.generation
	e.setSessionLocked(Session{Phase: PhaseAuthenticating})
	e.mu.Unlock()

	resp, err := requests.Do(ctx, e.requests, e.config.Request.LoginTimeout,
		func(callCtx context.Context) (*LoginResponse, error) {
			return e.api.Login(callCtx, creds)
		})

	e.mu.Lock()
	defer e.mu.Unlock()

	e.loginFlight = nil

	if e.generation != gen {
		// A logout raced the login call; its result is void.
		e.metricInc(MetricStaleResultDiscarded)
		e.emitAudit(ctx, auditEventStaleResultDropped, false, "", e.session.Phase, ErrRequestCancelled, nil)
		flight.result = LoginResult{Success: false, Error: msgLoginFailed}
		flight.err = ErrRequestCancelled
		close(flight.done)
		return flight.result, flight.err
	}

	flight.result, flight.err = e.settleLoginLocked(ctx, clientKey, resp, err)
	close(flight.done)

	result := flight.result
	result.User = cloneUser(result.User)
	return result, flight.err
}

// settleLoginLocked folds one login-call outcome into the session.
// Callers hold e.mu.
func (e *Engine) settleLoginLocked(ctx context.Context, clientKey string, resp *LoginResponse, err error) (LoginResult, error) {
	if err != nil {
		return e.failLoginLocked(ctx, err)
	}
	if resp == nil {
		return e.failLoginLocked(ctx, errors.New("empty login response"))
	}

	if resp.Token != "" {
		verdict := e.validator.Validate(resp.Token, clientKey)
		if !verdict.Valid {
			e.recordValidationFailure(ctx, verdict, e.session.Phase)
			return e.failLoginLocked(ctx, ErrUnauthorized)
		}
	}

	user := cloneUser(&resp.User)
	now := e.clock()
	e.lastCheck = now
	e.breaker.Reset()
	e.setSessionLocked(Session{
		Phase:     PhaseAuthenticated,
		User:      user,
		CheckedAt: now,
	})

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, PhaseAuthenticated, nil, nil)
	e.publishSync(ctx, syncTypeLogin, user)

	return LoginResult{Success: true, User: cloneUser(user)}, nil
}

// failLoginLocked records a failed login, shows the transient error phase to
// observers, and settles back to anonymous. Callers hold e.mu.
func (e *Engine) failLoginLocked(ctx context.Context, err error) (LoginResult, error) {
	translated := err
	if errors.Is(err, ErrUnauthorized) {
		translated = ErrInvalidCredentials
	}

	e.setSessionLocked(Session{Phase: PhaseError, Reason: msgLoginFailed})
	e.setSessionLocked(Session{Phase: PhaseAnonymous})

	e.metricInc(MetricLoginFailure)
	switch {
	case errors.Is(err, ErrRequestTimeout):
		e.metricInc(MetricRequestTimeout)
	case errors.Is(err, ErrRequestCancelled):
		e.metricInc(MetricRequestCancelled)
	}
	e.emitAudit(ctx, auditEventLoginFailure, false, "", PhaseAnonymous, translated, nil)

	return LoginResult{Success: false, Error: msgLoginFailed}, translated
}

func (e *Engine) recordValidationFailure(ctx context.Context, verdict token.Result, phase SessionPhase) {
	e.metricInc(MetricValidationFailure)
	switch verdict.Error.Class() {
	case token.ClassSecurity:
		if verdict.Error == token.KindLowEntropyToken {
			e.metricInc(MetricLowEntropyToken)
		} else {
			e.metricInc(MetricThreatDetected)
		}
	case token.ClassThrottling:
		e.metricInc(MetricRateLimitHit)
	}
	e.emitAudit(ctx, auditEventValidationFailure, false, "", phase, nil, func() map[string]string {
		return map[string]string{"code": string(verdict.Error)}
	})
}
