package authcore

import (
	"context"
	"errors"
	"time"
)

const (
	auditEventLoginSuccess       = "login_success"
	auditEventLoginFailure       = "login_failure"
	auditEventLoginRejected      = "login_rejected"
	auditEventLogout             = "logout"
	auditEventCheckSuccess       = "check_success"
	auditEventCheckFailure       = "check_failure"
	auditEventCheckSuppressed    = "check_suppressed"
	auditEventRefreshSuccess     = "refresh_success"
	auditEventRefreshFailure     = "refresh_failure"
	auditEventSessionExpired     = "session_expired"
	auditEventValidationFailure  = "validation_failure"
	auditEventThreatDetected     = "threat_detected"
	auditEventRateLimitTriggered = "rate_limit_triggered"
	auditEventSyncApplied        = "sync_applied"
	auditEventSyncReplayDropped  = "sync_replay_dropped"
	auditEventRequestsCancelled  = "requests_cancelled"
	auditEventStaleResultDropped = "stale_result_dropped"
)

// AuditErrorCode defines a public type used by authcore APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnauthorized       AuditErrorCode = "unauthorized"
	auditErrInvalidCredentials AuditErrorCode = "invalid_credentials"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrSuppressed         AuditErrorCode = "check_suppressed"
	auditErrTimeout            AuditErrorCode = "timeout"
	auditErrCancelled          AuditErrorCode = "cancelled"
	auditErrSyncClosed         AuditErrorCode = "sync_closed"
	auditErrNotReady           AuditErrorCode = "engine_not_ready"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	userID string,
	phase SessionPhase,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		ClientKey: clientKeyFromContext(ctx),
		UserID:    userID,
		Phase:     phase.String(),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	e.audit.Emit(ctx, event)
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return auditErrInvalidCredentials
	case errors.Is(err, ErrLoginRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrCheckSuppressed):
		return auditErrSuppressed
	case errors.Is(err, ErrRequestTimeout):
		return auditErrTimeout
	case errors.Is(err, ErrRequestCancelled):
		return auditErrCancelled
	case errors.Is(err, ErrSyncClosed):
		return auditErrSyncClosed
	case errors.Is(err, ErrEngineNotReady):
		return auditErrNotReady
	default:
		return auditErrInternal
	}
}
