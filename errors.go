package authcore

import (
	"errors"

	"github.com/rodaquino-OMNI/authcore/internal/requests"
)

var (
	// ErrRequestTimeout is an exported constant or variable used by the session engine.
	// Remote calls that exceed their per-operation deadline fail with it.
	ErrRequestTimeout = requests.ErrTimeout
	// ErrRequestCancelled is an exported constant or variable used by the session engine.
	// Remote calls interrupted by CancelAllRequests or Close fail with it.
	ErrRequestCancelled = requests.ErrCancelled
)

var (
	// ErrEngineNotReady is an exported constant or variable used by the session engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrUnauthorized is an exported constant or variable used by the session engine.
	// API clients return it (possibly wrapped) when the remote side rejects
	// the session as invalid or expired.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidCredentials is an exported constant or variable used by the session engine.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginRateLimited is an exported constant or variable used by the session engine.
	ErrLoginRateLimited = errors.New("login rate limited")
	// ErrCheckSuppressed is an exported constant or variable used by the session engine.
	// The circuit breaker returns it when recursive auth checks exceed the
	// configured budget inside one reset interval.
	ErrCheckSuppressed = errors.New("auth check suppressed")
	// ErrSyncClosed is an exported constant or variable used by the session engine.
	ErrSyncClosed = errors.New("session sync closed")
)

// Sanitized user-facing messages. Remote and validation failures are always
// reported through one of these so attacker-controlled input is never
// reflected back into the UI.
const (
	msgLoginFailed    = "login failed, please try again"
	msgSessionExpired = "session expired, please sign in again"
	msgCheckFailed    = "authentication check failed"
)
