package authcore

import (
	"context"
	"time"
)

// SessionPhase represents the lifecycle state of the local session.
//
// Transitions follow a fixed graph enforced by the [Engine]; no other edges
// are legal.
type SessionPhase uint8

const (
	// PhaseAnonymous is an exported constant or variable used by the session engine.
	PhaseAnonymous SessionPhase = iota
	// PhaseAuthenticating is an exported constant or variable used by the session engine.
	PhaseAuthenticating
	// PhaseAuthenticated is an exported constant or variable used by the session engine.
	PhaseAuthenticated
	// PhaseExpired is an exported constant or variable used by the session engine.
	PhaseExpired
	// PhaseError is an exported constant or variable used by the session engine.
	PhaseError
)

// String returns the lowercase phase name.
func (p SessionPhase) String() string {
	switch p {
	case PhaseAnonymous:
		return "anonymous"
	case PhaseAuthenticating:
		return "authenticating"
	case PhaseAuthenticated:
		return "authenticated"
	case PhaseExpired:
		return "expired"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// UserSnapshot is the client-visible subset of the authenticated user.
// It carries no credential material and is safe to broadcast.
type UserSnapshot struct {
	ID    string   `json:"id"`
	Name  string   `json:"name,omitempty"`
	Email string   `json:"email,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Session is the engine's observable state. Exactly one logical Session
// exists per engine; [Engine.State] returns defensive copies.
type Session struct {
	Phase SessionPhase
	// User is non-nil only in PhaseAuthenticated.
	User *UserSnapshot
	// Reason is non-empty only in PhaseError. Always a sanitized, generic
	// message — never attacker-controlled input.
	Reason string
	// CheckedAt is the time of the last successful remote confirmation.
	CheckedAt time.Time
}

// Credentials is the login input. The password never leaves the Login call
// path and is never stored on the engine.
type Credentials struct {
	Email    string
	Password string
}

// LoginResult is returned by [Engine.Login].
type LoginResult struct {
	Success bool
	User    *UserSnapshot
	// Error is a sanitized, user-presentable message; empty on success.
	Error string
}

// LoginResponse is the payload resolved by [APIClient.Login].
type LoginResponse struct {
	User UserSnapshot
	// Token is the client-visible credential indicator returned by the
	// server (CSRF-style token or session identifier). The bearer secret
	// itself is expected to live out of reach of this subsystem.
	Token string
}

// RefreshResponse is the payload resolved by [APIClient.Refresh].
type RefreshResponse struct {
	Token string
}

// APIClient is the network collaborator contract the engine depends on.
// Implementations own transport details; the engine only requires that each
// call respects ctx cancellation and returns either a structured payload or
// an error. Authentication rejections must be reported as [ErrUnauthorized]
// (possibly wrapped) so the engine can distinguish them from transport
// failures.
type APIClient interface {
	Login(ctx context.Context, creds Credentials) (*LoginResponse, error)
	GetProfile(ctx context.Context) (*UserSnapshot, error)
	Logout(ctx context.Context) error
	Refresh(ctx context.Context) (*RefreshResponse, error)
}

// SessionEvent is the cross-instance payload carried by sync messages.
// Login events carry the user snapshot so peers can adopt the session
// without a network round-trip; logout events carry nothing.
type SessionEvent struct {
	User *UserSnapshot `json:"user,omitempty"`
}

func cloneUser(u *UserSnapshot) *UserSnapshot {
	if u == nil {
		return nil
	}
	copied := *u
	if u.Roles != nil {
		copied.Roles = append([]string(nil), u.Roles...)
	}
	return &copied
}

func cloneSession(s Session) Session {
	s.User = cloneUser(s.User)
	return s
}
