package broadcast

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Type discriminates session transition messages.
type Type string

const (
	// TypeLogin announces a successful authentication with a user snapshot.
	TypeLogin Type = "login"
	// TypeLogout announces a session teardown.
	TypeLogout Type = "logout"
)

// ErrClosed is returned by Broadcast after the broadcaster has been closed.
var ErrClosed = errors.New("broadcaster closed")

// Message is one transition notification. Messages are transient: they
// exist only long enough to be delivered, and receivers must treat a
// replayed ID as already applied.
type Message[T any] struct {
	ID        string    `json:"id"`
	Origin    string    `json:"origin"`
	Type      Type      `json:"type"`
	Payload   T         `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage builds a Message with a fresh unique ID stamped at the current
// time. origin identifies the publishing instance so its own subscription
// never hears the message.
func NewMessage[T any](origin string, typ Type, payload T) Message[T] {
	return Message[T]{
		ID:        uuid.NewString(),
		Origin:    origin,
		Type:      typ,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// Subscriber receives messages from a Broadcaster. Implementations must be
// safe for concurrent use.
type Subscriber[T any] interface {
	// Receive returns the delivery channel. The channel is closed when the
	// subscription ends.
	Receive() <-chan Message[T]
	// Close ends the subscription. Idempotent.
	Close() error
}

// Broadcaster fans transition messages out to every subscriber whose origin
// differs from the message origin.
type Broadcaster[T any] interface {
	// Subscribe registers a receiver identified by origin. The subscription
	// is cleaned up when ctx is cancelled or Close is called.
	Subscribe(ctx context.Context, origin string) Subscriber[T]
	// Broadcast delivers msg to all other-origin subscribers. Messages are
	// dropped, never queued unboundedly, for consumers that cannot keep up.
	Broadcast(ctx context.Context, msg Message[T]) error
	// Close shuts down the broadcaster and all its subscriptions.
	Close() error
}
