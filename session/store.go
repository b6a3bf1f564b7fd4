package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSnapshotNotFound is an exported constant or variable used by the session engine.
var ErrSnapshotNotFound = errors.New("session snapshot not found")

// ErrSnapshotCorrupt is returned when a stored snapshot blob fails to decode.
var ErrSnapshotCorrupt = errors.New("session snapshot corrupt")

// ErrRedisUnavailable is an exported constant or variable used by the session engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// DefaultTTL bounds how long a persisted snapshot outlives its last save.
const DefaultTTL = 7 * 24 * time.Hour

// Store defines a public type used by authcore APIs.
//
// Store instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewStore builds a snapshot store on client. prefix namespaces keys per
// deployment; ttl of zero means [DefaultTTL].
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "authcore"
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

func (s *Store) key(deviceKey string) string {
	return s.prefix + ":snapshot:" + deviceKey
}

// Save persists snap under deviceKey, replacing any previous snapshot.
//
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Save(ctx context.Context, deviceKey string, snap *Snapshot) error {
	if s == nil || s.client == nil {
		return ErrRedisUnavailable
	}
	if snap == nil {
		return errors.New("nil snapshot")
	}

	data, err := Encode(snap)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key(deviceKey), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Load retrieves the snapshot stored under deviceKey.
//
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Load(ctx context.Context, deviceKey string) (*Snapshot, error) {
	if s == nil || s.client == nil {
		return nil, ErrRedisUnavailable
	}

	data, err := s.client.Get(ctx, s.key(deviceKey)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	snap, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	return snap, nil
}

// Delete removes the snapshot stored under deviceKey. Deleting a missing
// snapshot is not an error.
func (s *Store) Delete(ctx context.Context, deviceKey string) error {
	if s == nil || s.client == nil {
		return ErrRedisUnavailable
	}

	if err := s.client.Del(ctx, s.key(deviceKey)).Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
