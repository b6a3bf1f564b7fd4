package broadcast

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Redis is a pub/sub Broadcaster for engine instances spread across
// processes that share a Redis deployment. Messages are JSON-encoded on a
// single channel; Redis delivers every publication to every subscription,
// so same-origin filtering happens on the receive path.
type Redis[T any] struct {
	client     redis.UniversalClient
	channel    string
	bufferSize int

	mu     sync.Mutex
	subs   map[*redisSubscriber[T]]struct{}
	closed bool
}

const defaultRedisChannel = "authcore:session-sync"

// NewRedis creates a Redis-backed broadcaster publishing on channel. An
// empty channel selects the default. The client is borrowed, not owned:
// Close does not close it.
func NewRedis[T any](client redis.UniversalClient, channel string, bufferSize int) *Redis[T] {
	if channel == "" {
		channel = defaultRedisChannel
	}
	return &Redis[T]{
		client:     client,
		channel:    channel,
		bufferSize: max(bufferSize, 1),
		subs:       make(map[*redisSubscriber[T]]struct{}),
	}
}

// Broadcast publishes msg to the channel. Delivery to subscribers in other
// processes is asynchronous and eventually consistent.
func (b *Redis[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return ErrClosed
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, data).Err()
}

// Subscribe opens a dedicated Redis subscription for origin. Messages whose
// origin matches are dropped before delivery, so a publisher never hears
// itself even though Redis echoes publications to all subscriptions.
func (b *Redis[T]) Subscribe(ctx context.Context, origin string) Subscriber[T] {
	sub := &redisSubscriber[T]{
		origin: origin,
		ch:     make(chan Message[T], b.bufferSize),
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(sub.ch)
		sub.closed = true
		return sub
	}
	sub.pubsub = b.client.Subscribe(ctx, b.channel)
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go sub.run(ctx, func() { b.unsubscribe(sub) })
	return sub
}

// Close ends every subscription. The underlying Redis client stays open.
func (b *Redis[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := make([]*redisSubscriber[T], 0, len(b.subs))
	for sub := range b.subs {
		subs = append(subs, sub)
	}
	clear(b.subs)
	b.mu.Unlock()

	for _, sub := range subs {
		_ = sub.Close()
	}
	return nil
}

func (b *Redis[T]) unsubscribe(sub *redisSubscriber[T]) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
	_ = sub.Close()
}

type redisSubscriber[T any] struct {
	origin string
	ch     chan Message[T]
	pubsub *redis.PubSub

	mu     sync.Mutex
	closed bool
}

func (s *redisSubscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

func (s *redisSubscriber[T]) run(ctx context.Context, cleanup func()) {
	defer cleanup()

	deliveries := s.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case payload, ok := <-deliveries:
			if !ok {
				return
			}
			var msg Message[T]
			if err := json.Unmarshal([]byte(payload.Payload), &msg); err != nil {
				continue // malformed frame from a foreign publisher
			}
			if msg.Origin == s.origin {
				continue
			}
			s.send(msg)
		}
	}
}

// send is non-blocking; a full buffer drops the message for this subscriber.
func (s *redisSubscriber[T]) send(msg Message[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- msg:
	default:
	}
}

func (s *redisSubscriber[T]) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	if s.pubsub != nil {
		_ = s.pubsub.Close()
	}

	s.mu.Lock()
	close(s.ch)
	s.mu.Unlock()
	return nil
}
