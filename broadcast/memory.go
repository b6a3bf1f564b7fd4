package broadcast

import (
	"context"
	"sync"
)

// Memory is an in-process Broadcaster for engine instances sharing one
// runtime. Sends are non-blocking: a subscriber whose buffer is full misses
// the message rather than stalling the publisher. All methods are safe for
// concurrent use.
type Memory[T any] struct {
	mu          sync.RWMutex
	subscribers map[*memorySubscriber[T]]struct{}
	bufferSize  int
	closed      bool
	done        chan struct{}
	cleanupWg   sync.WaitGroup
}

// NewMemory creates an in-process broadcaster. bufferSize is the per-
// subscriber channel depth; a minimum of 1 is enforced so sends stay
// non-blocking.
func NewMemory[T any](bufferSize int) *Memory[T] {
	return &Memory[T]{
		subscribers: make(map[*memorySubscriber[T]]struct{}),
		bufferSize:  max(bufferSize, 1),
		done:        make(chan struct{}),
	}
}

// Subscribe registers a receiver. The subscription is removed when ctx is
// cancelled. Subscribing to a closed broadcaster yields an already-closed
// subscriber.
func (b *Memory[T]) Subscribe(ctx context.Context, origin string) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newMemorySubscriber[T](origin, b.bufferSize)
	if b.closed {
		_ = sub.Close()
		return sub
	}
	b.subscribers[sub] = struct{}{}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			// Close must not wait on contexts that never cancel, so the
			// watcher also exits when the broadcaster shuts down.
			select {
			case <-ctx.Done():
				b.unsubscribe(sub)
			case <-b.done:
			}
		}()
	}

	return sub
}

// Broadcast delivers msg to every subscriber whose origin differs from
// msg.Origin. The publisher's own subscription never hears the message,
// matching the storage-event model.
func (b *Memory[T]) Broadcast(_ context.Context, msg Message[T]) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrClosed
	}

	for sub := range b.subscribers {
		if sub.origin == msg.Origin {
			continue
		}
		sub.send(msg)
	}
	return nil
}

// Close shuts down the broadcaster and closes every subscriber. Safe to
// call multiple times.
func (b *Memory[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.done)
	for sub := range b.subscribers {
		_ = sub.Close()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	b.cleanupWg.Wait()
	return nil
}

func (b *Memory[T]) unsubscribe(sub *memorySubscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, sub)
	_ = sub.Close()
}

type memorySubscriber[T any] struct {
	origin string
	ch     chan Message[T]
	mu     sync.Mutex
	closed bool
}

func newMemorySubscriber[T any](origin string, bufferSize int) *memorySubscriber[T] {
	return &memorySubscriber[T]{
		origin: origin,
		ch:     make(chan Message[T], bufferSize),
	}
}

func (s *memorySubscriber[T]) Receive() <-chan Message[T] {
	return s.ch
}

// send is non-blocking; a full buffer drops the message for this subscriber.
func (s *memorySubscriber[T]) send(msg Message[T]) {
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

func (s *memorySubscriber[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	close(s.ch)
	return nil
}
