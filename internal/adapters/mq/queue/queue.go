// Package queue holds raised notifications until the announcer shows them.
//
// The queue is an in-memory bounded FIFO; notifications raised while it is
// full are dropped.
package queue

import (
	"context"
	"sync"

	"github.com/okian/bonusboard/internal/domain/model"
	"github.com/okian/bonusboard/pkg/metrics"
)

const defaultCapacity = 1024

// Notification is the payload type flowing through the queue.
type Notification = model.Notification

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a notification. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, n Notification) bool

	// Dequeue returns a channel that receives notifications in FIFO order.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Notification

	// Len returns the number of pending notifications.
	Len(ctx context.Context) int

	// Close stops accepting notifications and closes the dequeue channel.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue with a buffered channel.
type InMemoryQueue struct {
	items    chan Notification
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a queue with the given options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Notification, q.capacity)
	metrics.UpdateNotificationQueue(0)
	return q
}

// Enqueue adds n to the tail of the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n Notification) bool { //nolint:gocritic // hugeParam: passed by value for channel semantics
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.items <- n:
		metrics.UpdateNotificationQueue(len(q.items))
		return true
	case <-ctx.Done():
		return false
	default:
		return false
	}
}

// EnqueueAll adds ns in order and returns how many were accepted.
func (q *InMemoryQueue) EnqueueAll(ctx context.Context, ns []Notification) int {
	accepted := 0
	for _, n := range ns {
		if q.Enqueue(ctx, n) {
			accepted++
		}
	}
	return accepted
}

// Dequeue returns a channel fed from the queue until it is closed or ctx ends.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Notification {
	out := make(chan Notification)
	go func() {
		defer close(out)
		for n := range q.items {
			select {
			case out <- n:
				metrics.UpdateNotificationQueue(len(q.items))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the number of pending notifications.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.items)
}

// Close stops the queue. It is safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed reports whether Close has been called.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
