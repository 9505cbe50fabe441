// Package observable provides a value holder that broadcasts every write to
// its subscribers.
//
// A new subscriber immediately receives the current value. Delivery is
// conflated: each subscription buffers a single value, so a slow reader may
// miss intermediate writes but always ends up holding the latest one.
package observable

import "sync"

// ReadOnly is the view of a Cell handed to consumers that must not write.
type ReadOnly[T any] interface {
	Get() T
	Subscribe() <-chan T
	Unsubscribe(ch <-chan T)
}

// Cell holds a single value of type T.
type Cell[T any] struct {
	mu          sync.RWMutex
	value       T
	subscribers map[<-chan T]chan T
	closed      bool
}

// NewCell creates a cell holding initial.
func NewCell[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:       initial,
		subscribers: make(map[<-chan T]chan T),
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set replaces the value and notifies subscribers. It is a no-op once the
// cell is closed.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.value = v
	c.broadcast()
}

// Update applies fn to the current value under the write lock and stores
// the result. It returns the stored value, or the unchanged value if the
// cell is closed.
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return c.value
	}
	c.value = fn(c.value)
	c.broadcast()
	return c.value
}

// Subscribe creates a subscription primed with the current value. The
// channel is closed by Unsubscribe or Close. Subscribing to a closed cell
// returns an already-closed channel.
func (c *Cell[T]) Subscribe() <-chan T {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan T, 1)
	if c.closed {
		close(ch)
		return ch
	}
	ch <- c.value
	c.subscribers[ch] = ch
	return ch
}

// Unsubscribe removes a subscription and closes its channel.
func (c *Cell[T]) Unsubscribe(ch <-chan T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if w, ok := c.subscribers[ch]; ok {
		delete(c.subscribers, ch)
		close(w)
	}
}

// SubscriberCount returns the number of active subscribers
func (c *Cell[T]) SubscriberCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.subscribers)
}

// Close closes every subscription and freezes the value.
func (c *Cell[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for r, w := range c.subscribers {
		delete(c.subscribers, r)
		close(w)
	}
}

// broadcast must be called with the write lock held.
func (c *Cell[T]) broadcast() {
	for _, w := range c.subscribers {
		select {
		case w <- c.value:
			continue
		default:
		}
		// Buffer full: drop the stale value so the reader sees the latest.
		select {
		case <-w:
		default:
		}
		select {
		case w <- c.value:
		default:
		}
	}
}
