// Package fanout delivers values to in-process listeners in publish order.
//
// Components enqueue under their own lock, so the queue order is the commit
// order, and flush after unlocking. Only one goroutine drains at a time;
// listeners run without any lock held and may publish again, in which case
// the new value is delivered after the current one.
package fanout

import "sync"

// Hub is a listener set with an ordered delivery queue
type Hub[T any] struct {
	mu          sync.Mutex
	listeners   map[uint64]func(T)
	order       []uint64
	nextID      uint64
	queue       []T
	dispatching bool
}

// New creates an empty hub
func New[T any]() *Hub[T] {
	return &Hub[T]{listeners: make(map[uint64]func(T))}
}

// Subscribe registers fn. The returned func removes it and is idempotent.
func (h *Hub[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.listeners[id] = fn
	h.order = append(h.order, id)
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.listeners, id)
			for i, o := range h.order {
				if o == id {
					h.order = append(h.order[:i], h.order[i+1:]...)
					break
				}
			}
			h.mu.Unlock()
		})
	}
}

// Enqueue adds v to the delivery queue without delivering it
func (h *Hub[T]) Enqueue(v T) {
	h.mu.Lock()
	h.queue = append(h.queue, v)
	h.mu.Unlock()
}

// Flush delivers queued values unless another goroutine is already doing so
func (h *Hub[T]) Flush() {
	h.mu.Lock()
	if h.dispatching {
		h.mu.Unlock()
		return
	}
	h.dispatching = true

	for len(h.queue) > 0 {
		v := h.queue[0]
		h.queue = h.queue[1:]

		fns := make([]func(T), 0, len(h.order))
		for _, id := range h.order {
			fns = append(fns, h.listeners[id])
		}
		h.mu.Unlock()

		for _, fn := range fns {
			fn(v)
		}

		h.mu.Lock()
	}

	h.dispatching = false
	h.mu.Unlock()
}

// Publish enqueues v and flushes
func (h *Hub[T]) Publish(v T) {
	h.Enqueue(v)
	h.Flush()
}

// Len returns the number of listeners
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
