package fanout

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishInSubscriptionOrder(t *testing.T) {
	h := New[int]()

	var got []string
	h.Subscribe(func(v int) { got = append(got, "a") })
	h.Subscribe(func(v int) { got = append(got, "b") })

	h.Publish(1)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, h.Len())
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h := New[int]()

	calls := 0
	stop := h.Subscribe(func(int) { calls++ })
	keep := h.Subscribe(func(int) {})
	defer keep()

	stop()
	stop()
	h.Publish(1)

	assert.Zero(t, calls)
	assert.Equal(t, 1, h.Len())
}

func TestReentrantPublishIsQueued(t *testing.T) {
	h := New[int]()

	var got []int
	h.Subscribe(func(v int) {
		got = append(got, v)
		if v == 1 {
			h.Publish(2)
			// 2 is queued, not delivered inside this call
			assert.Equal(t, []int{1}, got)
		}
	})

	h.Publish(1)
	assert.Equal(t, []int{1, 2}, got)
}

func TestEnqueueWithoutFlush(t *testing.T) {
	h := New[string]()

	var got []string
	h.Subscribe(func(v string) { got = append(got, v) })

	h.Enqueue("x")
	h.Enqueue("y")
	assert.Empty(t, got)

	h.Flush()
	assert.Equal(t, []string{"x", "y"}, got)
}

func TestConcurrentPublishDeliversAll(t *testing.T) {
	h := New[int]()

	var mu sync.Mutex
	total := 0
	h.Subscribe(func(v int) {
		mu.Lock()
		total += v
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Publish(1)
		}()
	}
	wg.Wait()
	h.Flush()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 20, total)
}
