package notify

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/persist"
	"github.com/GriffinCanCode/FolioOS/backend/internal/scheduler"
	"github.com/GriffinCanCode/FolioOS/backend/internal/shared/fanout"
	"github.com/GriffinCanCode/FolioOS/backend/internal/shared/id"
)

// Recorder receives notification metrics
type Recorder interface {
	RecordNotification(id string)
}

// View is the queue as subscribers see it
type View struct {
	Current *Delivery      `json:"current"`
	Pending []Notification `json:"pending"`
}

// Option configures a Queue
type Option func(*Queue)

// WithClock sets the clock used for delivery times and auto-dismiss
func WithClock(c scheduler.Clock) Option {
	return func(q *Queue) { q.clock = c }
}

// WithDisplayFor dismisses each delivery automatically after d. Zero keeps
// notifications up until Dismiss is called.
func WithDisplayFor(d time.Duration) Option {
	return func(q *Queue) { q.displayFor = d }
}

// WithStore persists the seen-set
func WithStore(s *persist.NotificationStore) Option {
	return func(q *Queue) { q.store = s }
}

// WithIDs sets the generator for delivery ids
func WithIDs(g *id.Generator) Option {
	return func(q *Queue) { q.ids = g }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(q *Queue) { q.logger = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(r Recorder) Option {
	return func(q *Queue) { q.metrics = r }
}

// Queue shows notifications one at a time in arrival order. A notification
// id is delivered at most once per lifetime; the seen-set survives reloads
// through the notification store.
type Queue struct {
	clock      scheduler.Clock
	displayFor time.Duration
	store      *persist.NotificationStore
	ids        *id.Generator
	logger     *logging.Logger
	metrics    Recorder

	mu      sync.Mutex
	current *Delivery
	pending []Notification
	seen    map[string]struct{}
	slot    *scheduler.Slot
	hub     *fanout.Hub[View]
}

// NewQueue creates an empty queue
func NewQueue(opts ...Option) *Queue {
	q := &Queue{
		seen: make(map[string]struct{}),
		hub:  fanout.New[View](),
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.clock == nil {
		q.clock = scheduler.RealClock{}
	}
	if q.ids == nil {
		q.ids = id.Default()
	}
	if q.logger == nil {
		q.logger = logging.NewNop()
	}
	q.slot = scheduler.NewSlot(q.clock)
	return q
}

// Hydrate merges the persisted seen-set and drops pending notifications that
// an earlier lifetime already showed
func (q *Queue) Hydrate(ctx context.Context) {
	rec, _ := q.store.Load(ctx)

	q.mu.Lock()
	for id := range rec.SeenSet() {
		q.seen[id] = struct{}{}
	}
	before := len(q.pending)
	q.pending = slices.DeleteFunc(q.pending, func(n Notification) bool {
		_, ok := q.seen[n.ID]
		return ok
	})
	changed := len(q.pending) != before
	if changed {
		q.hub.Enqueue(q.viewLocked())
	}
	q.mu.Unlock()

	if changed {
		q.hub.Flush()
	}
}

// Enqueue queues n for display. It reports false when n has no id, was
// already shown, or is already queued or on screen.
func (q *Queue) Enqueue(n Notification) bool {
	n = n.Sanitized()
	if n.ID == "" {
		return false
	}

	q.mu.Lock()
	if q.knownLocked(n.ID) {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, n)
	delivered := q.promoteLocked()
	q.hub.Enqueue(q.viewLocked())
	q.mu.Unlock()

	q.afterDelivery(delivered)
	q.hub.Flush()
	return true
}

// Dismiss clears the notification on screen and shows the next one
func (q *Queue) Dismiss() {
	q.mu.Lock()
	if q.current == nil {
		q.mu.Unlock()
		return
	}
	delivered := q.dismissLocked()
	q.mu.Unlock()

	q.afterDelivery(delivered)
	q.hub.Flush()
}

// Current returns the notification on screen
func (q *Queue) Current() (Delivery, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		return Delivery{}, false
	}
	return *q.current, true
}

// Pending returns queued notifications in delivery order
func (q *Queue) Pending() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.pending)
}

// Seen reports whether id was ever delivered
func (q *Queue) Seen(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, ok := q.seen[id]
	return ok
}

// View returns the current queue state
func (q *Queue) View() View {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.viewLocked()
}

// Subscribe calls fn after every queue change
func (q *Queue) Subscribe(fn func(View)) (unsubscribe func()) {
	return q.hub.Subscribe(fn)
}

// Close cancels the pending auto-dismiss
func (q *Queue) Close() {
	q.slot.Clear()
}

func (q *Queue) knownLocked(id string) bool {
	if _, ok := q.seen[id]; ok {
		return true
	}
	if q.current != nil && q.current.Notification.ID == id {
		return true
	}
	return slices.ContainsFunc(q.pending, func(n Notification) bool { return n.ID == id })
}

// promoteLocked moves the head of the queue on screen when the slot is free.
// Returns the new delivery, if any.
func (q *Queue) promoteLocked() *Delivery {
	if q.current != nil || len(q.pending) == 0 {
		return nil
	}

	n := q.pending[0]
	q.pending = slices.Delete(q.pending, 0, 1)

	d := &Delivery{InstanceID: q.ids.Delivery(), Notification: n, At: q.clock.Now()}
	q.current = d
	q.seen[n.ID] = struct{}{}

	if q.displayFor > 0 {
		instance := d.InstanceID
		q.slot.Arm(q.displayFor, func() { q.expire(instance) })
	}
	return d
}

func (q *Queue) dismissLocked() *Delivery {
	q.slot.Clear()
	q.current = nil
	delivered := q.promoteLocked()
	q.hub.Enqueue(q.viewLocked())
	return delivered
}

// expire dismisses instance if it is still on screen
func (q *Queue) expire(instance id.DeliveryID) {
	q.mu.Lock()
	if q.current == nil || q.current.InstanceID != instance {
		q.mu.Unlock()
		return
	}
	delivered := q.dismissLocked()
	q.mu.Unlock()

	q.afterDelivery(delivered)
	q.hub.Flush()
}

// afterDelivery persists the seen-set and records the delivery (must not hold mu)
func (q *Queue) afterDelivery(d *Delivery) {
	if d == nil {
		return
	}

	q.mu.Lock()
	rec := persist.RecordFromSet(q.seen)
	q.mu.Unlock()

	q.store.Save(context.Background(), rec)
	if q.metrics != nil {
		q.metrics.RecordNotification(d.Notification.ID)
	}
	q.logger.Debug("Notification delivered",
		zap.String("id", d.Notification.ID),
		zap.String("instance", d.InstanceID.String()))
}

func (q *Queue) viewLocked() View {
	v := View{Pending: slices.Clone(q.pending)}
	if q.current != nil {
		d := *q.current
		v.Current = &d
	}
	if v.Pending == nil {
		v.Pending = []Notification{}
	}
	return v
}
