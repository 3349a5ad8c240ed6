package boot

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/persist"
	"github.com/GriffinCanCode/FolioOS/backend/internal/scheduler"
	"github.com/GriffinCanCode/FolioOS/backend/internal/shared/fanout"
)

// SessionFlagBooted is set once the sequence completes in this session
const SessionFlagBooted = "booted"

// Recorder receives boot metrics
type Recorder interface {
	SetBootPhase(phase string)
}

// Option configures a Controller
type Option func(*Controller)

// WithClock sets the clock timers run on
func WithClock(c scheduler.Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

// WithTimings overrides the phase durations
func WithTimings(t Timings) Option {
	return func(ctl *Controller) { ctl.timings = t }
}

// WithReducedMotion halves every duration
func WithReducedMotion(reduced bool) Option {
	return func(ctl *Controller) { ctl.reducedMotion = reduced }
}

// WithSessionFlags sets where the booted flag lives
func WithSessionFlags(f *persist.SessionFlags) Option {
	return func(ctl *Controller) { ctl.flags = f }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(ctl *Controller) { ctl.logger = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(r Recorder) Option {
	return func(ctl *Controller) { ctl.metrics = r }
}

// Controller is the only writer of the boot phase. Everything else reads
// Phase or subscribes.
type Controller struct {
	clock         scheduler.Clock
	timings       Timings
	reducedMotion bool
	flags         *persist.SessionFlags
	logger        *logging.Logger
	metrics       Recorder

	mu    sync.Mutex
	state State
	slot  *scheduler.Slot
	hub   *fanout.Hub[Phase]
}

// NewController creates a controller at hidden
func NewController(opts ...Option) *Controller {
	c := &Controller{
		timings: DefaultTimings(),
		hub:     fanout.New[Phase](),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.flags == nil {
		c.flags = persist.NewSessionFlags()
	}

	c.slot = scheduler.NewSlot(c.clock)
	c.state = NewState(c.timings.Scaled(c.reducedMotion))
	if c.metrics != nil {
		c.metrics.SetBootPhase(string(c.state.Phase))
	}
	return c
}

// Mount starts the sequence, or completes immediately if this session
// already booted
func (c *Controller) Mount() {
	c.dispatch(Mount{AlreadyBooted: c.flags.Get(SessionFlagBooted)})
}

// Unmount cancels pending timers. A later Mount resumes from the current phase.
func (c *Controller) Unmount() {
	c.dispatch(Unmount{})
}

// SkipToComplete jumps straight to complete (keyboard shortcut). Before
// Mount it completes too, and the later Mount is a no-op.
func (c *Controller) SkipToComplete() {
	c.dispatch(Skip{})
}

// Phase returns the current phase
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Phase
}

// Subscribe calls fn on every phase change
func (c *Controller) Subscribe(fn func(Phase)) (unsubscribe func()) {
	return c.hub.Subscribe(fn)
}

// Timings returns the effective (scaled) durations
func (c *Controller) Timings() Timings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Timings
}

func (c *Controller) dispatch(e Event) {
	c.mu.Lock()
	prev := c.state.Phase
	next, effects := Transition(c.state, e)
	c.state = next
	for _, eff := range effects {
		c.run(eff)
	}
	changed := next.Phase != prev
	if changed {
		c.hub.Enqueue(next.Phase)
	}
	c.mu.Unlock()

	if !changed {
		return
	}
	c.logger.Debug("Boot phase changed",
		zap.String("from", string(prev)),
		zap.String("to", string(next.Phase)))
	if c.metrics != nil {
		c.metrics.SetBootPhase(string(next.Phase))
	}
	c.hub.Flush()
}

// run executes one effect (must hold mu)
func (c *Controller) run(eff Effect) {
	switch eff := eff.(type) {
	case Schedule:
		to := eff.To
		c.slot.Arm(eff.After, func() { c.dispatch(Advance{To: to}) })
	case CancelTimers:
		c.slot.Clear()
	case MarkBooted:
		c.flags.Set(SessionFlagBooted)
	}
}
