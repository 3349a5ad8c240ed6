package onboarding

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/persist"
	"github.com/GriffinCanCode/FolioOS/backend/internal/scheduler"
	"github.com/GriffinCanCode/FolioOS/backend/internal/shared/fanout"
)

// WindowActions is the slice of the system store the tour may touch
type WindowActions interface {
	Window(id window.AppID) (window.Instance, bool)
	CloseWindow(id window.AppID)
	LaunchApp(id window.AppID, cfg *desktop.LaunchConfig) error
}

// Recorder receives tour metrics
type Recorder interface {
	RecordTourStep(step string)
	RecordTourOutcome(outcome string)
}

// Status is what subscribers see after every change
type Status struct {
	Step             Step       `json:"step"`
	Device           Device     `json:"device"`
	Order            []Step     `json:"order,omitempty"`
	Highlights       Highlights `json:"highlights"`
	Tooltip          Tooltip    `json:"tooltip"`
	HasCompletedTour bool       `json:"hasCompletedTour"`
	Hydrated         bool       `json:"hydrated"`
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithClock sets the clock timers run on
func WithClock(c scheduler.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithTiming overrides the tour pacing
func WithTiming(t Timing) Option {
	return func(o *Orchestrator) { o.timing = t }
}

// WithReducedMotion halves every step duration
func WithReducedMotion(reduced bool) Option {
	return func(o *Orchestrator) { o.reducedMotion = reduced }
}

// WithDevice sets the device used when a tour starts without one
func WithDevice(d Device) Option {
	return func(o *Orchestrator) { o.device = d }
}

// WithRevealWindow sets the window closed on mobile to reveal the desktop
func WithRevealWindow(id window.AppID) Option {
	return func(o *Orchestrator) { o.reveal = id }
}

// WithStore persists tour completion
func WithStore(s *persist.OnboardingStore) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(r Recorder) Option {
	return func(o *Orchestrator) { o.metrics = r }
}

// Orchestrator runs the tour machine: it arms step timers, persists
// completion and carries out the mobile reveal on the window manager.
type Orchestrator struct {
	windows       WindowActions
	clock         scheduler.Clock
	timing        Timing
	reducedMotion bool
	device        Device
	reveal        window.AppID
	store         *persist.OnboardingStore
	logger        *logging.Logger
	metrics       Recorder

	mu         sync.Mutex
	state      State
	stepSlot   *scheduler.Slot
	windowSlot *scheduler.Slot
	closedByUs bool
	hub        *fanout.Hub[Status]
}

// NewOrchestrator creates an idle tour over windows
func NewOrchestrator(windows WindowActions, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		windows: windows,
		timing:  DefaultTiming(),
		device:  DeviceDesktop,
		reveal:  DefaultRevealWindow,
		hub:     fanout.New[Status](),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}

	o.timing.ReducedMotion = o.timing.ReducedMotion || o.reducedMotion
	o.stepSlot = scheduler.NewSlot(o.clock)
	o.windowSlot = scheduler.NewSlot(o.clock)
	o.state = NewState(o.timing)
	o.state.Device = o.device
	o.state.RevealWindow = o.reveal
	return o
}

// Hydrate loads the persisted completion flag. StartTour is a no-op until
// this has run.
func (o *Orchestrator) Hydrate(ctx context.Context) {
	rec, _ := o.store.Load(ctx)
	o.dispatch(Hydrated{Completed: rec.HasCompletedTour})
}

// StartTour begins the tour with an explicit step order on the current device
func (o *Orchestrator) StartTour(order []Step) {
	o.mu.Lock()
	d := o.device
	o.mu.Unlock()
	o.dispatch(Start{Order: order, Device: d})
}

// StartForDevice begins the tour with the device's step order
func (o *Orchestrator) StartForDevice(d Device) {
	o.SetDevice(d)
	o.dispatch(Start{Device: d})
}

// SetDevice records the device signal used by the next start
func (o *Orchestrator) SetDevice(d Device) {
	o.mu.Lock()
	o.device = d
	if !o.state.Step.Active() {
		o.state.Device = d
	}
	o.mu.Unlock()
}

// AdvanceStep moves to the next step
func (o *Orchestrator) AdvanceStep() {
	o.dispatch(Advance{})
}

// SkipTour ends the tour and marks it completed
func (o *Orchestrator) SkipTour() {
	o.dispatch(Skip{})
}

// OnGhostDragComplete is called by the window chrome when the drag demo ends
func (o *Orchestrator) OnGhostDragComplete() {
	o.dispatch(GhostDragComplete{})
}

// ResetTour clears completion so the tour can be replayed
func (o *Orchestrator) ResetTour() {
	o.dispatch(Reset{})
}

// Close stops every pending timer
func (o *Orchestrator) Close() {
	o.dispatch(Unmount{})
}

// Step returns the current step
func (o *Orchestrator) Step() Step {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Step
}

// Highlights returns the flags for the current step
func (o *Orchestrator) Highlights() Highlights {
	o.mu.Lock()
	defer o.mu.Unlock()
	return HighlightsFor(o.state.Step, o.state.Device)
}

// Tooltip returns the copy for the current step
func (o *Orchestrator) Tooltip() Tooltip {
	o.mu.Lock()
	defer o.mu.Unlock()
	return TooltipFor(o.state.Step, o.state.Device)
}

// HasCompletedTour reports the persisted completion flag
func (o *Orchestrator) HasCompletedTour() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.Completed
}

// Status returns the full tour status
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	return statusOf(o.state)
}

// Subscribe calls fn after every status change
func (o *Orchestrator) Subscribe(fn func(Status)) (unsubscribe func()) {
	return o.hub.Subscribe(fn)
}

func statusOf(s State) Status {
	return Status{
		Step:             s.Step,
		Device:           s.Device,
		Order:            append([]Step(nil), s.Order...),
		Highlights:       HighlightsFor(s.Step, s.Device),
		Tooltip:          TooltipFor(s.Step, s.Device),
		HasCompletedTour: s.Completed,
		Hydrated:         s.Hydrated,
	}
}

func (o *Orchestrator) dispatch(e Event) {
	o.mu.Lock()
	prev := o.state
	next, effects := Transition(prev, e)
	o.state = next

	// Timers are armed under the lock so step changes stay serialized;
	// storage runs after unlocking.
	var deferred []Effect
	for _, eff := range effects {
		if !o.runTimer(eff) {
			deferred = append(deferred, eff)
		}
	}

	changed := prev.Step != next.Step || prev.Completed != next.Completed || prev.Hydrated != next.Hydrated
	if changed {
		o.hub.Enqueue(statusOf(next))
	}
	o.mu.Unlock()

	for _, eff := range deferred {
		o.runDeferred(eff)
	}
	if prev.Step != next.Step {
		o.logger.Debug("Tour step changed",
			zap.String("from", string(prev.Step)),
			zap.String("to", string(next.Step)))
		if o.metrics != nil && next.Step.Active() {
			o.metrics.RecordTourStep(string(next.Step))
		}
	}
	if changed {
		o.hub.Flush()
	}
}

// runTimer executes timer effects (must hold mu). Reports whether eff was one.
func (o *Orchestrator) runTimer(eff Effect) bool {
	switch eff := eff.(type) {
	case ArmStepTimer:
		from := eff.From
		o.stepSlot.Arm(eff.After, func() { o.dispatch(Advance{From: from}) })
	case ClearStepTimer:
		o.stepSlot.Clear()
	case CloseWindow:
		id := eff.ID
		o.windowSlot.Arm(eff.After, func() { o.closeReveal(id) })
	case RelaunchWindow:
		id := eff.ID
		o.windowSlot.Arm(eff.After, func() { o.relaunchReveal(id) })
	case CancelWindowTimers:
		o.windowSlot.Clear()
	default:
		return false
	}
	return true
}

func (o *Orchestrator) runDeferred(eff Effect) {
	ctx := context.Background()

	switch eff := eff.(type) {
	case PersistCompleted:
		o.store.Save(ctx, persist.OnboardingRecord{HasCompletedTour: true})
		outcome := "finished"
		if eff.Skipped {
			outcome = "skipped"
		}
		if o.metrics != nil {
			o.metrics.RecordTourOutcome(outcome)
		}
		o.logger.Info("Tour completed", zap.String("outcome", outcome))
	case ClearCompleted:
		o.store.Clear(ctx)
		o.mu.Lock()
		o.closedByUs = false
		o.mu.Unlock()
	}
}

// closeReveal closes the reveal window if it is on screen
func (o *Orchestrator) closeReveal(id window.AppID) {
	if o.windows == nil {
		return
	}
	if _, ok := o.windows.Window(id); !ok {
		return
	}
	o.windows.CloseWindow(id)

	o.mu.Lock()
	o.closedByUs = true
	o.mu.Unlock()
}

// relaunchReveal restores the reveal window, but only if the tour closed it
func (o *Orchestrator) relaunchReveal(id window.AppID) {
	o.mu.Lock()
	closed := o.closedByUs
	o.closedByUs = false
	o.mu.Unlock()

	if !closed || o.windows == nil {
		return
	}
	if err := o.windows.LaunchApp(id, nil); err != nil {
		o.logger.Error("Failed to relaunch window after tour",
			zap.String("app", id.String()), zap.Error(err))
	}
}
