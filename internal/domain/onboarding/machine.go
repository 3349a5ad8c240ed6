package onboarding

import (
	"time"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
)

// State is the tour machine state
type State struct {
	Step     Step
	Order    []Step
	Device   Device
	Hydrated bool
	// Completed mirrors the persisted hasCompletedTour flag
	Completed bool
	// RevealClosed is set once the tour asked for the reveal window to close
	RevealClosed bool
	RevealWindow window.AppID
	Timing       Timing
}

// NewState returns an idle, unhydrated tour
func NewState(t Timing) State {
	return State{
		Step:         StepIdle,
		Device:       DeviceDesktop,
		RevealWindow: DefaultRevealWindow,
		Timing:       t,
	}
}

// Event drives the machine
type Event interface{ tourEvent() }

// Hydrated reports that persisted state finished loading
type Hydrated struct{ Completed bool }

// Start begins the tour with an explicit order. An empty order uses the
// device's row in StepOrders.
type Start struct {
	Order  []Step
	Device Device
}

// Advance moves to the next step. Timer-originated advances carry the step
// that armed them and are dropped if the tour has since moved on.
type Advance struct{ From Step }

// Skip ends the tour immediately
type Skip struct{}

// GhostDragComplete reports the drag demo finished
type GhostDragComplete struct{}

// Unmount stops every pending tour timer
type Unmount struct{}

// Reset forgets completion and returns to idle
type Reset struct{}

func (Hydrated) tourEvent()          {}
func (Start) tourEvent()             {}
func (Advance) tourEvent()           {}
func (Skip) tourEvent()              {}
func (GhostDragComplete) tourEvent() {}
func (Unmount) tourEvent()           {}
func (Reset) tourEvent()             {}

// Effect is work the orchestrator performs after a transition
type Effect interface{ tourEffect() }

// ArmStepTimer schedules Advance{From} after the delay, replacing any
// pending step timer
type ArmStepTimer struct {
	After time.Duration
	From  Step
}

// ClearStepTimer cancels the pending step timer
type ClearStepTimer struct{}

// PersistCompleted stores hasCompletedTour = true
type PersistCompleted struct{ Skipped bool }

// ClearCompleted removes the persisted completion flag
type ClearCompleted struct{}

// CloseWindow closes a window after a delay
type CloseWindow struct {
	ID    window.AppID
	After time.Duration
}

// RelaunchWindow launches a window after a delay
type RelaunchWindow struct {
	ID    window.AppID
	After time.Duration
}

// CancelWindowTimers drops pending close/relaunch effects
type CancelWindowTimers struct{}

func (ArmStepTimer) tourEffect()       {}
func (ClearStepTimer) tourEffect()     {}
func (PersistCompleted) tourEffect()   {}
func (ClearCompleted) tourEffect()     {}
func (CloseWindow) tourEffect()        {}
func (RelaunchWindow) tourEffect()     {}
func (CancelWindowTimers) tourEffect() {}

// Transition is the pure tour state machine
func Transition(s State, e Event) (State, []Effect) {
	switch e := e.(type) {
	case Hydrated:
		if s.Hydrated {
			return s, nil
		}
		s.Hydrated = true
		s.Completed = s.Completed || e.Completed
		return s, nil

	case Start:
		if !s.Hydrated || s.Completed || s.Step != StepIdle {
			return s, nil
		}
		order := cleanOrder(e.Order)
		if len(order) == 0 {
			order = OrderFor(e.Device)
		}
		if e.Device != "" {
			s.Device = e.Device
		}
		s.Order = order
		s.Step = order[0]
		return s, s.enter()

	case Advance:
		if !s.Step.Active() {
			return s, nil
		}
		if e.From != "" && e.From != s.Step {
			return s, nil
		}
		effects := []Effect{ClearStepTimer{}}

		next := s.next()
		if s.Device == DeviceMobile && s.Step == StepDockProjectsStack && next == StepDesktopIcons {
			effects = append(effects, CloseWindow{ID: s.RevealWindow, After: s.Timing.RevealClose})
			s.RevealClosed = true
		}

		s.Step = next
		if next == StepComplete {
			var done []Effect
			s, done = s.complete(false)
			return s, append(effects, done...)
		}
		return s, append(effects, s.enter()...)

	case Skip:
		if s.Step == StepComplete {
			return s, nil
		}
		s.Step = StepComplete
		var done []Effect
		s, done = s.complete(true)
		return s, append([]Effect{ClearStepTimer{}}, done...)

	case GhostDragComplete:
		if s.Step != StepWindowDrag {
			return s, nil
		}
		return s, []Effect{ArmStepTimer{After: s.Timing.GhostDragSettle, From: StepWindowDrag}}

	case Unmount:
		return s, []Effect{ClearStepTimer{}, CancelWindowTimers{}}

	case Reset:
		s.Step = StepIdle
		s.Order = nil
		s.Completed = false
		s.RevealClosed = false
		return s, []Effect{ClearStepTimer{}, CancelWindowTimers{}, ClearCompleted{}}
	}
	return s, nil
}

// enter arms the auto-advance timer for the current step, if it has one
func (s State) enter() []Effect {
	d := s.Timing.Duration(s.Step, s.Device)
	if d <= 0 {
		return nil
	}
	return []Effect{ArmStepTimer{After: d, From: s.Step}}
}

// next returns the step after the current one in the active order. A step
// missing from the order ends the tour.
func (s State) next() Step {
	for i, step := range s.Order {
		if step != s.Step {
			continue
		}
		if i+1 < len(s.Order) {
			return s.Order[i+1]
		}
		break
	}
	return StepComplete
}

func (s State) complete(skipped bool) (State, []Effect) {
	s.Completed = true
	effects := []Effect{PersistCompleted{Skipped: skipped}}
	if s.RevealClosed {
		effects = append(effects, RelaunchWindow{ID: s.RevealWindow, After: s.Timing.Relaunch})
		s.RevealClosed = false
	}
	return s, effects
}

// cleanOrder drops unknown, idle, complete and repeated steps
func cleanOrder(order []Step) []Step {
	seen := make(map[Step]bool, len(order))
	out := make([]Step, 0, len(order))
	for _, s := range order {
		if !s.Known() || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
