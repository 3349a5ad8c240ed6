package boot

import "time"

// Phase is a stage of the boot sequence
type Phase string

const (
	PhaseHidden   Phase = "hidden"
	PhaseBooting  Phase = "booting"
	PhaseWelcome  Phase = "welcome"
	PhaseComplete Phase = "complete"
)

var sequence = []Phase{PhaseHidden, PhaseBooting, PhaseWelcome, PhaseComplete}

// Rank returns the position of p in the boot sequence, or -1
func (p Phase) Rank() int {
	for i, s := range sequence {
		if s == p {
			return i
		}
	}
	return -1
}

// Next returns the phase after p; complete is terminal
func (p Phase) Next() Phase {
	r := p.Rank()
	if r < 0 || r >= len(sequence)-1 {
		return PhaseComplete
	}
	return sequence[r+1]
}

// Phases returns the sequence in order
func Phases() []Phase {
	return append([]Phase(nil), sequence...)
}

// Timings holds how long each phase waits before the next one starts
type Timings struct {
	ToBooting  time.Duration
	ToWelcome  time.Duration
	ToComplete time.Duration
}

// DefaultTimings returns the standard boot pacing
func DefaultTimings() Timings {
	return Timings{
		ToBooting:  300 * time.Millisecond,
		ToWelcome:  2200 * time.Millisecond,
		ToComplete: 1800 * time.Millisecond,
	}
}

// Scaled halves every duration when reduced motion is requested
func (t Timings) Scaled(reducedMotion bool) Timings {
	if !reducedMotion {
		return t
	}
	return Timings{
		ToBooting:  t.ToBooting / 2,
		ToWelcome:  t.ToWelcome / 2,
		ToComplete: t.ToComplete / 2,
	}
}

// delay returns how long to stay in from before advancing
func (t Timings) delay(from Phase) time.Duration {
	switch from {
	case PhaseHidden:
		return t.ToBooting
	case PhaseBooting:
		return t.ToWelcome
	case PhaseWelcome:
		return t.ToComplete
	}
	return 0
}

// State is the boot machine state
type State struct {
	Phase   Phase
	Mounted bool
	Timings Timings
}

// NewState returns an unmounted machine at hidden
func NewState(t Timings) State {
	return State{Phase: PhaseHidden, Timings: t}
}

// Event drives the machine
type Event interface{ bootEvent() }

// Mount starts the sequence; AlreadyBooted jumps straight to complete
type Mount struct{ AlreadyBooted bool }

// Advance moves forward to To. Stale or backward advances are dropped.
type Advance struct{ To Phase }

// Unmount cancels pending timers
type Unmount struct{}

// Skip jumps to complete whether or not the machine is mounted
type Skip struct{}

func (Mount) bootEvent()   {}
func (Advance) bootEvent() {}
func (Unmount) bootEvent() {}
func (Skip) bootEvent()    {}

// Effect is work the controller performs after a transition
type Effect interface{ bootEffect() }

// Schedule delivers Advance{To} after the delay
type Schedule struct {
	After time.Duration
	To    Phase
}

// CancelTimers clears any pending Schedule
type CancelTimers struct{}

// MarkBooted raises the session flag
type MarkBooted struct{}

func (Schedule) bootEffect()     {}
func (CancelTimers) bootEffect() {}
func (MarkBooted) bootEffect()   {}

// Transition is the pure boot state machine. Phases only ever move forward.
func Transition(s State, e Event) (State, []Effect) {
	switch e := e.(type) {
	case Mount:
		if s.Mounted {
			return s, nil
		}
		s.Mounted = true
		if s.Phase == PhaseComplete {
			return s, nil
		}
		if e.AlreadyBooted {
			s.Phase = PhaseComplete
			return s, []Effect{CancelTimers{}}
		}
		return s, []Effect{Schedule{After: s.Timings.delay(s.Phase), To: s.Phase.Next()}}

	case Advance:
		if !s.Mounted || e.To.Rank() <= s.Phase.Rank() {
			return s, nil
		}
		s.Phase = e.To
		if s.Phase == PhaseComplete {
			return s, []Effect{CancelTimers{}, MarkBooted{}}
		}
		return s, []Effect{Schedule{After: s.Timings.delay(s.Phase), To: s.Phase.Next()}}

	case Skip:
		if s.Phase == PhaseComplete {
			return s, nil
		}
		s.Phase = PhaseComplete
		return s, []Effect{CancelTimers{}, MarkBooted{}}

	case Unmount:
		if !s.Mounted {
			return s, nil
		}
		s.Mounted = false
		return s, []Effect{CancelTimers{}}
	}
	return s, nil
}
