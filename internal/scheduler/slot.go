package scheduler

import (
	"sync"
	"time"
)

// Slot holds at most one pending timer. Arming a slot always clears the
// previous timer first, and a generation counter drops callbacks whose timer
// was cleared after it had already started firing.
type Slot struct {
	clock Clock

	mu    sync.Mutex
	timer Timer
	gen   uint64
}

// NewSlot creates an empty slot on the given clock.
func NewSlot(clock Clock) *Slot {
	if clock == nil {
		clock = RealClock{}
	}
	return &Slot{clock: clock}
}

// Arm schedules fn after d, replacing whatever was pending.
func (s *Slot) Arm(d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.timer = nil
		s.mu.Unlock()

		fn()
	})
}

// Clear cancels the pending timer, if any. Reports whether one was pending.
func (s *Slot) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.timer != nil
	s.stopLocked()
	s.gen++
	return pending
}

// Pending reports whether a timer is armed and has not fired.
func (s *Slot) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

func (s *Slot) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
