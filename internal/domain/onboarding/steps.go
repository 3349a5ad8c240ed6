package onboarding

import (
	"time"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
)

// Step is a stage of the guided tour
type Step string

const (
	StepIdle              Step = "idle"
	StepWindowControls    Step = "window_controls"
	StepWindowDrag        Step = "window_drag"
	StepDock              Step = "dock"
	StepDockProjectsStack Step = "dock_projects_stack"
	StepDesktopIcons      Step = "desktop_icons"
	StepOutro             Step = "outro"
	StepComplete          Step = "complete"
)

// Active reports whether s is a real tour step (not idle or complete)
func (s Step) Active() bool {
	return s != StepIdle && s != StepComplete && s != ""
}

// Known reports whether s is a tour step some device order can contain
func (s Step) Known() bool {
	switch s {
	case StepWindowControls, StepWindowDrag, StepDock, StepDockProjectsStack, StepDesktopIcons, StepOutro:
		return true
	}
	return false
}

// Device selects step order, copy and durations
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// StepOrders maps each device category to its tour. Supporting another
// device is a new row here.
var StepOrders = map[Device][]Step{
	DeviceDesktop: {StepWindowControls, StepWindowDrag, StepDock, StepDesktopIcons, StepOutro},
	DeviceMobile:  {StepWindowControls, StepDock, StepDockProjectsStack, StepDesktopIcons, StepOutro},
}

// OrderFor returns a copy of the device's step order; unknown devices get
// the desktop tour
func OrderFor(d Device) []Step {
	order, ok := StepOrders[d]
	if !ok {
		order = StepOrders[DeviceDesktop]
	}
	return append([]Step(nil), order...)
}

// ParseDevice maps a device signal to a Device, defaulting to desktop
func ParseDevice(s string) Device {
	if Device(s) == DeviceMobile {
		return DeviceMobile
	}
	return DeviceDesktop
}

// Timing holds every delay the tour uses
type Timing struct {
	// Steps is the auto-advance duration per device and step. Zero means
	// the step waits for an external signal.
	Steps map[Device]map[Step]time.Duration
	// GhostDragSettle is the pause between the ghost drag finishing and
	// the tour moving on
	GhostDragSettle time.Duration
	// RevealClose delays closing the reveal window on mobile
	RevealClose time.Duration
	// Relaunch delays restoring the reveal window after the tour
	Relaunch time.Duration
	// ReducedMotion halves every step duration
	ReducedMotion bool
}

// DefaultTiming returns the standard tour pacing
func DefaultTiming() Timing {
	return Timing{
		Steps: map[Device]map[Step]time.Duration{
			DeviceDesktop: {
				StepWindowControls: 6 * time.Second,
				StepDock:           5 * time.Second,
				StepDesktopIcons:   5 * time.Second,
				StepOutro:          4 * time.Second,
			},
			DeviceMobile: {
				StepWindowControls:    5 * time.Second,
				StepDock:              4500 * time.Millisecond,
				StepDockProjectsStack: 5 * time.Second,
				StepDesktopIcons:      4500 * time.Millisecond,
				StepOutro:             4 * time.Second,
			},
		},
		GhostDragSettle: 600 * time.Millisecond,
		RevealClose:     400 * time.Millisecond,
		Relaunch:        1200 * time.Millisecond,
	}
}

// Duration returns the auto-advance delay for step on device
func (t Timing) Duration(step Step, device Device) time.Duration {
	if step == StepWindowDrag || !step.Active() {
		return 0
	}
	table, ok := t.Steps[device]
	if !ok {
		table = t.Steps[DeviceDesktop]
	}
	d := table[step]
	if t.ReducedMotion {
		d /= 2
	}
	return d
}

// DefaultRevealWindow is closed on mobile to show the desktop icons
const DefaultRevealWindow = window.AppProjects
