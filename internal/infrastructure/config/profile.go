package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
)

// Duration is a time.Duration written as "300ms" or "2.5s" in TOML
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", b, err)
	}
	if v < 0 {
		return fmt.Errorf("negative duration %q", b)
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// TimingProfile overrides boot and tour pacing. Every field is optional;
// anything left out keeps its default.
//
//	[boot]
//	to_welcome = "1.5s"
//
//	[onboarding]
//	ghost_drag_settle = "800ms"
//
//	[onboarding.steps.mobile]
//	dock = "3s"
type TimingProfile struct {
	Boot       BootProfile       `toml:"boot"`
	Onboarding OnboardingProfile `toml:"onboarding"`
}

// BootProfile overrides boot.Timings
type BootProfile struct {
	ToBooting  *Duration `toml:"to_booting"`
	ToWelcome  *Duration `toml:"to_welcome"`
	ToComplete *Duration `toml:"to_complete"`
}

// OnboardingProfile overrides onboarding.Timing
type OnboardingProfile struct {
	GhostDragSettle *Duration                      `toml:"ghost_drag_settle"`
	RevealClose     *Duration                      `toml:"reveal_close"`
	Relaunch        *Duration                      `toml:"relaunch"`
	Steps           map[string]map[string]Duration `toml:"steps"`
}

// ParseTimingProfile decodes and validates a TOML profile
func ParseTimingProfile(data []byte) (*TimingProfile, error) {
	var p TimingProfile
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse timing profile: %w", err)
	}

	for device, steps := range p.Onboarding.Steps {
		if _, ok := onboarding.StepOrders[onboarding.Device(device)]; !ok {
			return nil, fmt.Errorf("timing profile: unknown device %q", device)
		}
		for step := range steps {
			s := onboarding.Step(step)
			if !s.Active() || s == onboarding.StepWindowDrag {
				return nil, fmt.Errorf("timing profile: step %q has no duration", step)
			}
		}
	}
	return &p, nil
}

// LoadTimingProfile reads a profile from path. An empty path yields an empty
// profile.
func LoadTimingProfile(path string) (*TimingProfile, error) {
	if path == "" {
		return &TimingProfile{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read timing profile: %w", err)
	}
	return ParseTimingProfile(data)
}

// BootTimings applies the profile on top of base
func (p *TimingProfile) BootTimings(base boot.Timings) boot.Timings {
	if p == nil {
		return base
	}
	override(&base.ToBooting, p.Boot.ToBooting)
	override(&base.ToWelcome, p.Boot.ToWelcome)
	override(&base.ToComplete, p.Boot.ToComplete)
	return base
}

// TourTiming applies the profile on top of base. base.Steps is copied, never
// modified.
func (p *TimingProfile) TourTiming(base onboarding.Timing) onboarding.Timing {
	if p == nil {
		return base
	}
	override(&base.GhostDragSettle, p.Onboarding.GhostDragSettle)
	override(&base.RevealClose, p.Onboarding.RevealClose)
	override(&base.Relaunch, p.Onboarding.Relaunch)

	steps := make(map[onboarding.Device]map[onboarding.Step]time.Duration, len(base.Steps))
	for device, table := range base.Steps {
		cp := make(map[onboarding.Step]time.Duration, len(table))
		for step, d := range table {
			cp[step] = d
		}
		steps[device] = cp
	}
	for device, table := range p.Onboarding.Steps {
		dev := onboarding.Device(device)
		if steps[dev] == nil {
			steps[dev] = make(map[onboarding.Step]time.Duration)
		}
		for step, d := range table {
			steps[dev][onboarding.Step(step)] = time.Duration(d)
		}
	}
	base.Steps = steps
	return base
}

func override(dst *time.Duration, src *Duration) {
	if src != nil {
		*dst = time.Duration(*src)
	}
}
