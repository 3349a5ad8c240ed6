package desktop

import (
	"fmt"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/persist"
)

// DockPosition is the screen edge the dock is attached to
type DockPosition string

const (
	DockBottom DockPosition = "bottom"
	DockLeft   DockPosition = "left"
	DockRight  DockPosition = "right"
)

// Icon size bounds in pixels
const (
	MinDockIconSize = 32
	MaxDockIconSize = 96
)

// DockConfig is the persisted dock preference
type DockConfig struct {
	Position      DockPosition `json:"position"`
	IconSize      int          `json:"iconSize"`
	Magnification bool         `json:"magnification"`
	AutoHide      bool         `json:"autoHide"`
}

// DefaultDockConfig returns the out-of-box dock
func DefaultDockConfig() DockConfig {
	return DockConfig{
		Position:      DockBottom,
		IconSize:      56,
		Magnification: true,
	}
}

// DockPatch is a partial update; nil fields are left alone
type DockPatch struct {
	Position      *DockPosition `json:"position,omitempty"`
	IconSize      *int          `json:"iconSize,omitempty"`
	Magnification *bool         `json:"magnification,omitempty"`
	AutoHide      *bool         `json:"autoHide,omitempty"`
}

// Validate rejects unknown dock positions
func (p DockPatch) Validate() error {
	if p.Position == nil {
		return nil
	}
	switch *p.Position {
	case DockBottom, DockLeft, DockRight:
		return nil
	}
	return fmt.Errorf("invalid dock position %q", *p.Position)
}

// Apply returns c with the patch applied and icon size clamped
func (c DockConfig) Apply(p DockPatch) DockConfig {
	if p.Position != nil && p.Validate() == nil {
		c.Position = *p.Position
	}
	if p.IconSize != nil {
		c.IconSize = clampIconSize(*p.IconSize)
	}
	if p.Magnification != nil {
		c.Magnification = *p.Magnification
	}
	if p.AutoHide != nil {
		c.AutoHide = *p.AutoHide
	}
	return c
}

func clampIconSize(n int) int {
	return min(MaxDockIconSize, max(MinDockIconSize, n))
}

func (c DockConfig) record() persist.DockRecord {
	return persist.DockRecord{
		Position:      string(c.Position),
		IconSize:      c.IconSize,
		Magnification: c.Magnification,
		AutoHide:      c.AutoHide,
	}
}

// dockFromRecord restores a stored dock, repairing out-of-range values
func dockFromRecord(r persist.DockRecord) DockConfig {
	c := DefaultDockConfig()
	pos := DockPosition(r.Position)
	return c.Apply(DockPatch{
		Position:      &pos,
		IconSize:      &r.IconSize,
		Magnification: &r.Magnification,
		AutoHide:      &r.AutoHide,
	})
}
