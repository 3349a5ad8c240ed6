package render

import (
	"fmt"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
)

// Tour is the onboarding surface the window manager wires into the active
// window
type Tour interface {
	Highlights() onboarding.Highlights
	OnGhostDragComplete()
}

// Frame is one visible window ready to draw
type Frame struct {
	Instance   window.Instance `json:"window"`
	Entry      window.Entry    `json:"app"`
	Active     bool            `json:"active"`
	Fullscreen bool            `json:"fullscreen"`
	// Z is the stacking order, 0 at the bottom
	Z int `json:"z"`
	// Highlights and OnGhostDragComplete are set on the active frame only
	Highlights          onboarding.Highlights `json:"highlights"`
	OnGhostDragComplete func()                `json:"-"`
}

// Compose resolves every visible window in st against registry, bottom to
// top. Only the frame for the active window carries tour wiring; tour may be
// nil. An id with no registry entry fails the whole composition.
func Compose(st desktop.State, registry *window.Registry, tour Tour) ([]Frame, error) {
	visible := st.VisibleWindows()
	frames := make([]Frame, 0, len(visible))

	for z, w := range visible {
		entry, err := registry.Resolve(w.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to compose window %d: %w", z, err)
		}

		f := Frame{
			Instance:   w,
			Entry:      entry,
			Active:     w.ID == st.ActiveWindowID,
			Fullscreen: w.ID == st.FullscreenWindowID,
			Z:          z,
		}
		if f.Active && tour != nil {
			f.Highlights = tour.Highlights()
			f.OnGhostDragComplete = tour.OnGhostDragComplete
		}
		frames = append(frames, f)
	}
	return frames, nil
}
