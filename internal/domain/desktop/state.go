package desktop

import "github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"

// State is a point-in-time copy of the window manager. The window slice is
// the z-order: the last element is topmost.
type State struct {
	Windows            []window.Instance `json:"windows"`
	ActiveWindowID     window.AppID      `json:"activeWindowId,omitempty"`
	FullscreenWindowID window.AppID      `json:"fullscreenWindowId,omitempty"`
	Wallpaper          *string           `json:"wallpaper"`
	Dock               DockConfig        `json:"dockConfig"`
}

// Clone returns a copy that shares nothing mutable with s
func (s State) Clone() State {
	out := s
	out.Windows = make([]window.Instance, len(s.Windows))
	copy(out.Windows, s.Windows)
	if s.Wallpaper != nil {
		w := *s.Wallpaper
		out.Wallpaper = &w
	}
	return out
}

// Window returns the instance for id
func (s State) Window(id window.AppID) (window.Instance, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.Windows[i], true
	}
	return window.Instance{}, false
}

// VisibleWindows returns open windows in z-order
func (s State) VisibleWindows() []window.Instance {
	out := make([]window.Instance, 0, len(s.Windows))
	for _, w := range s.Windows {
		if w.IsOpen() {
			out = append(out, w)
		}
	}
	return out
}

func (s State) indexOf(id window.AppID) int {
	for i := range s.Windows {
		if s.Windows[i].ID == id {
			return i
		}
	}
	return -1
}

// topmostOpen searches from the top of the stack down, skipping minimized windows
func (s State) topmostOpen() window.AppID {
	for i := len(s.Windows) - 1; i >= 0; i-- {
		if s.Windows[i].IsOpen() {
			return s.Windows[i].ID
		}
	}
	return ""
}

// raise moves the window at i to the top and opens it
func (s *State) raise(i int) {
	w := s.Windows[i]
	w.Status = window.StatusOpen
	s.Windows = append(s.Windows[:i], s.Windows[i+1:]...)
	s.Windows = append(s.Windows, w)
	s.ActiveWindowID = w.ID
}

// release clears the cursors that pointed at id after it lost visibility
func (s *State) release(id window.AppID) {
	if s.ActiveWindowID == id {
		s.ActiveWindowID = s.topmostOpen()
	}
	if s.FullscreenWindowID == id {
		s.FullscreenWindowID = ""
	}
}
