package desktop

import "github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"

// Subscribe calls fn with the selected slice of state whenever it changes
// according to equal. Selectors that build a new slice on every call must
// be paired with a structural equal (see ShallowEqualWindows), otherwise
// every commit looks like a change.
func Subscribe[T any](s *Store, selector func(State) T, equal func(a, b T) bool, fn func(T)) (unsubscribe func()) {
	s.mu.Lock()
	prev := selector(s.state)
	s.mu.Unlock()

	// Delivery is serialized by the store, so prev needs no lock of its own.
	return s.Listen(func(st State) {
		next := selector(st)
		if equal(prev, next) {
			return
		}
		prev = next
		fn(next)
	})
}

// SelectVisible selects the open windows in z-order
func SelectVisible(st State) []window.Instance {
	return st.VisibleWindows()
}

// ShallowEqualWindows compares two window lists element by element
func ShallowEqualWindows(a, b []window.Instance) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// Cursors is the focus/fullscreen projection of State
type Cursors struct {
	Active     window.AppID
	Fullscreen window.AppID
}

// SelectCursors selects the session cursors
func SelectCursors(st State) Cursors {
	return Cursors{Active: st.ActiveWindowID, Fullscreen: st.FullscreenWindowID}
}

// EqualComparable is the equal func for comparable selections
func EqualComparable[T comparable](a, b T) bool {
	return a == b
}
