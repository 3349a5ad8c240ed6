package window

// Viewport is the size of the browser viewport in pixels
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultViewport is used until the front end reports its real size
var DefaultViewport = Viewport{Width: 1440, Height: 900}

// Layout holds the fixed chrome dimensions used by default placement
type Layout struct {
	StatusBarHeight int
	DockHeight      int
	MinMargin       int
	CascadeStep     int
	CascadeCycle    int
}

// DefaultLayout matches the desktop chrome: a 32px status bar and an 80px dock.
func DefaultLayout() Layout {
	return Layout{
		StatusBarHeight: 32,
		DockHeight:      80,
		MinMargin:       16,
		CascadeStep:     24,
		CascadeCycle:    6,
	}
}

// Placement is a computed window frame
type Placement struct {
	Position Position
	Size     Size
}

// CascadeOffset returns the stagger applied to the index-th window.
func (l Layout) CascadeOffset(index int) int {
	if l.CascadeCycle <= 0 || index < 0 {
		return 0
	}
	return (index % l.CascadeCycle) * l.CascadeStep
}

// Centered places a window of the given size in the middle of the usable band
// between status bar and dock, staggered by its cascade index.
func (l Layout) Centered(vp Viewport, size Size, index int) Placement {
	offset := l.CascadeOffset(index)

	x := max(l.MinMargin, (vp.Width-size.Width)/2)
	band := vp.Height - l.StatusBarHeight - l.DockHeight
	y := l.StatusBarHeight + max(0, (band-size.Height)/2)

	return Placement{
		Position: Position{X: x + offset, Y: y + offset},
		Size:     size,
	}
}

// Maximized fills the usable band, leaving the margin on every side.
func (l Layout) Maximized(vp Viewport) Placement {
	w := vp.Width - 2*l.MinMargin
	h := vp.Height - l.StatusBarHeight - l.DockHeight - 2*l.MinMargin

	return Placement{
		Position: Position{X: l.MinMargin, Y: l.StatusBarHeight + l.MinMargin},
		Size:     Size{Width: max(1, w), Height: max(1, h)},
	}
}

// Place computes the default frame for an app entry.
func (l Layout) Place(vp Viewport, e Entry, index int) Placement {
	if e.Maximized {
		return l.Maximized(vp)
	}
	return l.Centered(vp, e.DefaultSize, index)
}
