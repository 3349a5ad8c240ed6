package window

import "errors"

var (
	// ErrUnregisteredApp means an app id has no registry entry. This is a
	// configuration defect, never a runtime race.
	ErrUnregisteredApp = errors.New("app is not registered")
	// ErrUnknownPropsKind means a props envelope names no known variant.
	ErrUnknownPropsKind = errors.New("unknown props kind")
)

// AppID identifies an application. There is at most one window per AppID.
type AppID string

// Built-in applications
const (
	AppAbout    AppID = "about"
	AppFAQ      AppID = "faq"
	AppProjects AppID = "projects"
	AppMarkdown AppID = "markdown"
	AppTerminal AppID = "terminal"
	AppSettings AppID = "settings"
	AppFolder   AppID = "folder"
	AppBrowser  AppID = "browser"
)

// String returns the id as a string
func (id AppID) String() string { return string(id) }

// Status represents a window's visibility state
type Status string

const (
	StatusOpen      Status = "open"
	StatusMinimized Status = "minimized"
)

// Position is a window origin in viewport pixels
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Size is a window extent in pixels
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

// Instance is one open or minimized application window.
type Instance struct {
	ID       AppID    `json:"id"`
	Status   Status   `json:"status"`
	Position Position `json:"position"`
	Size     Size     `json:"size"`
	Props    Props    `json:"-"`
}

// IsOpen reports whether the window is visible
func (w Instance) IsOpen() bool {
	return w.Status == StatusOpen
}

// Equal compares two instances field by field, props included.
func (w Instance) Equal(o Instance) bool {
	return w.ID == o.ID &&
		w.Status == o.Status &&
		w.Position == o.Position &&
		w.Size == o.Size &&
		propsEqual(w.Props, o.Props)
}
