package onboarding

// Highlights are the attention flags read by the dock, window chrome and
// icon grid. The tour never touches those components; it only publishes
// these booleans.
type Highlights struct {
	WindowControls    bool `json:"windowControls"`
	WindowHeader      bool `json:"windowHeader"`
	ShouldGhostDrag   bool `json:"shouldGhostDrag"`
	Dock              bool `json:"dock"`
	DockProjectsStack bool `json:"dockProjectsStack"`
	DesktopIcons      bool `json:"desktopIcons"`
}

// Any reports whether any flag is raised
func (h Highlights) Any() bool {
	return h != Highlights{}
}

// HighlightsFor derives the flags for step
func HighlightsFor(step Step, device Device) Highlights {
	switch step {
	case StepWindowControls:
		return Highlights{WindowControls: true}
	case StepWindowDrag:
		return Highlights{WindowHeader: true, ShouldGhostDrag: true}
	case StepDock:
		return Highlights{Dock: true}
	case StepDockProjectsStack:
		if device != DeviceMobile {
			return Highlights{}
		}
		return Highlights{DockProjectsStack: true}
	case StepDesktopIcons:
		return Highlights{DesktopIcons: true}
	default:
		return Highlights{}
	}
}

// TooltipPlacement hints where the tooltip sits relative to its target
type TooltipPlacement string

const (
	PlaceTop    TooltipPlacement = "top"
	PlaceBottom TooltipPlacement = "bottom"
	PlaceLeft   TooltipPlacement = "left"
	PlaceRight  TooltipPlacement = "right"
	PlaceCenter TooltipPlacement = "center"
)

// Tooltip is the copy shown for a step
type Tooltip struct {
	Visible   bool             `json:"visible"`
	Title     string           `json:"title,omitempty"`
	Body      string           `json:"body,omitempty"`
	Placement TooltipPlacement `json:"placement,omitempty"`
}

// TooltipFor returns the copy for step on device. Idle, complete and
// unknown steps get a hidden tooltip.
func TooltipFor(step Step, device Device) Tooltip {
	mobile := device == DeviceMobile

	switch step {
	case StepWindowControls:
		if mobile {
			return Tooltip{Visible: true, Title: "Windows", Body: "Tap the buttons in the corner to close or minimize a window.", Placement: PlaceBottom}
		}
		return Tooltip{Visible: true, Title: "Window controls", Body: "Close, minimize and fullscreen live in the top-left corner of every window.", Placement: PlaceRight}
	case StepWindowDrag:
		return Tooltip{Visible: true, Title: "Move things around", Body: "Drag a window by its title bar to rearrange your desktop.", Placement: PlaceBottom}
	case StepDock:
		if mobile {
			return Tooltip{Visible: true, Title: "The dock", Body: "Tap an icon at the bottom to open an app.", Placement: PlaceTop}
		}
		return Tooltip{Visible: true, Title: "The dock", Body: "Every app lives in the dock. Click an icon to open or bring it forward.", Placement: PlaceTop}
	case StepDockProjectsStack:
		if mobile {
			return Tooltip{Visible: true, Title: "Projects", Body: "The projects stack collects everything I've built. Tap it to fan them out.", Placement: PlaceTop}
		}
		return Tooltip{}
	case StepDesktopIcons:
		if mobile {
			return Tooltip{Visible: true, Title: "Desktop", Body: "Files and folders sit on the desktop. Tap one to open it.", Placement: PlaceCenter}
		}
		return Tooltip{Visible: true, Title: "Desktop", Body: "Double-click a desktop icon to open files and folders.", Placement: PlaceLeft}
	case StepOutro:
		return Tooltip{Visible: true, Title: "You're all set", Body: "Explore at your own pace. You can replay this tour from Settings.", Placement: PlaceCenter}
	default:
		return Tooltip{}
	}
}
