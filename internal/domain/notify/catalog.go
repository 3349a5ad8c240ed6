package notify

// Built-in notification ids
const (
	IDWelcome    = "welcome"
	IDTourHint   = "tour-hint"
	IDResumeHint = "resume-hint"
)

// Catalog holds the notifications the desktop raises on its own
var Catalog = map[string]Notification{
	IDWelcome: {
		ID:    IDWelcome,
		Title: "Welcome to FolioOS",
		Body:  "Open an app from the dock to get started.",
		Icon:  "sparkles",
	},
	IDTourHint: {
		ID:    IDTourHint,
		Title: "Take the tour",
		Body:  "A short walkthrough shows you around the desktop.",
		Icon:  "compass",
	},
	IDResumeHint: {
		ID:    IDResumeHint,
		Title: "Need a refresher?",
		Body:  "You can replay the tour from Settings at any time.",
		Icon:  "info",
	},
}

// Lookup returns a built-in notification by id
func Lookup(id string) (Notification, bool) {
	n, ok := Catalog[id]
	return n, ok
}
