package notify

import (
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/GriffinCanCode/FolioOS/backend/internal/shared/id"
)

// Notification is a toast the desktop shows once per lifetime
type Notification struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
	Icon  string `json:"icon,omitempty"`
}

// Delivery is one showing of a notification
type Delivery struct {
	InstanceID   id.DeliveryID `json:"instanceId"`
	Notification Notification  `json:"notification"`
	At           time.Time     `json:"at"`
}

var strict = bluemonday.StrictPolicy()

// Sanitized returns n with markup stripped from its text fields. Entities
// the policy escapes are decoded again since the text is rendered as text.
func (n Notification) Sanitized() Notification {
	n.ID = strings.TrimSpace(n.ID)
	n.Title = plain(n.Title)
	n.Body = plain(n.Body)
	n.Icon = strings.TrimSpace(n.Icon)
	return n
}

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
