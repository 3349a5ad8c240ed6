package persist

import (
	"sort"

	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
)

// PreferencesRecord is the persisted shape of window-manager preferences.
// Only these fields are ever restored; window state never is.
type PreferencesRecord struct {
	Wallpaper *string    `json:"wallpaper"`
	Dock      DockRecord `json:"dockConfig"`
}

// DockRecord mirrors the dock configuration
type DockRecord struct {
	Position      string `json:"position"`
	IconSize      int    `json:"iconSize"`
	Magnification bool   `json:"magnification"`
	AutoHide      bool   `json:"autoHide"`
}

// OnboardingRecord is the persisted onboarding state
type OnboardingRecord struct {
	HasCompletedTour bool `json:"hasCompletedTour"`
}

// NotificationsRecord stores the seen-set as a sorted array
type NotificationsRecord struct {
	Seen []string `json:"seen"`
}

// SeenSet converts the stored array into a set
func (r NotificationsRecord) SeenSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Seen))
	for _, id := range r.Seen {
		set[id] = struct{}{}
	}
	return set
}

// RecordFromSet converts a seen-set into its stored form
func RecordFromSet(set map[string]struct{}) NotificationsRecord {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return NotificationsRecord{Seen: ids}
}

type (
	PreferenceStore   = Boundary[PreferencesRecord]
	OnboardingStore   = Boundary[OnboardingRecord]
	NotificationStore = Boundary[NotificationsRecord]
)

// NewPreferenceStore binds window-manager preferences to storage
func NewPreferenceStore(s Storage, logger *logging.Logger) *PreferenceStore {
	return NewBoundary(s, Codec[PreferencesRecord]{Key: KeyPreferences, Version: 1}, logger)
}

// NewOnboardingStore binds onboarding completion to storage
func NewOnboardingStore(s Storage, logger *logging.Logger) *OnboardingStore {
	return NewBoundary(s, Codec[OnboardingRecord]{Key: KeyOnboarding, Version: 1}, logger)
}

// NewNotificationStore binds the notification seen-set to storage
func NewNotificationStore(s Storage, logger *logging.Logger) *NotificationStore {
	return NewBoundary(s, Codec[NotificationsRecord]{Key: KeyNotifications, Version: 1}, logger)
}
