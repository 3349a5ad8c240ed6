package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/notify"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/render"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
)

// Desktop is the session the handlers drive
type Desktop struct {
	Store  *desktop.Store
	Boot   *boot.Controller
	Tour   *onboarding.Orchestrator
	Notify *notify.Queue
	Render *render.Manager
	// Device is used when a tour is started without one
	Device onboarding.Device
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store  *desktop.Store
	boot   *boot.Controller
	tour   *onboarding.Orchestrator
	notify *notify.Queue
	render *render.Manager
	device onboarding.Device
	logger *logging.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(d Desktop, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handlers{
		store:  d.Store,
		boot:   d.Boot,
		tour:   d.Tour,
		notify: d.Notify,
		render: d.Render,
		device: d.Device,
		logger: logger,
	}
}

// Register adds every route to r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/apps", h.ListApps)
	r.GET("/desktop", h.GetDesktop)

	// Window management
	r.POST("/windows/:id/launch", h.LaunchApp)
	r.POST("/windows/:id/focus", h.FocusWindow)
	r.POST("/windows/:id/minimize", h.MinimizeWindow)
	r.DELETE("/windows/:id", h.CloseWindow)
	r.PUT("/windows/:id/position", h.UpdatePosition)
	r.PUT("/windows/:id/size", h.UpdateSize)
	r.POST("/windows/:id/fullscreen", h.ToggleFullscreen)
	r.DELETE("/fullscreen", h.ExitFullscreen)
	r.PUT("/viewport", h.SetViewport)

	// Preferences
	r.PUT("/preferences/wallpaper", h.SetWallpaper)
	r.PATCH("/preferences/dock", h.SetDock)

	// Boot sequence
	r.GET("/boot", h.GetBoot)
	r.POST("/boot/mount", h.MountBoot)
	r.POST("/boot/skip", h.SkipBoot)

	// Onboarding tour
	r.GET("/tour", h.GetTour)
	r.POST("/tour/start", h.StartTour)
	r.POST("/tour/advance", h.AdvanceTour)
	r.POST("/tour/skip", h.SkipTour)
	r.POST("/tour/ghost-drag-complete", h.GhostDragComplete)
	r.POST("/tour/reset", h.ResetTour)

	// Notifications
	r.GET("/notifications", h.GetNotifications)
	r.POST("/notifications/dismiss", h.DismissNotification)
	r.POST("/notifications/:id", h.EnqueueNotification)

	r.GET("/frames", h.GetFrames)
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"service":       "FolioOS desktop session",
		"boot_phase":    h.boot.Phase(),
		"tour_step":     h.tour.Step(),
		"open_windows":  len(h.store.VisibleWindows()),
		"registry_apps": h.store.Registry().Len(),
	})
}

// ListApps returns every registered application
func (h *Handlers) ListApps(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"apps": h.store.Registry().Entries(),
	})
}

// GetDesktop returns a snapshot of the window manager
func (h *Handlers) GetDesktop(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}
