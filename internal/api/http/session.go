package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/notify"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/render"
)

// BootStatus is the boot sequence as the front end sees it
type BootStatus struct {
	Phase   boot.Phase  `json:"phase"`
	Timings BootTimings `json:"timings"`
}

// BootTimings are the effective phase durations in milliseconds
type BootTimings struct {
	ToBooting  int64 `json:"toBootingMs"`
	ToWelcome  int64 `json:"toWelcomeMs"`
	ToComplete int64 `json:"toCompleteMs"`
}

// StartTourRequest optionally picks the device or an explicit step order
type StartTourRequest struct {
	Device string            `json:"device"`
	Order  []onboarding.Step `json:"order"`
}

func (h *Handlers) bootStatus() BootStatus {
	t := h.boot.Timings()
	return BootStatus{
		Phase: h.boot.Phase(),
		Timings: BootTimings{
			ToBooting:  t.ToBooting.Milliseconds(),
			ToWelcome:  t.ToWelcome.Milliseconds(),
			ToComplete: t.ToComplete.Milliseconds(),
		},
	}
}

// GetBoot returns the current boot phase
func (h *Handlers) GetBoot(c *gin.Context) {
	c.JSON(http.StatusOK, h.bootStatus())
}

// MountBoot starts the boot sequence; a session that already booted goes
// straight to complete
func (h *Handlers) MountBoot(c *gin.Context) {
	h.boot.Mount()
	c.JSON(http.StatusOK, h.bootStatus())
}

// SkipBoot jumps to the desktop
func (h *Handlers) SkipBoot(c *gin.Context) {
	h.boot.SkipToComplete()
	c.JSON(http.StatusOK, h.bootStatus())
}

// GetTour returns the tour status
func (h *Handlers) GetTour(c *gin.Context) {
	c.JSON(http.StatusOK, h.tour.Status())
}

// StartTour begins the tour. It is ignored while hydrating, once completed
// or when a tour is already running.
func (h *Handlers) StartTour(c *gin.Context) {
	var req StartTourRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	for _, step := range req.Order {
		if !step.Known() {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown tour step %q", step)})
			return
		}
	}

	switch {
	case len(req.Order) > 0:
		if req.Device != "" {
			h.tour.SetDevice(onboarding.ParseDevice(req.Device))
		}
		h.tour.StartTour(req.Order)
	case req.Device != "":
		h.tour.StartForDevice(onboarding.ParseDevice(req.Device))
	default:
		h.tour.StartForDevice(h.device)
	}
	c.JSON(http.StatusOK, h.tour.Status())
}

// AdvanceTour moves to the next step
func (h *Handlers) AdvanceTour(c *gin.Context) {
	h.tour.AdvanceStep()
	c.JSON(http.StatusOK, h.tour.Status())
}

// SkipTour ends the tour and records it as completed
func (h *Handlers) SkipTour(c *gin.Context) {
	h.tour.SkipTour()
	c.JSON(http.StatusOK, h.tour.Status())
}

// GhostDragComplete is posted by the window chrome when the drag demo ends
func (h *Handlers) GhostDragComplete(c *gin.Context) {
	h.tour.OnGhostDragComplete()
	c.JSON(http.StatusOK, h.tour.Status())
}

// ResetTour clears completion so the tour can be replayed
func (h *Handlers) ResetTour(c *gin.Context) {
	h.tour.ResetTour()
	c.JSON(http.StatusOK, h.tour.Status())
}

// GetNotifications returns the current and pending notifications
func (h *Handlers) GetNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, h.notify.View())
}

// EnqueueNotification queues a catalog notification by id
func (h *Handlers) EnqueueNotification(c *gin.Context) {
	id := c.Param("id")
	n, ok := notify.Lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown notification", "id": id})
		return
	}

	queued := h.notify.Enqueue(n)
	c.JSON(http.StatusOK, gin.H{
		"queued":        queued,
		"notifications": h.notify.View(),
	})
}

// DismissNotification closes the current notification
func (h *Handlers) DismissNotification(c *gin.Context) {
	h.notify.Dismiss()
	c.JSON(http.StatusOK, h.notify.View())
}

// GetFrames returns the last composed window frames. The active frame's
// highlights tell the client whether to report a ghost drag.
func (h *Handlers) GetFrames(c *gin.Context) {
	frames := h.render.Frames()
	if frames == nil {
		frames = []render.Frame{}
	}
	c.JSON(http.StatusOK, gin.H{"frames": frames})
}
