package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/tracing"
)

// LaunchRequest is the optional body of a launch. Props use the flat
// envelope, e.g. {"kind": "markdown", "source": "/docs/cv.md"}.
type LaunchRequest struct {
	Position *window.Position `json:"position"`
	Size     *window.Size     `json:"size"`
	Props    json.RawMessage  `json:"props"`
}

// PositionRequest moves a window
type PositionRequest struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

// SizeRequest resizes a window or the viewport
type SizeRequest struct {
	Width  int `json:"width" binding:"required,gt=0"`
	Height int `json:"height" binding:"required,gt=0"`
}

// WallpaperRequest sets the wallpaper; null restores the default
type WallpaperRequest struct {
	Wallpaper *string `json:"wallpaper"`
}

func appID(c *gin.Context) window.AppID {
	return window.AppID(c.Param("id"))
}

// LaunchApp opens an app or raises its existing window
func (h *Handlers) LaunchApp(c *gin.Context) {
	var req LaunchRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	props, err := window.DecodeProps(req.Props)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id := appID(c)
	err = h.store.LaunchApp(id, &desktop.LaunchConfig{
		Position: req.Position,
		Size:     req.Size,
		Props:    props,
	})
	switch {
	case errors.Is(err, window.ErrUnregisteredApp):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "app_id": id})
		return
	case errors.Is(err, window.ErrPropsMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "app_id": id})
		return
	case err != nil:
		h.logger.Error("Launch failed",
			zap.String("app", id.String()),
			zap.String("trace_id", string(tracing.GetTraceID(c.Request.Context()))),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.store.Snapshot())
}

// FocusWindow raises a window and makes it active
func (h *Handlers) FocusWindow(c *gin.Context) {
	h.store.FocusWindow(appID(c))
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// MinimizeWindow hides a window without closing it
func (h *Handlers) MinimizeWindow(c *gin.Context) {
	h.store.MinimizeWindow(appID(c))
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// CloseWindow removes a window from the stack
func (h *Handlers) CloseWindow(c *gin.Context) {
	h.store.CloseWindow(appID(c))
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// UpdatePosition records where a window was dragged to
func (h *Handlers) UpdatePosition(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.UpdateWindowPosition(appID(c), window.Position{X: *req.X, Y: *req.Y})
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// UpdateSize records a window resize
func (h *Handlers) UpdateSize(c *gin.Context) {
	var req SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.UpdateWindowSize(appID(c), window.Size{Width: req.Width, Height: req.Height})
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// ToggleFullscreen flips a window's fullscreen state
func (h *Handlers) ToggleFullscreen(c *gin.Context) {
	h.store.ToggleFullscreen(appID(c))
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// ExitFullscreen clears fullscreen on whatever window holds it
func (h *Handlers) ExitFullscreen(c *gin.Context) {
	h.store.ExitFullscreen()
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// SetViewport tells the store how large the screen is
func (h *Handlers) SetViewport(c *gin.Context) {
	var req SizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vp := window.Viewport{Width: req.Width, Height: req.Height}
	h.store.SetViewport(vp)
	c.JSON(http.StatusOK, gin.H{"viewport": vp})
}

// SetWallpaper changes the persisted wallpaper
func (h *Handlers) SetWallpaper(c *gin.Context) {
	var req WallpaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.SetWallpaper(req.Wallpaper)
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// SetDock applies a partial dock update
func (h *Handlers) SetDock(c *gin.Context) {
	var patch desktop.DockPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := patch.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.store.SetDockConfig(patch)
	c.JSON(http.StatusOK, h.store.Snapshot())
}
