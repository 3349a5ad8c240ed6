package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/notify"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/render"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/FolioOS/backend/internal/scheduler"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

type fixture struct {
	router *gin.Engine
	store  *desktop.Store
	clock  *scheduler.ManualClock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	clock := scheduler.NewManualClock(time.Unix(0, 0))
	store := desktop.NewStore(window.DefaultRegistry())
	bootCtl := boot.NewController(boot.WithClock(clock))
	tour := onboarding.NewOrchestrator(store, onboarding.WithClock(clock))
	tour.Hydrate(context.Background())
	queue := notify.NewQueue(notify.WithClock(clock))
	manager := render.NewManager(store, tour, render.RendererFunc(func([]render.Frame) {}), nil)
	manager.Start()

	t.Cleanup(func() {
		manager.Stop()
		queue.Close()
		tour.Close()
		bootCtl.Unmount()
	})

	router := gin.New()
	NewHandlers(Desktop{
		Store:  store,
		Boot:   bootCtl,
		Tour:   tour,
		Notify: queue,
		Render: manager,
		Device: onboarding.DeviceDesktop,
	}, nil).Register(router)

	return fixture{router: router, store: store, clock: clock}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[map[string]interface{}](t, w)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "hidden", body["boot_phase"])
	assert.Equal(t, "idle", body["tour_step"])
	assert.Equal(t, float64(0), body["open_windows"])
}

func TestListApps(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/apps", "")
	require.Equal(t, http.StatusOK, w.Code)

	body := decode[struct {
		Apps []window.Entry `json:"apps"`
	}](t, w)
	assert.Len(t, body.Apps, window.DefaultRegistry().Len())
}

func TestEmptyDesktopListsNoWindows(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/desktop", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"windows":[]`)
}

func TestLaunchApp(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{name: "no body", id: "about", status: http.StatusOK},
		{name: "matching props", id: "markdown", body: `{"props":{"kind":"markdown","source":"/docs/cv.md"}}`, status: http.StatusOK},
		{name: "explicit placement", id: "faq", body: `{"position":{"x":10,"y":20},"size":{"width":300,"height":200}}`, status: http.StatusOK},
		{name: "unregistered app", id: "solitaire", status: http.StatusNotFound},
		{name: "foreign props", id: "about", body: `{"props":{"kind":"markdown","source":"/x.md"}}`, status: http.StatusBadRequest},
		{name: "unknown props kind", id: "about", body: `{"props":{"kind":"spreadsheet"}}`, status: http.StatusBadRequest},
		{name: "malformed body", id: "about", body: `{"position":`, status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			w := f.do(t, http.MethodPost, "/windows/"+tt.id+"/launch", tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status != http.StatusOK {
				assert.Empty(t, f.store.Snapshot().Windows)
				return
			}

			st := decode[desktop.State](t, w)
			require.Len(t, st.Windows, 1)
			assert.Equal(t, window.AppID(tt.id), st.ActiveWindowID)
		})
	}
}

func TestLaunchKeepsProps(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/windows/markdown/launch", `{"props":{"kind":"markdown","source":"/docs/cv.md","title":"CV"}}`)
	require.Equal(t, http.StatusOK, w.Code)

	inst, ok := f.store.Window(window.AppMarkdown)
	require.True(t, ok)
	assert.Equal(t, window.MarkdownProps{Source: "/docs/cv.md", Title: "CV"}, inst.Props)

	st := decode[desktop.State](t, w)
	assert.Equal(t, inst.Props, st.Windows[0].Props)
}

func TestWindowActions(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/windows/about/launch", "").Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/windows/faq/launch", "").Code)

	w := f.do(t, http.MethodPost, "/windows/about/focus", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, window.AppAbout, decode[desktop.State](t, w).ActiveWindowID)

	w = f.do(t, http.MethodPut, "/windows/about/position", `{"x":0,"y":48}`)
	require.Equal(t, http.StatusOK, w.Code)
	about, _ := f.store.Window(window.AppAbout)
	assert.Equal(t, window.Position{X: 0, Y: 48}, about.Position)

	w = f.do(t, http.MethodPut, "/windows/about/size", `{"width":500,"height":400}`)
	require.Equal(t, http.StatusOK, w.Code)
	about, _ = f.store.Window(window.AppAbout)
	assert.Equal(t, window.Size{Width: 500, Height: 400}, about.Size)

	w = f.do(t, http.MethodPost, "/windows/about/fullscreen", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, window.AppAbout, decode[desktop.State](t, w).FullscreenWindowID)

	w = f.do(t, http.MethodDelete, "/fullscreen", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[desktop.State](t, w).FullscreenWindowID)

	w = f.do(t, http.MethodPost, "/windows/about/minimize", "")
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[desktop.State](t, w)
	assert.Equal(t, window.AppFAQ, st.ActiveWindowID)

	w = f.do(t, http.MethodDelete, "/windows/faq", "")
	require.Equal(t, http.StatusOK, w.Code)
	st = decode[desktop.State](t, w)
	require.Len(t, st.Windows, 1)
	assert.Equal(t, window.AppAbout, st.Windows[0].ID)

	// Unknown ids are silent no-ops
	w = f.do(t, http.MethodPost, "/windows/solitaire/focus", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, st, f.store.Snapshot())
}

func TestWindowActionValidation(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"position missing y", http.MethodPut, "/windows/about/position", `{"x":1}`},
		{"position not json", http.MethodPut, "/windows/about/position", `x=1`},
		{"zero size", http.MethodPut, "/windows/about/size", `{"width":0,"height":10}`},
		{"negative viewport", http.MethodPut, "/viewport", `{"width":-1,"height":10}`},
		{"bad dock position", http.MethodPatch, "/preferences/dock", `{"position":"top"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			require.NoError(t, f.store.LaunchApp(window.AppAbout, nil))
			before := f.store.Snapshot()

			w := f.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "error")
			assert.Equal(t, before, f.store.Snapshot())
		})
	}
}

func TestViewportAndPreferences(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPut, "/viewport", `{"width":390,"height":844}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, window.Viewport{Width: 390, Height: 844}, f.store.Viewport())

	w = f.do(t, http.MethodPut, "/preferences/wallpaper", `{"wallpaper":"/wallpapers/dunes.jpg"}`)
	require.Equal(t, http.StatusOK, w.Code)
	st := decode[desktop.State](t, w)
	require.NotNil(t, st.Wallpaper)
	assert.Equal(t, "/wallpapers/dunes.jpg", *st.Wallpaper)

	w = f.do(t, http.MethodPut, "/preferences/wallpaper", `{"wallpaper":null}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode[desktop.State](t, w).Wallpaper)

	w = f.do(t, http.MethodPatch, "/preferences/dock", `{"position":"left","iconSize":64}`)
	require.Equal(t, http.StatusOK, w.Code)
	dock := decode[desktop.State](t, w).Dock
	assert.Equal(t, desktop.DockLeft, dock.Position)
	assert.Equal(t, 64, dock.IconSize)
	assert.True(t, dock.Magnification)
}

func TestBootRoutes(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/boot", "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[BootStatus](t, w)
	assert.Equal(t, boot.PhaseHidden, status.Phase)
	assert.Equal(t, boot.DefaultTimings().ToWelcome.Milliseconds(), status.Timings.ToWelcome)

	w = f.do(t, http.MethodPost, "/boot/mount", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, boot.PhaseHidden, decode[BootStatus](t, w).Phase)

	f.clock.Advance(boot.DefaultTimings().ToBooting)
	assert.Equal(t, boot.PhaseBooting, decode[BootStatus](t, f.do(t, http.MethodGet, "/boot", "")).Phase)

	w = f.do(t, http.MethodPost, "/boot/skip", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, boot.PhaseComplete, decode[BootStatus](t, w).Phase)
	assert.Zero(t, f.clock.Pending())
}

func TestBootSkipBeforeMount(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/boot/skip", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, boot.PhaseComplete, decode[BootStatus](t, w).Phase)

	w = f.do(t, http.MethodPost, "/boot/mount", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, boot.PhaseComplete, decode[BootStatus](t, w).Phase)
	assert.Zero(t, f.clock.Pending())
}

func TestTourRoutes(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/tour/start", "")
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[onboarding.Status](t, w)
	assert.Equal(t, onboarding.StepWindowControls, status.Step)
	assert.True(t, status.Highlights.WindowControls)
	assert.True(t, status.Tooltip.Visible)

	w = f.do(t, http.MethodPost, "/tour/advance", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, onboarding.StepWindowDrag, decode[onboarding.Status](t, w).Step)

	w = f.do(t, http.MethodPost, "/tour/ghost-drag-complete", "")
	require.Equal(t, http.StatusOK, w.Code)
	f.clock.Advance(onboarding.DefaultTiming().GhostDragSettle)
	assert.Equal(t, onboarding.StepDock, decode[onboarding.Status](t, f.do(t, http.MethodGet, "/tour", "")).Step)

	w = f.do(t, http.MethodPost, "/tour/skip", "")
	require.Equal(t, http.StatusOK, w.Code)
	status = decode[onboarding.Status](t, w)
	assert.Equal(t, onboarding.StepComplete, status.Step)
	assert.True(t, status.HasCompletedTour)

	// A completed tour does not restart
	w = f.do(t, http.MethodPost, "/tour/start", "")
	assert.Equal(t, onboarding.StepComplete, decode[onboarding.Status](t, w).Step)

	w = f.do(t, http.MethodPost, "/tour/reset", "")
	require.Equal(t, http.StatusOK, w.Code)
	status = decode[onboarding.Status](t, w)
	assert.Equal(t, onboarding.StepIdle, status.Step)
	assert.False(t, status.HasCompletedTour)
}

func TestTourStartForDevice(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/tour/start", `{"device":"mobile"}`)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[onboarding.Status](t, w)
	assert.Equal(t, onboarding.DeviceMobile, status.Device)
	assert.Equal(t, onboarding.OrderFor(onboarding.DeviceMobile), status.Order)
}

func TestTourStartWithOrder(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/tour/start", `{"order":["dock","outro"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[onboarding.Status](t, w)
	assert.Equal(t, onboarding.StepDock, status.Step)
	assert.Equal(t, []onboarding.Step{onboarding.StepDock, onboarding.StepOutro}, status.Order)
}

func TestTourStartRejectsUnknownStep(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/tour/start", `{"order":["dock","bogus"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "bogus")

	w = f.do(t, http.MethodGet, "/tour", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, onboarding.StepIdle, decode[onboarding.Status](t, w).Step)
}

func TestNotificationRoutes(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/notifications", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decode[notify.View](t, w)
	assert.Nil(t, view.Current)
	assert.Empty(t, view.Pending)

	type enqueued struct {
		Queued        bool        `json:"queued"`
		Notifications notify.View `json:"notifications"`
	}

	w = f.do(t, http.MethodPost, "/notifications/welcome", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[enqueued](t, w)
	assert.True(t, got.Queued)
	require.NotNil(t, got.Notifications.Current)
	assert.Equal(t, notify.IDWelcome, got.Notifications.Current.Notification.ID)

	w = f.do(t, http.MethodPost, "/notifications/tour-hint", "")
	got = decode[enqueued](t, w)
	assert.True(t, got.Queued)
	require.Len(t, got.Notifications.Pending, 1)

	w = f.do(t, http.MethodPost, "/notifications/welcome", "")
	assert.False(t, decode[enqueued](t, w).Queued)

	w = f.do(t, http.MethodPost, "/notifications/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/notifications/dismiss", "")
	require.Equal(t, http.StatusOK, w.Code)
	view = decode[notify.View](t, w)
	require.NotNil(t, view.Current)
	assert.Equal(t, notify.IDTourHint, view.Current.Notification.ID)
	assert.Empty(t, view.Pending)
}

func TestFrames(t *testing.T) {
	f := newFixture(t)

	type framesBody struct {
		Frames []struct {
			Window     json.RawMessage       `json:"window"`
			App        window.Entry          `json:"app"`
			Active     bool                  `json:"active"`
			Z          int                   `json:"z"`
			Highlights onboarding.Highlights `json:"highlights"`
		} `json:"frames"`
	}

	w := f.do(t, http.MethodGet, "/frames", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[framesBody](t, w).Frames)

	require.NoError(t, f.store.LaunchApp(window.AppAbout, nil))
	require.NoError(t, f.store.LaunchApp(window.AppFAQ, nil))
	f.do(t, http.MethodPost, "/tour/start", "")

	body := decode[framesBody](t, f.do(t, http.MethodGet, "/frames", ""))
	require.Len(t, body.Frames, 2)
	assert.Equal(t, window.AppAbout, body.Frames[0].App.ID)
	assert.False(t, body.Frames[0].Active)
	assert.False(t, body.Frames[0].Highlights.WindowControls)
	assert.Equal(t, 1, body.Frames[1].Z)
	assert.True(t, body.Frames[1].Active)
	assert.True(t, body.Frames[1].Highlights.WindowControls)
}
