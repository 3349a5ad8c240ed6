package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/notify"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/render"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/FolioOS/backend/internal/scheduler"
	"github.com/GriffinCanCode/FolioOS/backend/internal/shared/fanout"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

var initialTypes = []string{TypeSystem, TypeDesktop, TypeBoot, TypeTour, TypeNotifications, TypeFrames}

type stream struct {
	handler *Handler
	store   *desktop.Store
	boot    *boot.Controller
	tour    *onboarding.Orchestrator
	queue   *notify.Queue
	clock   *scheduler.ManualClock
	metrics *monitoring.Metrics
	url     string
}

type received struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newStream(t *testing.T) stream {
	t.Helper()

	clock := scheduler.NewManualClock(time.Unix(0, 0))
	store := desktop.NewStore(window.DefaultRegistry())
	bootCtl := boot.NewController(boot.WithClock(clock))
	tour := onboarding.NewOrchestrator(store, onboarding.WithClock(clock))
	tour.Hydrate(context.Background())
	queue := notify.NewQueue(notify.WithClock(clock))
	frames := fanout.New[[]render.Frame]()
	manager := render.NewManager(store, tour, render.RendererFunc(frames.Publish), nil)
	manager.Start()

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	handler := NewHandler(Sources{
		Store:  store,
		Boot:   bootCtl,
		Tour:   tour,
		Notify: queue,
		Frames: frames,
		Render: manager,
	}, metrics, nil)

	router := gin.New()
	router.GET("/stream", handler.HandleConnection)
	srv := httptest.NewServer(router)

	t.Cleanup(func() {
		handler.CloseAll()
		require.Eventually(t, func() bool { return handler.Connections() == 0 }, 2*time.Second, 10*time.Millisecond)
		srv.Close()
		manager.Stop()
		queue.Close()
		tour.Close()
		bootCtl.Unmount()
	})

	return stream{
		handler: handler,
		store:   store,
		boot:    bootCtl,
		tour:    tour,
		queue:   queue,
		clock:   clock,
		metrics: metrics,
		url:     "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream",
	}
}

func (s stream) dial(t *testing.T) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(s.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// read collects messages until every wanted type has arrived
func read(t *testing.T, conn *websocket.Conn, types ...string) map[string]received {
	t.Helper()

	want := make(map[string]bool, len(types))
	for _, typ := range types {
		want[typ] = true
	}

	got := make(map[string]received)
	for len(want) > 0 {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		got[msg.Type] = msg
		delete(want, msg.Type)
	}
	return got
}

func TestStreamSendsInitialState(t *testing.T) {
	s := newStream(t)
	conn := s.dial(t)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var first received
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, TypeSystem, first.Type)
	assert.Contains(t, string(first.Data), "connectionId")

	got := read(t, conn, initialTypes[1:]...)

	var st desktop.State
	require.NoError(t, json.Unmarshal(got[TypeDesktop].Data, &st))
	assert.Empty(t, st.Windows)

	var bs BootStatus
	require.NoError(t, json.Unmarshal(got[TypeBoot].Data, &bs))
	assert.Equal(t, boot.PhaseHidden, bs.Phase)

	var tour onboarding.Status
	require.NoError(t, json.Unmarshal(got[TypeTour].Data, &tour))
	assert.Equal(t, onboarding.StepIdle, tour.Step)
	assert.True(t, tour.Hydrated)

	assert.JSONEq(t, `{"current":null,"pending":[]}`, string(got[TypeNotifications].Data))
	assert.JSONEq(t, `[]`, string(got[TypeFrames].Data))
}

func TestStreamPushesChanges(t *testing.T) {
	s := newStream(t)
	conn := s.dial(t)
	read(t, conn, initialTypes...)

	require.NoError(t, s.store.LaunchApp(window.AppAbout, nil))
	got := read(t, conn, TypeDesktop, TypeFrames)

	var st desktop.State
	require.NoError(t, json.Unmarshal(got[TypeDesktop].Data, &st))
	require.Len(t, st.Windows, 1)
	assert.Equal(t, window.AppAbout, st.ActiveWindowID)

	var frames []struct {
		App    window.Entry `json:"app"`
		Active bool         `json:"active"`
	}
	require.NoError(t, json.Unmarshal(got[TypeFrames].Data, &frames))
	require.Len(t, frames, 1)
	assert.Equal(t, window.AppAbout, frames[0].App.ID)
	assert.True(t, frames[0].Active)

	s.boot.Mount()
	s.clock.Advance(boot.DefaultTimings().ToBooting)
	got = read(t, conn, TypeBoot)
	var bs BootStatus
	require.NoError(t, json.Unmarshal(got[TypeBoot].Data, &bs))
	assert.Equal(t, boot.PhaseBooting, bs.Phase)

	s.tour.StartForDevice(onboarding.DeviceDesktop)
	got = read(t, conn, TypeTour)
	var tour onboarding.Status
	require.NoError(t, json.Unmarshal(got[TypeTour].Data, &tour))
	assert.Equal(t, onboarding.StepWindowControls, tour.Step)

	welcome, _ := notify.Lookup(notify.IDWelcome)
	require.True(t, s.queue.Enqueue(welcome))
	got = read(t, conn, TypeNotifications)
	var view notify.View
	require.NoError(t, json.Unmarshal(got[TypeNotifications].Data, &view))
	require.NotNil(t, view.Current)
	assert.Equal(t, notify.IDWelcome, view.Current.Notification.ID)
}

func TestStreamClientMessages(t *testing.T) {
	s := newStream(t)
	conn := s.dial(t)
	read(t, conn, initialTypes...)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": TypePing}))
	read(t, conn, TypePong)

	require.NoError(t, conn.WriteJSON(map[string]string{"type": "chat"}))
	got := read(t, conn, TypeError)
	assert.Equal(t, "unknown message type", got[TypeError].Message)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	got = read(t, conn, TypeError)
	assert.Equal(t, "malformed message", got[TypeError].Message)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.WSMessages.WithLabelValues("in", TypePing)))
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(s.metrics.WSMessages.WithLabelValues("out", TypePong)) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestStreamTracksConnections(t *testing.T) {
	s := newStream(t)

	first := s.dial(t)
	read(t, first, initialTypes...)
	second := s.dial(t)
	read(t, second, initialTypes...)

	assert.Equal(t, 2, s.handler.Connections())
	assert.Equal(t, 2.0, testutil.ToFloat64(s.metrics.WSConnections))

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return s.handler.Connections() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.WSConnections))

	// The closed client no longer receives updates; the open one does
	require.NoError(t, s.store.LaunchApp(window.AppFAQ, nil))
	read(t, second, TypeDesktop)
}

func TestCloseAllSendsGoingAway(t *testing.T) {
	s := newStream(t)
	conn := s.dial(t)
	read(t, conn, initialTypes...)

	s.handler.CloseAll()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), err.Error())
	require.Eventually(t, func() bool { return s.handler.Connections() == 0 }, 2*time.Second, 10*time.Millisecond)
}
