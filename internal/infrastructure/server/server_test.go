package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/notify"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/persist"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/FolioOS/backend/internal/scheduler"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

// bootDuration is long enough for the default boot sequence to finish
var bootDuration = func() time.Duration {
	t := boot.DefaultTimings()
	return t.ToBooting + t.ToWelcome + t.ToComplete
}()

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Logging.Development = true
	return cfg
}

func newSession(t *testing.T, cfg *config.Config, opts ...SessionOption) (*Session, *scheduler.ManualClock) {
	t.Helper()

	clock := scheduler.NewManualClock(time.Unix(0, 0))
	s, err := NewSession(cfg, nil, append([]SessionOption{
		WithClock(clock),
		WithRegisterer(prometheus.NewRegistry()),
	}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })

	s.Start(context.Background())
	return s, clock
}

func currentID(q *notify.Queue) string {
	d, ok := q.Current()
	if !ok {
		return ""
	}
	return d.Notification.ID
}

func pendingIDs(q *notify.Queue) []string {
	var ids []string
	for _, n := range q.Pending() {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestBootCompletionGreetsAndStartsTour(t *testing.T) {
	s, clock := newSession(t, testConfig())

	s.Boot.Mount()
	clock.Advance(bootDuration)

	assert.Equal(t, boot.PhaseComplete, s.Boot.Phase())
	assert.Equal(t, onboarding.StepWindowControls, s.Tour.Step())
	assert.Equal(t, notify.IDWelcome, currentID(s.Notify))
	assert.Equal(t, []string{notify.IDTourHint}, pendingIDs(s.Notify))

	// Finishing the tour points at the replay option
	s.Tour.SkipTour()
	assert.Equal(t, []string{notify.IDTourHint, notify.IDResumeHint}, pendingIDs(s.Notify))
}

func TestSecondBootInSessionDoesNotGreetAgain(t *testing.T) {
	s, clock := newSession(t, testConfig())

	s.Boot.Mount()
	clock.Advance(bootDuration)
	s.Boot.Unmount()
	s.Boot.Mount()

	assert.Equal(t, boot.PhaseComplete, s.Boot.Phase())
	assert.Equal(t, []string{notify.IDTourHint}, pendingIDs(s.Notify))
}

func TestReturningVisitorSkipsTour(t *testing.T) {
	storage := persist.NewMemoryStorage()

	first, clock := newSession(t, testConfig(), WithStorage(storage))
	first.Boot.Mount()
	clock.Advance(bootDuration)
	first.Tour.SkipTour()
	require.NoError(t, first.Close())

	second, clock := newSession(t, testConfig(), WithStorage(storage))
	assert.True(t, second.Tour.HasCompletedTour())

	second.Boot.Mount()
	clock.Advance(bootDuration)

	assert.Equal(t, onboarding.StepIdle, second.Tour.Step())
	assert.True(t, second.Notify.Seen(notify.IDWelcome))
	assert.Equal(t, notify.IDResumeHint, currentID(second.Notify))
	assert.Empty(t, pendingIDs(second.Notify))
}

func TestMobileSessionUsesMobileTour(t *testing.T) {
	cfg := testConfig()
	cfg.Desktop.Device = "mobile"
	s, clock := newSession(t, cfg)

	s.Boot.Mount()
	clock.Advance(bootDuration)

	st := s.Tour.Status()
	assert.Equal(t, onboarding.DeviceMobile, st.Device)
	assert.Equal(t, onboarding.OrderFor(onboarding.DeviceMobile), st.Order)
}

func TestSessionAppliesConfig(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "apps.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte(`
apps:
  - id: guestbook
    displayName: Guestbook
    component: GuestbookApp
    icon: book
    defaultSize: {width: 480, height: 360}
    inDock: true
`), 0o600))
	profile := filepath.Join(dir, "timing.toml")
	require.NoError(t, os.WriteFile(profile, []byte("[boot]\nto_welcome = \"1s\"\n"), 0o600))

	cfg := testConfig()
	cfg.Desktop.AppManifest = manifest
	cfg.Desktop.TimingProfile = profile
	cfg.Desktop.ReducedMotion = true
	cfg.Desktop.ViewportWidth = 800
	cfg.Desktop.ViewportHeight = 600

	s, _ := newSession(t, cfg, WithInitialWindows(window.Instance{
		ID:     window.AppAbout,
		Status: window.StatusOpen,
		Size:   window.Size{Width: 300, Height: 200},
	}))

	_, ok := s.Registry.Lookup("guestbook")
	assert.True(t, ok)
	assert.Equal(t, window.Viewport{Width: 800, Height: 600}, s.Store.Viewport())
	assert.Equal(t, 500*time.Millisecond, s.Boot.Timings().ToWelcome)
	assert.Len(t, s.Store.Snapshot().Windows, 1)
	assert.Equal(t, float64(window.DefaultRegistry().Len()+1), testutil.ToFloat64(s.Metrics.RegistryApps))
}

func TestNewSessionErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"missing manifest", func(c *config.Config) { c.Desktop.AppManifest = "/nonexistent/apps.yaml" }},
		{"missing profile", func(c *config.Config) { c.Desktop.TimingProfile = "/nonexistent/timing.toml" }},
		{"unknown backend", func(c *config.Config) { c.Storage.Backend = "redis" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := NewSession(cfg, nil, WithRegisterer(prometheus.NewRegistry()))
			assert.Error(t, err)
		})
	}
}

func TestOpenStorage(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name       string
		cfg        config.StorageConfig
		wantCloser bool
	}{
		{"memory", config.StorageConfig{Backend: config.BackendMemory}, false},
		{"file", config.StorageConfig{Backend: config.BackendFile, Path: filepath.Join(dir, "kv")}, false},
		{"sqlite", config.StorageConfig{Backend: config.BackendSQLite, Path: filepath.Join(dir, "folio.db")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			storage, closer, err := OpenStorage(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCloser, closer != nil)

			require.NoError(t, storage.Set(ctx, "k", []byte(`{"v":1}`)))
			got, err := storage.Get(ctx, "k")
			require.NoError(t, err)
			assert.JSONEq(t, `{"v":1}`, string(got))

			if closer != nil {
				require.NoError(t, closer())
			}
		})
	}

	_, _, err := OpenStorage(config.StorageConfig{Backend: "redis"})
	assert.Error(t, err)
}

type brokenStorage struct{}

var errBroken = errors.New("quota exceeded")

func (brokenStorage) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenStorage) Set(context.Context, string, []byte) error  { return errBroken }
func (brokenStorage) Delete(context.Context, string) error       { return errBroken }

func TestBrokenStorageOpensBreaker(t *testing.T) {
	s, _ := newSession(t, testConfig(), WithStorage(brokenStorage{}))

	wallpaper := "/wallpapers/night.jpg"
	for i := 0; i < breakerThreshold+1; i++ {
		s.Store.SetWallpaper(&wallpaper)
	}

	// Writes fail silently; the desktop keeps working in memory
	require.NotNil(t, s.Store.Snapshot().Wallpaper)
	assert.Equal(t, wallpaper, *s.Store.Snapshot().Wallpaper)
	assert.Equal(t, 2.0, testutil.ToFloat64(s.Metrics.StorageBreaker.WithLabelValues("storage")))
}

func newServer(t *testing.T) *Server {
	t.Helper()

	clock := scheduler.NewManualClock(time.Unix(0, 0))
	srv, err := NewServer(testConfig(), nil,
		WithMetricsRegistry(prometheus.NewRegistry()),
		WithSessionOptions(WithClock(clock)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, srv.Close()) })
	return srv
}

func TestServerRoutes(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		method string
		path   string
		status int
		body   string
	}{
		{http.MethodGet, "/health", http.StatusOK, `"status":"healthy"`},
		{http.MethodPost, "/windows/about/launch", http.StatusOK, `"activeWindowId":"about"`},
		{http.MethodGet, "/desktop", http.StatusOK, `"id":"about"`},
		{http.MethodGet, "/frames", http.StatusOK, `"app":{"id":"about"`},
		{http.MethodGet, "/boot", http.StatusOK, `"phase":"hidden"`},
		{http.MethodGet, "/tour", http.StatusOK, `"step":"idle"`},
		{http.MethodGet, "/notifications", http.StatusOK, `"pending":[]`},
		{http.MethodGet, "/metrics", http.StatusOK, "folio_app_launches_total"},
		{http.MethodGet, "/metrics/json", http.StatusOK, `"launches":1`},
		{http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)

		assert.Equal(t, tt.status, w.Code, tt.path)
		assert.NotEmpty(t, w.Header().Get(tracing.HeaderTraceID), tt.path)
		if tt.body != "" {
			assert.Contains(t, w.Body.String(), tt.body, tt.path)
		}
	}
}

func TestServerCORSPreflight(t *testing.T) {
	srv := newServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/preferences/dock", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, strings.Contains(w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch))
}

func TestServerRunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = "0"

	srv, err := NewServer(cfg, nil, WithMetricsRegistry(prometheus.NewRegistry()))
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
