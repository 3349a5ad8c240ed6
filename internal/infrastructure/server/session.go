package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/notify"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/render"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/persist"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/FolioOS/backend/internal/scheduler"
	"github.com/GriffinCanCode/FolioOS/backend/internal/shared/fanout"
)

// Storage breaker settings
const (
	breakerThreshold = 3
	breakerCooldown  = 30 * time.Second
)

// SessionOption configures a Session
type SessionOption func(*sessionOptions)

type sessionOptions struct {
	clock    scheduler.Clock
	storage  persist.Storage
	registry prometheus.Registerer
	windows  []window.Instance
}

// WithClock runs every timer in the session on c
func WithClock(c scheduler.Clock) SessionOption {
	return func(o *sessionOptions) { o.clock = c }
}

// WithStorage replaces the configured storage backend
func WithStorage(s persist.Storage) SessionOption {
	return func(o *sessionOptions) { o.storage = s }
}

// WithRegisterer registers session metrics on reg instead of the default registry
func WithRegisterer(reg prometheus.Registerer) SessionOption {
	return func(o *sessionOptions) { o.registry = reg }
}

// WithInitialWindows seeds the window stack, e.g. from a deep link
func WithInitialWindows(ws ...window.Instance) SessionOption {
	return func(o *sessionOptions) { o.windows = ws }
}

// Session owns one desktop: the store, the boot sequence, the tour, the
// notification queue and the render binding, wired to each other.
type Session struct {
	Registry *window.Registry
	Store    *desktop.Store
	Boot     *boot.Controller
	Tour     *onboarding.Orchestrator
	Notify   *notify.Queue
	Render   *render.Manager
	Frames   *fanout.Hub[[]render.Frame]
	Metrics  *monitoring.Metrics

	device  onboarding.Device
	logger  *logging.Logger
	storage persist.Storage
	closer  func() error

	mu        sync.Mutex
	started   bool
	welcomed  bool
	completed bool
	stops     []func()
}

// NewSession builds a session from cfg. Nothing runs until Start.
func NewSession(cfg *config.Config, logger *logging.Logger, opts ...SessionOption) (*Session, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := sessionOptions{clock: scheduler.RealClock{}, registry: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		Metrics: monitoring.NewMetrics(o.registry),
		Frames:  fanout.New[[]render.Frame](),
		device:  onboarding.ParseDevice(cfg.Desktop.Device),
		logger:  logger,
	}

	s.Registry = window.DefaultRegistry()
	if cfg.Desktop.AppManifest != "" {
		n, err := s.Registry.LoadManifest(cfg.Desktop.AppManifest)
		if err != nil {
			return nil, fmt.Errorf("failed to load app manifest: %w", err)
		}
		logger.Info("App manifest loaded", zap.String("path", cfg.Desktop.AppManifest), zap.Int("apps", n))
	}
	s.Metrics.SetRegistryApps(s.Registry.Len())

	profile, err := config.LoadTimingProfile(cfg.Desktop.TimingProfile)
	if err != nil {
		return nil, err
	}

	backend := o.storage
	if backend == nil {
		backend, s.closer, err = OpenStorage(cfg.Storage)
		if err != nil {
			return nil, err
		}
	}
	storeLog := logger.Component("storage")
	s.storage = persist.NewGuarded(backend, resilience.Settings{
		FailureThreshold: breakerThreshold,
		Cooldown:         breakerCooldown,
		Now:              o.clock.Now,
		OnStateChange: func(name string, from, to resilience.State) {
			storeLog.Warn("Storage breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			s.Metrics.SetBreakerState(name, int(to))
		},
	}, storeLog)

	s.Store = desktop.NewStore(s.Registry,
		desktop.WithViewport(window.Viewport{Width: cfg.Desktop.ViewportWidth, Height: cfg.Desktop.ViewportHeight}),
		desktop.WithInitialWindows(o.windows...),
		desktop.WithPreferences(persist.NewPreferenceStore(s.storage, storeLog)),
		desktop.WithLogger(logger.Component("desktop")),
		desktop.WithMetrics(s.Metrics),
	)

	s.Boot = boot.NewController(
		boot.WithClock(o.clock),
		boot.WithTimings(profile.BootTimings(boot.DefaultTimings())),
		boot.WithReducedMotion(cfg.Desktop.ReducedMotion),
		boot.WithSessionFlags(persist.NewSessionFlags()),
		boot.WithLogger(logger.Component("boot")),
		boot.WithMetrics(s.Metrics),
	)

	s.Tour = onboarding.NewOrchestrator(s.Store,
		onboarding.WithClock(o.clock),
		onboarding.WithTiming(profile.TourTiming(onboarding.DefaultTiming())),
		onboarding.WithReducedMotion(cfg.Desktop.ReducedMotion),
		onboarding.WithDevice(s.device),
		onboarding.WithStore(persist.NewOnboardingStore(s.storage, storeLog)),
		onboarding.WithLogger(logger.Component("onboarding")),
		onboarding.WithMetrics(s.Metrics),
	)

	s.Notify = notify.NewQueue(
		notify.WithClock(o.clock),
		notify.WithDisplayFor(cfg.Desktop.NotificationFor),
		notify.WithStore(persist.NewNotificationStore(s.storage, storeLog)),
		notify.WithLogger(logger.Component("notify")),
		notify.WithMetrics(s.Metrics),
	)

	s.Render = render.NewManager(s.Store, s.Tour, render.RendererFunc(s.Frames.Publish), logger.Component("render"))
	return s, nil
}

// OpenStorage opens the configured backend. The returned closer may be nil.
func OpenStorage(cfg config.StorageConfig) (persist.Storage, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		return persist.NewMemoryStorage(), nil, nil
	case config.BackendFile:
		fs, err := persist.NewFileStorage(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return fs, nil, nil
	case config.BackendSQLite:
		db, err := persist.OpenSQLite(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
}

// Device returns the device the tour starts for
func (s *Session) Device() onboarding.Device {
	return s.device
}

// Start hydrates persisted state and begins rendering. The boot sequence
// waits for the front end to mount it.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.Tour.Hydrate(ctx)
	s.Notify.Hydrate(ctx)

	stops := []func(){
		s.Boot.Subscribe(s.onBootPhase),
		s.Tour.Subscribe(s.onTourStatus),
	}
	s.mu.Lock()
	s.completed = s.Tour.HasCompletedTour()
	s.stops = stops
	s.mu.Unlock()

	s.Render.Start()
	s.logger.Info("Desktop session started",
		zap.String("device", string(s.device)),
		zap.Bool("tour_completed", s.Tour.HasCompletedTour()),
	)
}

// onBootPhase greets the visitor once the desktop is revealed
func (s *Session) onBootPhase(p boot.Phase) {
	if p != boot.PhaseComplete {
		return
	}
	s.mu.Lock()
	first := !s.welcomed
	s.welcomed = true
	s.mu.Unlock()
	if !first {
		return
	}

	s.enqueue(notify.IDWelcome)
	if s.Tour.HasCompletedTour() {
		s.enqueue(notify.IDResumeHint)
		return
	}
	s.enqueue(notify.IDTourHint)
	s.Tour.StartForDevice(s.device)
}

// onTourStatus points at the dock once the tour finishes
func (s *Session) onTourStatus(st onboarding.Status) {
	s.mu.Lock()
	finished := st.HasCompletedTour && !s.completed
	s.completed = st.HasCompletedTour
	s.mu.Unlock()

	if finished {
		s.enqueue(notify.IDResumeHint)
	}
}

func (s *Session) enqueue(id string) {
	n, ok := notify.Lookup(id)
	if !ok {
		s.logger.DPanic("Missing catalog notification", zap.String("id", id))
		return
	}
	s.Notify.Enqueue(n)
}

// Close stops every timer and subscription and releases storage
func (s *Session) Close() error {
	s.mu.Lock()
	stops := s.stops
	s.stops = nil
	s.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	s.Render.Stop()
	s.Boot.Unmount()
	s.Tour.Close()
	s.Notify.Close()

	if s.closer != nil {
		if err := s.closer(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	return nil
}
