package desktop

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/persist"
	"github.com/GriffinCanCode/FolioOS/backend/internal/shared/fanout"
)

// Recorder receives window metrics
type Recorder interface {
	RecordLaunch(app string)
	SetOpenWindows(count int)
}

// LaunchConfig overrides the computed placement or supplies app props
type LaunchConfig struct {
	Position *window.Position
	Size     *window.Size
	Props    window.Props
}

// Option configures a Store
type Option func(*Store)

// WithViewport sets the initial viewport
func WithViewport(vp window.Viewport) Option {
	return func(s *Store) { s.viewport = vp }
}

// WithLayout overrides the chrome dimensions used for placement
func WithLayout(l window.Layout) Option {
	return func(s *Store) { s.layout = l }
}

// WithInitialWindows seeds the stack, e.g. from URL state
func WithInitialWindows(ws ...window.Instance) Option {
	return func(s *Store) { s.seed = ws }
}

// WithPreferences restores and persists wallpaper and dock config
func WithPreferences(p *persist.PreferenceStore) Option {
	return func(s *Store) { s.prefs = p }
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithMetrics sets the metrics recorder
func WithMetrics(r Recorder) Option {
	return func(s *Store) { s.metrics = r }
}

// Store owns the window stack, focus and fullscreen cursors, and the two
// persisted preferences. All mutation goes through its methods.
//
// Listeners run outside the lock, in commit order. A listener may call back
// into the store; the resulting change is delivered after the current one.
type Store struct {
	registry *window.Registry
	layout   window.Layout
	viewport window.Viewport
	seed     []window.Instance
	prefs    *persist.PreferenceStore
	logger   *logging.Logger
	metrics  Recorder

	mu    sync.Mutex
	state State
	hub   *fanout.Hub[State]
}

// NewStore creates a store backed by registry
func NewStore(registry *window.Registry, opts ...Option) *Store {
	s := &Store{
		registry: registry,
		layout:   window.DefaultLayout(),
		viewport: window.DefaultViewport,
		hub:      fanout.New[State](),
		state:    State{Dock: DefaultDockConfig()},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.registry == nil {
		s.registry = window.DefaultRegistry()
	}

	if rec, ok := s.prefs.Load(context.Background()); ok {
		s.state.Wallpaper = rec.Wallpaper
		s.state.Dock = dockFromRecord(rec.Dock)
	}
	s.install(s.seed)
	s.seed = nil
	s.observe()

	return s
}

// install places seed records verbatim, dropping repeated ids
func (s *Store) install(ws []window.Instance) {
	seen := make(map[window.AppID]bool, len(ws))
	for _, w := range ws {
		if seen[w.ID] {
			s.logger.Warn("Dropping duplicate seed window", zap.String("app", w.ID.String()))
			continue
		}
		seen[w.ID] = true
		s.state.Windows = append(s.state.Windows, w)
	}
	s.state.ActiveWindowID = s.state.topmostOpen()
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Window returns the instance for id
func (s *Store) Window(id window.AppID) (window.Instance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Window(id)
}

// VisibleWindows returns open windows in z-order
func (s *Store) VisibleWindows() []window.Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.VisibleWindows()
}

// Viewport returns the viewport used for default placement
func (s *Store) Viewport() window.Viewport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewport
}

// SetViewport updates the viewport used for future placements
func (s *Store) SetViewport(vp window.Viewport) {
	if vp.Width <= 0 || vp.Height <= 0 {
		return
	}
	s.mu.Lock()
	s.viewport = vp
	s.mu.Unlock()
}

// Registry returns the app registry backing the store
func (s *Store) Registry() *window.Registry {
	return s.registry
}

// LaunchApp opens id, or restores and raises its existing window
func (s *Store) LaunchApp(id window.AppID, cfg *LaunchConfig) error {
	entry, err := s.registry.Resolve(id)
	if err != nil {
		return err
	}
	if cfg == nil {
		cfg = &LaunchConfig{}
	}
	if err := window.CheckProps(id, cfg.Props); err != nil {
		return err
	}

	s.update(func(st *State) bool {
		if i := st.indexOf(id); i >= 0 {
			if cfg.Props != nil {
				st.Windows[i].Props = cfg.Props
			}
			st.raise(i)
		} else {
			p := s.layout.Place(s.viewport, entry, len(st.Windows))
			if cfg.Position != nil {
				p.Position = *cfg.Position
			}
			if cfg.Size != nil {
				p.Size = *cfg.Size
			}
			st.Windows = append(st.Windows, window.Instance{
				ID:       id,
				Status:   window.StatusOpen,
				Position: p.Position,
				Size:     p.Size,
				Props:    cfg.Props,
			})
			st.ActiveWindowID = id
		}
		if entry.AutoFullscreen {
			st.FullscreenWindowID = id
		}
		return true
	})

	if s.metrics != nil {
		s.metrics.RecordLaunch(id.String())
	}
	s.logger.Debug("App launched", zap.String("app", id.String()))
	return nil
}

// CloseWindow removes id from the stack
func (s *Store) CloseWindow(id window.AppID) {
	s.update(func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 {
			return false
		}
		st.Windows = append(st.Windows[:i], st.Windows[i+1:]...)
		st.release(id)
		return true
	})
}

// FocusWindow raises id and makes it active
func (s *Store) FocusWindow(id window.AppID) {
	s.update(func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 {
			return false
		}
		if st.ActiveWindowID == id && i == len(st.Windows)-1 && st.Windows[i].IsOpen() {
			return false
		}
		st.raise(i)
		return true
	})
}

// MinimizeWindow hides id without reordering the stack
func (s *Store) MinimizeWindow(id window.AppID) {
	s.update(func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 {
			return false
		}
		if !st.Windows[i].IsOpen() && st.ActiveWindowID != id && st.FullscreenWindowID != id {
			return false
		}
		st.Windows[i].Status = window.StatusMinimized
		st.release(id)
		return true
	})
}

// UpdateWindowPosition moves id
func (s *Store) UpdateWindowPosition(id window.AppID, pos window.Position) {
	s.update(func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 || st.Windows[i].Position == pos {
			return false
		}
		st.Windows[i].Position = pos
		return true
	})
}

// UpdateWindowSize resizes id
func (s *Store) UpdateWindowSize(id window.AppID, size window.Size) {
	s.update(func(st *State) bool {
		i := st.indexOf(id)
		if i < 0 || st.Windows[i].Size == size {
			return false
		}
		st.Windows[i].Size = size
		return true
	})
}

// ToggleFullscreen makes id the fullscreen window, or leaves fullscreen if it already is
func (s *Store) ToggleFullscreen(id window.AppID) {
	s.update(func(st *State) bool {
		if st.FullscreenWindowID == id && id != "" {
			st.FullscreenWindowID = ""
			return true
		}
		i := st.indexOf(id)
		if i < 0 {
			return false
		}
		st.raise(i)
		st.FullscreenWindowID = id
		return true
	})
}

// ExitFullscreen clears the fullscreen cursor
func (s *Store) ExitFullscreen() {
	s.update(func(st *State) bool {
		if st.FullscreenWindowID == "" {
			return false
		}
		st.FullscreenWindowID = ""
		return true
	})
}

// SetWallpaper sets the wallpaper path; nil restores the default
func (s *Store) SetWallpaper(path *string) {
	s.update(func(st *State) bool {
		if path == nil {
			st.Wallpaper = nil
		} else {
			w := *path
			st.Wallpaper = &w
		}
		return true
	})
	s.savePreferences()
}

// SetDockConfig applies a partial dock update
func (s *Store) SetDockConfig(patch DockPatch) {
	s.update(func(st *State) bool {
		next := st.Dock.Apply(patch)
		if next == st.Dock {
			return false
		}
		st.Dock = next
		return true
	})
	s.savePreferences()
}

func (s *Store) savePreferences() {
	if s.prefs == nil {
		return
	}
	s.mu.Lock()
	rec := persist.PreferencesRecord{Wallpaper: s.state.Clone().Wallpaper, Dock: s.state.Dock.record()}
	s.mu.Unlock()

	s.prefs.Save(context.Background(), rec)
}

// Listen registers fn for every committed change
func (s *Store) Listen(fn func(State)) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

// update applies fn under the lock and, when it reports a change, queues a
// snapshot for listeners
func (s *Store) update(fn func(*State) bool) {
	s.mu.Lock()
	before := len(s.state.Windows)
	if !fn(&s.state) {
		s.mu.Unlock()
		return
	}
	s.hub.Enqueue(s.state.Clone())
	count := len(s.state.Windows)
	s.mu.Unlock()

	if count != before && s.metrics != nil {
		s.metrics.SetOpenWindows(count)
	}
	s.hub.Flush()
}

func (s *Store) observe() {
	if s.metrics == nil {
		return
	}
	s.mu.Lock()
	n := len(s.state.Windows)
	s.mu.Unlock()
	s.metrics.SetOpenWindows(n)
}
