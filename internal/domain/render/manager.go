package render

import (
	"sync"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/window"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
)

// Renderer draws a composed desktop
type Renderer interface {
	Render(frames []Frame)
}

// RendererFunc adapts a function to Renderer
type RendererFunc func(frames []Frame)

// Render implements Renderer
func (f RendererFunc) Render(frames []Frame) { f(frames) }

// TourSource is a Tour that also publishes status changes
type TourSource interface {
	Tour
	Subscribe(fn func(onboarding.Status)) (unsubscribe func())
}

// Manager keeps a Renderer in sync with the store and the tour. It
// re-renders when the visible window list, the focus or fullscreen cursors,
// or the tour highlights change, and on nothing else.
type Manager struct {
	store    *desktop.Store
	tour     TourSource
	renderer Renderer
	logger   *logging.Logger

	// renderMu orders whole renders so a stale compose never publishes
	// over a newer one
	renderMu sync.Mutex

	mu         sync.Mutex
	frames     []Frame
	highlights onboarding.Highlights
	stops      []func()
	renders    int
}

// NewManager creates a manager; call Start to begin rendering. tour may be nil.
func NewManager(store *desktop.Store, tour TourSource, renderer Renderer, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{store: store, tour: tour, renderer: renderer, logger: logger}
}

// Start renders once and subscribes to changes
func (m *Manager) Start() {
	m.mu.Lock()
	if m.stops != nil {
		m.mu.Unlock()
		return
	}
	m.stops = append(m.stops,
		desktop.Subscribe(m.store, selectScene, equalScene, func(scene) { m.render() }),
	)
	if m.tour != nil {
		m.highlights = m.tour.Highlights()
		m.stops = append(m.stops, m.tour.Subscribe(func(s onboarding.Status) {
			m.mu.Lock()
			changed := s.Highlights != m.highlights
			m.highlights = s.Highlights
			m.mu.Unlock()
			if changed {
				m.render()
			}
		}))
	}
	m.mu.Unlock()

	m.render()
}

// Stop unsubscribes from the store and tour
func (m *Manager) Stop() {
	m.mu.Lock()
	stops := m.stops
	m.stops = nil
	m.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
}

// Frames returns the most recently rendered frames
func (m *Manager) Frames() []Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Frame(nil), m.frames...)
}

// Renders returns how many times the renderer has been called
func (m *Manager) Renders() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renders
}

// scene is the part of the store a render depends on
type scene struct {
	visible []window.Instance
	cursors desktop.Cursors
}

func selectScene(st desktop.State) scene {
	return scene{visible: desktop.SelectVisible(st), cursors: desktop.SelectCursors(st)}
}

func equalScene(a, b scene) bool {
	return a.cursors == b.cursors && desktop.ShallowEqualWindows(a.visible, b.visible)
}

func (m *Manager) render() {
	m.renderMu.Lock()
	defer m.renderMu.Unlock()

	var tour Tour
	if m.tour != nil {
		tour = m.tour
	}

	frames, err := Compose(m.store.Snapshot(), m.store.Registry(), tour)
	if err != nil {
		// A window with no app is a build defect; development loggers panic here
		m.logger.DPanic("Cannot render window stack", zap.Error(err))
		return
	}

	m.mu.Lock()
	m.frames = frames
	m.renders++
	m.mu.Unlock()

	if m.renderer != nil {
		m.renderer.Render(frames)
	}
}
