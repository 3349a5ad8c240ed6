package ws

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/boot"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/desktop"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/notify"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/onboarding"
	"github.com/GriffinCanCode/FolioOS/backend/internal/domain/render"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
)

// Message types (server to client)
const (
	TypeSystem        = "system"
	TypeDesktop       = "desktop"
	TypeBoot          = "boot"
	TypeTour          = "tour"
	TypeNotifications = "notifications"
	TypeFrames        = "frames"
	TypePong          = "pong"
	TypeError         = "error"
)

// Client message types
const (
	TypePing = "ping"
)

// Recorder receives stream metrics
type Recorder interface {
	RecordWSMessage(direction, msgType string)
	IncWSConnections()
	DecWSConnections()
}

// FrameSource publishes every composed frame list
type FrameSource interface {
	Subscribe(fn func([]render.Frame)) (unsubscribe func())
}

// Sources are the components a connection observes
type Sources struct {
	Store  *desktop.Store
	Boot   *boot.Controller
	Tour   *onboarding.Orchestrator
	Notify *notify.Queue
	Frames FrameSource
	// Render supplies the frames a new connection starts from
	Render *render.Manager
}

// BootStatus is the payload of a boot message
type BootStatus struct {
	Phase boot.Phase `json:"phase"`
}

// Handler manages WebSocket connections
type Handler struct {
	src      Sources
	metrics  Recorder
	logger   *logging.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

// NewHandler creates a new WebSocket handler
func NewHandler(src Sources, metrics Recorder, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Handler{
		src:     src,
		metrics: metrics,
		logger:  logger,
		upgrader: websocket.Upgrader{
			// The desktop is public and carries no credentials
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
}

// HandleConnection upgrades the request and streams session state until the
// client goes away
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	cl := newClient(uuid.NewString(), conn, h.metrics, h.logger)
	h.track(cl)
	defer h.untrack(cl)

	h.logger.Debug("Stream connected", zap.String("conn", cl.id))

	stops := h.subscribe(cl)
	defer func() {
		for _, stop := range stops {
			stop()
		}
	}()

	cl.seed(Message{Type: TypeSystem, Message: "Connected to FolioOS", Data: gin.H{"connectionId": cl.id}})
	h.seedState(cl)

	cl.serve(func(msg inbound) {
		switch msg.Type {
		case TypePing:
			cl.push(Message{Type: TypePong})
		default:
			cl.push(Message{Type: TypeError, Message: "unknown message type"})
		}
	})

	h.logger.Debug("Stream disconnected", zap.String("conn", cl.id))
}

// subscribe forwards every component change to cl
func (h *Handler) subscribe(cl *client) []func() {
	stops := []func(){
		h.src.Store.Listen(func(st desktop.State) {
			cl.push(Message{Type: TypeDesktop, Data: st})
		}),
		h.src.Boot.Subscribe(func(p boot.Phase) {
			cl.push(Message{Type: TypeBoot, Data: BootStatus{Phase: p}})
		}),
		h.src.Tour.Subscribe(func(s onboarding.Status) {
			cl.push(Message{Type: TypeTour, Data: s})
		}),
		h.src.Notify.Subscribe(func(v notify.View) {
			cl.push(Message{Type: TypeNotifications, Data: v})
		}),
	}
	if h.src.Frames != nil {
		stops = append(stops, h.src.Frames.Subscribe(func(f []render.Frame) {
			cl.push(Message{Type: TypeFrames, Data: f})
		}))
	}
	return stops
}

// seedState queues the current value of everything a client observes
func (h *Handler) seedState(cl *client) {
	cl.seed(Message{Type: TypeDesktop, Data: h.src.Store.Snapshot()})
	cl.seed(Message{Type: TypeBoot, Data: BootStatus{Phase: h.src.Boot.Phase()}})
	cl.seed(Message{Type: TypeTour, Data: h.src.Tour.Status()})
	cl.seed(Message{Type: TypeNotifications, Data: h.src.Notify.View()})
	if h.src.Render != nil {
		frames := h.src.Render.Frames()
		if frames == nil {
			frames = []render.Frame{}
		}
		cl.seed(Message{Type: TypeFrames, Data: frames})
	}
}

func (h *Handler) track(cl *client) {
	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()
	if h.metrics != nil {
		h.metrics.IncWSConnections()
	}
}

func (h *Handler) untrack(cl *client) {
	if h.metrics != nil {
		h.metrics.DecWSConnections()
	}
	h.mu.Lock()
	delete(h.clients, cl.id)
	h.mu.Unlock()
}

// Connections returns the number of open streams
func (h *Handler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// CloseAll sends a going-away close frame to every stream and drops it
func (h *Handler) CloseAll() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		clients = append(clients, cl)
	}
	h.mu.Unlock()

	for _, cl := range clients {
		cl.goAway()
	}
}
