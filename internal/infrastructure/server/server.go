package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/FolioOS/backend/internal/api/http"
	"github.com/GriffinCanCode/FolioOS/backend/internal/api/middleware"
	"github.com/GriffinCanCode/FolioOS/backend/internal/api/ws"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/FolioOS/backend/internal/infrastructure/tracing"
)

const shutdownTimeout = 5 * time.Second

// Server wraps the HTTP server and the desktop session behind it
type Server struct {
	router  *gin.Engine
	session *Session
	tracer  *tracing.Tracer
	stream  *ws.Handler
	logger  *logging.Logger
	config  *config.Config
}

// Option configures a Server
type Option func(*options)

type options struct {
	session  []SessionOption
	gatherer prometheus.Gatherer
}

// WithSessionOptions passes opts through to NewSession
func WithSessionOptions(opts ...SessionOption) Option {
	return func(o *options) { o.session = append(o.session, opts...) }
}

// WithMetricsRegistry registers and serves metrics from reg
func WithMetricsRegistry(reg *prometheus.Registry) Option {
	return func(o *options) {
		o.session = append(o.session, WithRegisterer(reg))
		o.gatherer = reg
	}
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config, logger *logging.Logger, opts ...Option) (*Server, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := options{gatherer: prometheus.DefaultGatherer}
	for _, opt := range opts {
		opt(&o)
	}

	logger.Info("Initializing FolioOS Server",
		zap.String("addr", cfg.Addr()),
		zap.String("storage", cfg.Storage.Backend),
		zap.String("device", cfg.Desktop.Device),
	)

	session, err := NewSession(cfg, logger, o.session...)
	if err != nil {
		return nil, fmt.Errorf("failed to build desktop session: %w", err)
	}
	session.Start(context.Background())

	tracer := tracing.New("folio", logger.Component("tracing").Logger)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(session.Metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))

	handlers := apihttp.NewHandlers(apihttp.Desktop{
		Store:  session.Store,
		Boot:   session.Boot,
		Tour:   session.Tour,
		Notify: session.Notify,
		Render: session.Render,
		Device: session.Device(),
	}, logger.Component("http"))
	stream := ws.NewHandler(ws.Sources{
		Store:  session.Store,
		Boot:   session.Boot,
		Tour:   session.Tour,
		Notify: session.Notify,
		Frames: session.Frames,
		Render: session.Render,
	}, session.Metrics, logger.Component("ws"))

	handlers.Register(router)
	router.GET("/stream", stream.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(o.gatherer, promhttp.HandlerOpts{})))
	router.GET("/metrics/json", func(c *gin.Context) {
		c.JSON(http.StatusOK, session.Metrics.Snapshot())
	})

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		session: session,
		tracer:  tracer,
		stream:  stream,
		logger:  logger,
		config:  cfg,
	}, nil
}

// Router exposes the gin engine, mostly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Session returns the desktop session the server drives
func (s *Server) Session() *Session {
	return s.session
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Addr()
	srv := &http.Server{Addr: addr, Handler: s.router}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.stream.CloseAll()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	return nil
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.stream.CloseAll()
	s.tracer.Close()
	if err := s.session.Close(); err != nil {
		s.logger.Error("Failed to close desktop session", zap.Error(err))
		return err
	}

	// Sync logger before exit
	_ = s.logger.Sync()

	return nil
}
