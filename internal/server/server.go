package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/agent-station/companion/internal/api/http"
	"github.com/agent-station/companion/internal/api/middleware"
	"github.com/agent-station/companion/internal/api/ws"
	"github.com/agent-station/companion/internal/events"
	"github.com/agent-station/companion/internal/infrastructure/config"
	"github.com/agent-station/companion/internal/infrastructure/logging"
	"github.com/agent-station/companion/internal/infrastructure/monitoring"
	"github.com/agent-station/companion/internal/projects"
	"github.com/agent-station/companion/internal/terminal"
)

// Server wires the terminal core, the project registry, and the API
// surfaces together.
type Server struct {
	router    *gin.Engine
	http      *http.Server
	terminals *terminal.Manager
	projects  *projects.Registry
	hub       *events.Hub
	logger    *logging.Logger
	config    *config.Config
}

// New creates a server instance from configuration.
func New(cfg *config.Config) (*Server, error) {
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("initializing companion server",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
	)

	metrics := monitoring.NewMetrics()

	hub := events.NewHub(logger).WithMetrics(metrics)

	terminals := terminal.NewManager(hub, logger).
		WithConfig(terminal.Config{
			Shell:         cfg.Terminal.Shell,
			ReadChunkSize: cfg.Terminal.ReadChunkSize,
		}).
		WithMetrics(metrics)

	projectsPath := cfg.Projects.Path
	if projectsPath == "" {
		var err error
		projectsPath, err = projects.DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve projects path: %w", err)
		}
	}
	registry, err := projects.Open(projectsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("open project registry: %w", err)
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(logger))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	handlers := apihttp.NewHandlers(terminals, registry, logger)
	handlers.RegisterRoutes(router)

	wsHandler := ws.NewHandler(hub, terminals, logger)
	router.GET("/ws", wsHandler.HandleConnection)

	router.GET("/metrics", metrics.Handler())

	return &Server{
		router:    router,
		terminals: terminals,
		projects:  registry,
		hub:       hub,
		logger:    logger,
		config:    cfg,
	}, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := net.JoinHostPort(s.config.Server.Host, s.config.Server.Port)
	s.http = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	s.logger.Info("companion server listening", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server and interrupts all terminal sessions.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down companion server")

	s.terminals.Shutdown()

	var err error
	if s.http != nil {
		err = s.http.Shutdown(ctx)
	}

	// Give the final exit events a moment to flush to subscribers.
	select {
	case <-ctx.Done():
	case <-time.After(100 * time.Millisecond):
	}

	_ = s.logger.Sync()
	return err
}
