package server

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/termhost/termhost/internal/config"
	"github.com/termhost/termhost/internal/logging"
	"github.com/termhost/termhost/internal/middleware"
	"github.com/termhost/termhost/internal/monitoring"
	"github.com/termhost/termhost/internal/pty"
	"github.com/termhost/termhost/internal/recording"
	"github.com/termhost/termhost/internal/state"
	"github.com/termhost/termhost/internal/theme"
	"github.com/termhost/termhost/internal/workspace"
	"github.com/termhost/termhost/internal/ws"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	router   *gin.Engine
	ctrl     *workspace.Controller
	ptys     *pty.Service
	themes   *theme.Manager
	recorder *recording.Recorder
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics

	cancelLoop context.CancelFunc
	loopDone   chan struct{}
}

// NewServer builds every component and starts the workspace controller
// loop. The HTTP listener only starts on Run.
func NewServer(cfg *config.Config) (*Server, error) {
	logger := newLogger(cfg.Logging)

	logger.Info("Initializing termhost",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("state_dir", cfg.State.Dir),
	)

	metrics := monitoring.NewMetrics()

	store, err := state.NewFileStore(cfg.State.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	themes := theme.NewManager(cfg.Theme.Path, cfg.Theme.Name, logger.Named("theme"))

	var recorder *recording.Recorder
	if cfg.Recording.Enabled {
		recorder, err = recording.NewRecorder(cfg.Recording.Dir, logger.Named("recording"))
		if err != nil {
			logger.Warn("Recording unavailable", zap.Error(err))
			recorder = nil
		} else {
			logger.Info("Recording session output", zap.String("dir", cfg.Recording.Dir))
		}
	}

	ptys := pty.NewService()

	ctrl := workspace.NewController(workspace.Config{
		Shell:           cfg.Terminal.Shell,
		ShellArgs:       cfg.Terminal.ShellArgs,
		DefaultCols:     cfg.Terminal.DefaultCols,
		DefaultRows:     cfg.Terminal.DefaultRows,
		ReadyTimeout:    cfg.Terminal.ReadyTimeout,
		ExitGrace:       cfg.Terminal.ExitGrace,
		OutputBufferCap: cfg.Terminal.OutputBufferCap,
	}, workspace.Deps{
		Runner:   ptys,
		Events:   ptys.Events(),
		Store:    store,
		Colors:   themes,
		Recorder: recorder,
		Metrics:  metrics,
		Log:      logger.Named("workspace"),
	})

	loopCtx, cancelLoop := context.WithCancel(context.Background())
	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		ctrl.Run(loopCtx)
	}()

	if cfg.Theme.Watch {
		if err := themes.Watch(ctrl.OnThemeChanged); err != nil {
			logger.Warn("Theme watching unavailable", zap.Error(err))
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		router:     router,
		ctrl:       ctrl,
		ptys:       ptys,
		themes:     themes,
		recorder:   recorder,
		logger:     logger,
		config:     cfg,
		metrics:    metrics,
		cancelLoop: cancelLoop,
		loopDone:   loopDone,
	}

	wsHandler := ws.NewHandler(ctrl, logger.Named("ws"), metrics)

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)

	// Workspace state and host commands
	router.GET("/workspace", s.handleWorkspace)
	router.POST("/sessions", s.handleNewSession)

	// Theme management
	router.GET("/theme", s.handleGetTheme)
	router.PUT("/theme", s.handleSetTheme)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics
	router.GET("/metrics", monitoring.Handler())

	logger.Info("Server initialized successfully")

	return s, nil
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close stops the controller loop, kills every PTY, and flushes logs.
// The controller persists the workspace snapshot on its way out.
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	s.cancelLoop()
	select {
	case <-s.loopDone:
	case <-time.After(5 * time.Second):
		s.logger.Warn("Controller loop did not stop in time")
	}

	s.ptys.Close()
	s.themes.Close()
	s.recorder.CloseAll()

	s.logger.Sync()
	return nil
}

// newLogger builds the process logger from logging configuration.
func newLogger(cfg config.LogConfig) *logging.Logger {
	if cfg.Development {
		return logging.NewDevelopment()
	}
	logCfg := logging.DefaultConfig()
	if cfg.Level != "" {
		logCfg.Level = cfg.Level
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return logging.NewDefault()
	}
	return logger
}
