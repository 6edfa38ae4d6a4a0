package server

import (
	"context"
	"net/http"
	"time"

	"zipto/internal/config"
	"zipto/internal/handlers"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Server is the local dev backend: the HTTP chat API plus the websocket
// push hub
type Server struct {
	echo      *echo.Echo
	config    *config.Config
	logger    zerolog.Logger
	hub       *handlers.Hub
	log       *handlers.ConversationLog
	responder handlers.Responder
}

// New creates a new server instance
func New(cfg *config.Config, logger zerolog.Logger) *Server {
	var responder handlers.Responder = handlers.CannedResponder{}
	if cfg.OpenAIKey != "" {
		responder = handlers.NewOpenAIResponder(cfg.OpenAIKey)
	}

	return &Server{
		config:    cfg,
		logger:    logger,
		hub:       handlers.NewHub(logger),
		log:       handlers.NewConversationLog(),
		responder: responder,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			s.logger.Info().
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true

	// Setup routes
	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.POST("/chat/message", handlers.ChatMessageHandler(s.log, s.hub, s.responder, s.logger))
	api.GET("/chat/conversation/:id/messages", handlers.ConversationMessagesHandler(s.log))
	api.GET("/chat/health", handlers.ChatHealthHandler(s.config.Version, s.config.OpenAIKey != ""))

	// Push channel
	s.echo.GET("/ws", s.hub.Handler())
}

// Handler exposes the configured routes for tests that mount the
// server on their own listener
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	return s.echo.Start(":" + s.config.Port)
}

// Shutdown drains in-flight requests and stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
