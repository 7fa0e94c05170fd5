package api

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"github.com/spektr-org/spektrchart/engine"
)

// Server represents the HTTP API server
type Server struct {
	app      *fiber.App
	logger   zerolog.Logger
	addr     string
	pipeline *engine.Pipeline
	requests *lru.Cache // body hash → decoded ConfigureRequest

	// write sends a built configuration; replaced in tests
	write func(c *fiber.Ctx, cfg *engine.BackendConfig, asMsgpack bool) error
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	BodyLimit       int
	ShutdownTimeout time.Duration

	// Decoded request bodies kept so that byte-identical requests share
	// row slices and hit the pipeline memo.
	RequestCacheSize int
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:            8080,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		BodyLimit:       10 * 1024 * 1024,
		ShutdownTimeout: 10 * time.Second,

		RequestCacheSize: engine.DefaultCacheSize,
	}
}

// NewServer creates a new HTTP server with Fiber. Chart configurations are
// built through pipeline so repeated requests for the same inputs are served
// from its memo.
func NewServer(config *ServerConfig, pipeline *engine.Pipeline, logger zerolog.Logger) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	size := config.RequestCacheSize
	if size <= 0 {
		size = engine.DefaultCacheSize
	}
	// lru.New only fails for non-positive sizes
	requests, _ := lru.New(size)

	app := fiber.New(fiber.Config{
		AppName:               "spektrchart",
		ReadTimeout:           config.ReadTimeout,
		WriteTimeout:          config.WriteTimeout,
		BodyLimit:             config.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler(logger),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestID())
	app.Use(requestLogger(logger))

	s := &Server{
		app:      app,
		logger:   logger.With().Str("component", "api-server").Logger(),
		addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		pipeline: pipeline,
		requests: requests,
		write:    writeConfig,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.healthHandler)

	v1 := s.app.Group("/api/v1")
	v1.Get("/charts/types", s.chartTypesHandler)
	v1.Post("/charts/configure", s.configureHandler)
}

// healthHandler returns server health status
func (s *Server) healthHandler(c *fiber.Ctx) error {
	uptime := time.Since(startTime)
	return c.JSON(fiber.Map{
		"status":       "ok",
		"time":         time.Now().UTC().Format(time.RFC3339),
		"uptime":       uptime.String(),
		"cachedCharts": s.pipeline.Len(),
	})
}

func (s *Server) chartTypesHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"chartTypes": engine.SupportedChartTypes()})
}

var startTime = time.Now()

// Start listens in the background.
func (s *Server) Start() error {
	s.logger.Info().
		Str("addr", s.addr).
		Msg("Starting spektrchart HTTP server")

	go func() {
		if err := s.app.Listen(s.addr); err != nil {
			s.logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(timeout time.Duration) error {
	s.logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("Server stopped")
	return nil
}

// WaitForShutdown blocks until shutdown signal is received
func (s *Server) WaitForShutdown(shutdownTimeout time.Duration) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	s.logger.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	if err := s.Shutdown(shutdownTimeout); err != nil {
		s.logger.Error().Err(err).Msg("Shutdown error")
	}
}

// GetApp returns the underlying Fiber app
func (s *Server) GetApp() *fiber.App {
	return s.app
}

// customErrorHandler handles Fiber errors
func customErrorHandler(logger zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		logger.Error().
			Err(err).
			Int("status", code).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Msg("Request error")

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// requestID tags every request and response with an X-Request-ID,
// keeping one supplied by the caller.
func requestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(fiber.HeaderXRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals("requestID", id)
		c.Set(fiber.HeaderXRequestID, id)
		return c.Next()
	}
}

// requestLogger logs failed requests only
func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		if status >= 400 {
			logEvent := logger.Warn()
			if status >= 500 {
				logEvent = logger.Error()
			}

			logEvent.
				Str("method", c.Method()).
				Str("path", c.Path()).
				Int("status", status).
				Dur("duration_ms", time.Since(start)).
				Str("request_id", requestIDOf(c)).
				Msg("HTTP request error")
		}

		return err
	}
}

func requestIDOf(c *fiber.Ctx) string {
	id, _ := c.Locals("requestID").(string)
	return id
}
