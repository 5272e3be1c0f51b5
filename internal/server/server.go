// Package server exposes the search and chat pipeline over HTTP.
package server

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"shopping-agent/internal/common/config"
	"shopping-agent/internal/common/logger"
	"shopping-agent/internal/common/observability"
)

// Server owns the Fiber app and its route wiring.
type Server struct {
	app    *fiber.App
	config config.ServerConfig
	logger logger.Logger
}

func New(cfg config.ServerConfig, handler *Handler, obs *observability.Observability, log logger.Logger) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "shopping-agent",
		DisableStartupMessage: true,
	})

	app.Use(requestMetrics(obs, log))

	app.Get("/api/health", handler.Health)
	app.Post("/api/search", handler.Search)
	app.Post("/api/chat", handler.Chat)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return &Server{app: app, config: cfg, logger: log}
}

// App exposes the underlying Fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving requests until Shutdown is called.
func (s *Server) Listen() error {
	s.logger.Info("http server starting", map[string]interface{}{
		"address": s.config.Address,
	})
	return s.app.Listen(s.config.Address)
}

// Shutdown drains in-flight requests within the configured timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	deadline := time.Duration(s.config.ShutdownTimeout) * time.Millisecond
	return s.app.ShutdownWithTimeout(deadline)
}

// requestMetrics records per-route counters and latency for every request.
func requestMetrics(obs *observability.Observability, log logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		route := c.Path()
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0
		if obs != nil {
			obs.RecordRequest(c.Context(), route, strconv.Itoa(status))
			obs.RecordDuration(c.Context(), route, elapsed)
		}

		log.Debug("request handled", map[string]interface{}{
			"method":      c.Method(),
			"route":       route,
			"status":      status,
			"duration_ms": elapsed,
		})
		return err
	}
}
