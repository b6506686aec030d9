// Package server handles the HTTP and websocket endpoints for a running
// world. It exposes health and world info, delta submission, receipt and
// delta queries, spec resolution, solar state, and an event stream.
package server

import (
	"context"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultPort is the port the server listens on when neither the port
	// option nor TERRA_PORT is set.
	DefaultPort = "4040"

	defaultSwaggerFile = "./docs/openapi.yml"
	shutdownTimeout    = 5 * time.Second
)

type Server struct {
	app *fiber.App
	w   Provider

	port        string
	swaggerFile string
}

// New returns an HTTP server with handlers for all world endpoints.
func New(w Provider, opts ...Option) (*Server, error) {
	if w == nil {
		return nil, eris.New("server requires a non-nil world")
	}

	app := fiber.New(fiber.Config{
		Network:               "tcp", // Enable server listening on both ipv4 & ipv6 (default: ipv4 only)
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler,
	})
	app.Use(cors.New())

	s := &Server{
		app:         app,
		w:           w,
		port:        "",
		swaggerFile: defaultSwaggerFile,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()

	return s, nil
}

// Port returns the port the server will listen on, resolving the port
// option, then TERRA_PORT, then DefaultPort.
func (s *Server) Port() string {
	if s.port != "" {
		return s.port
	}
	if port := os.Getenv("TERRA_PORT"); port != "" {
		return port
	}
	return DefaultPort
}

// Serve serves the application, blocking the calling thread until the
// context is canceled or the listener fails. Call this in a new goroutine
// to prevent blocking.
func (s *Server) Serve(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		port := s.Port()
		log.Info().Msgf("Starting HTTP server at port %s", port)
		if err := s.app.Listen(":" + port); err != nil {
			serverErr <- eris.Wrap(err, "error starting http server")
		}
	}()

	// Parked here until the listener dies or the context tells us to stop.
	select {
	case err := <-serverErr:
		return eris.Wrap(err, "server encountered an error")
	case <-ctx.Done():
		if err := s.shutdown(); err != nil {
			return eris.Wrap(err, "error shutting down server")
		}
	}

	return nil
}

// shutdown gracefully shuts down the server. Websocket connections are
// closed by the event hub's own shutdown, which the world drives.
func (s *Server) shutdown() error {
	log.Info().Msg("Shutting down server")

	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return eris.Wrap(err, "error shutting down server")
	}

	log.Info().Msg("Successfully shut down server")
	return nil
}

func (s *Server) setupRoutes() {
	// Route: /docs/
	// The OpenAPI document is checked in; skip the middleware when the
	// file is not present (tests run from package directories).
	if _, err := os.Stat(s.swaggerFile); err == nil {
		cfg := swagger.Config{
			FilePath: s.swaggerFile,
			Title:    "Terra API Docs",
		}
		s.app.Use(swagger.New(cfg))
	} else {
		log.Debug().Msgf("swagger file %q not found, docs disabled", s.swaggerFile)
	}

	// Route: /events/
	s.app.Use("/events", WebSocketUpgrader)
	s.app.Get("/events", WebSocketEvents(s.w.EventHub().NewWebSocketEventHandler()))

	// Route: /world
	s.app.Get("/world", GetWorld(s.w))

	// Route: /...
	s.app.Get("/health", GetHealth(s.w))

	// Route: /query/...
	q := s.app.Group("/query")
	q.Post("/delta/list", PostDeltaQuery(s.w))
	q.Post("/receipts/list", GetReceipts(s.w))
	q.Post("/spec/resolve", PostSpecResolve(s.w))
	q.Post("/solar/state", GetSolarState(s.w))

	// Route: /tx/...
	tx := s.app.Group("/tx")
	tx.Post("/delta/submit", PostDelta(s.w))

	// Route: /flush
	s.app.Post("/flush", PostFlush(s.w))

	// Route: /debug/state
	s.app.Post("/debug/state", GetDebugState(s.w))
}
