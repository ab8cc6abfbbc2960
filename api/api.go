package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fretwork/jar/pkg/service"
)

// Server is the HTTP API server over the routine service
type Server struct {
	config  Config
	service *service.Service
	logger  *zap.Logger
	app     *fiber.App
}

// NewServer creates a new API server.
// The service is injected to allow sharing with CLI commands that run
// in-process.
func NewServer(config Config, svc *service.Service, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:  config,
		service: svc,
		logger:  logger,
		app:     app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/api/routines", s.handleListRoutines)
	app.Get("/api/routines/random", s.handleRandomRoutine)
	app.Get("/api/routines/search", s.handleSearchRoutines)
	app.Put("/api/routines/:id/complete", s.handleCompleteRoutine)
	app.Put("/api/routines/:id/uncomplete", s.handleUncompleteRoutine)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
