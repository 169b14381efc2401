package server

import (
    "context"
    "time"

    "github.com/gofiber/fiber/v2"

    "github.com/cardledger/cardledger/internal/config"
    "github.com/cardledger/cardledger/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
    app *fiber.App
    cfg config.Config
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(deps routes.Deps) (*Server, error) {
    app := fiber.New(fiber.Config{
        AppName:      deps.Cfg.AppName,
        ReadTimeout:  30 * time.Second,
        WriteTimeout: 30 * time.Second,
        // Batches of corrections can be large.
        BodyLimit: 8 * 1024 * 1024,
    })

    if err := routes.Setup(app, deps); err != nil {
        return nil, err
    }

    return &Server{app: app, cfg: deps.Cfg}, nil
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
    return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server. In-flight corrections finish first.
func (s *Server) Shutdown(ctx context.Context) error {
    return s.app.ShutdownWithContext(ctx)
}
