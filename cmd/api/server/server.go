package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"go.uber.org/zap"

	"user-crud-api/cmd/api/di"
	ginrouter "user-crud-api/internal/adapter/gin/router"
)

// Server owns the HTTP listener for the user API
type Server struct {
	Logger *zap.Logger
	Gin    *http.Server
}

// New creates a new server instance from the container's dependencies
func New(c *di.Container) *Server {
	cfg := c.Config
	opts := ginrouter.Options{
		ServiceName: cfg.Logger.ServiceName,
		Mode:        cfg.App.GinMode,
		Handler:     c.GinHandler,
		RateLimiter: c.RateLimiter,
		Checks:      c.HealthChecks(),
		Logger:      c.Logger,
	}

	return &Server{
		Logger: c.Logger,
		Gin:    SetupGinServer(opts, ":"+cfg.App.HTTPPort, c.Logger),
	}
}

// Start listens on the configured address and serves until Shutdown is called.
// A clean shutdown returns nil.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	lis, err := lc.Listen(ctx, "tcp", s.Gin.Addr)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to listen: %w", err)
	}

	return s.Serve(lis)
}

// Serve accepts connections on lis.
func (s *Server) Serve(lis net.Listener) error {
	s.Logger.Info("Gin REST API running", zap.String("address", lis.Addr().String()))

	if err := s.Gin.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Logger.Info("shutting down Gin server...")
	return s.Gin.Shutdown(ctx)
}
