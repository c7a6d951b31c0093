package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	ginrouter "user-crud-api/internal/adapter/gin/router"
)

// SetupGinServer creates and configures the Gin REST API server
func SetupGinServer(opts ginrouter.Options, ginAddr string, l *zap.Logger) *http.Server {
	// Setup Gin router with all middleware and routes
	router := ginrouter.SetupRouter(opts)

	l.Info("Gin REST API configured", zap.String("address", ginAddr))

	return &http.Server{
		Addr:              ginAddr,
		Handler:           router,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
