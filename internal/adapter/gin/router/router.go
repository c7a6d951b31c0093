package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-crud-api/internal/adapter/gin/handler"
	"user-crud-api/internal/adapter/gin/middleware"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func(ctx context.Context) error

// Options carries everything SetupRouter wires into the engine.
// RateLimiter and Checks may be nil.
type Options struct {
	ServiceName string
	Mode        string // gin mode: release, debug or test
	Handler     *handler.UserHandler
	RateLimiter *middleware.RateLimiter
	Checks      map[string]HealthChecker
	Logger      *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(opts Options) *gin.Engine {
	if opts.Mode != "" {
		gin.SetMode(opts.Mode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(opts.Logger))
	router.Use(middleware.Logger(opts.Logger))
	router.Use(opts.RateLimiter.Middleware())

	router.GET("/health", health(opts.ServiceName, opts.Checks))

	users := router.Group("/users")
	{
		users.POST("", opts.Handler.Create)
		users.GET("", opts.Handler.List)
		users.GET("/:id", opts.Handler.Get)
		users.PUT("", opts.Handler.Update)
		users.DELETE("/:id", opts.Handler.Delete)
	}

	return router
}

func health(service string, checks map[string]HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := "healthy"
		code := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = err.Error()
				status = "unhealthy"
				code = http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		c.JSON(code, gin.H{
			"status":  status,
			"service": service,
			"checks":  results,
		})
	}
}
