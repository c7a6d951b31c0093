package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-crud-api/cmd/api/infrastructure"
	"user-crud-api/internal/adapter/cache"
	"user-crud-api/internal/adapter/db/gormrepo"
	ginhandler "user-crud-api/internal/adapter/gin/handler"
	"user-crud-api/internal/adapter/gin/middleware"
	ginrouter "user-crud-api/internal/adapter/gin/router"
	"user-crud-api/internal/adapter/repository/cached"
	"user-crud-api/internal/config"
	"user-crud-api/internal/usecase/user"
	redisclient "user-crud-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client // nil unless REDIS_ENABLED
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter // nil unless rate limiting is enabled
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize database
	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	c := &Container{
		Config: cfg,
		Logger: l,
		DB:     db,
	}

	dbRepo := gormrepo.NewUserRepo(db, l)
	var repo user.Repository = dbRepo

	if cfg.Redis.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb

		// Initialize cache layer
		userCache := cache.NewRedisUserCache(
			rdb.Client,
			time.Duration(cfg.Redis.CacheTTL)*time.Second,
			l,
		)
		repo = cached.NewUserRepository(dbRepo, userCache, l)

		if cfg.RateLimit.Enabled {
			c.RateLimiter = middleware.NewRateLimiter(
				rdb.Client,
				middleware.RateLimiterConfig{
					RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
					BurstCapacity:     cfg.RateLimit.BurstCapacity,
					Enabled:           cfg.RateLimit.Enabled,
				},
				l,
			)
		}
	}

	// Initialize use case
	c.UserUC = user.New(repo, l)

	// Initialize Gin handler
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	return c, nil
}

// HealthChecks returns the dependency probes served by GET /health.
func (c *Container) HealthChecks() map[string]ginrouter.HealthChecker {
	checks := map[string]ginrouter.HealthChecker{
		"database": infrastructure.PingDatabase(c.DB),
	}
	if c.RedisClient != nil {
		checks["redis"] = c.RedisClient.Ping
	}
	return checks
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
