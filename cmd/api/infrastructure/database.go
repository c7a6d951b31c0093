package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"user-crud-api/internal/adapter/db/gormrepo"
	"user-crud-api/internal/config"
	"user-crud-api/pkg/logger"
)

// sqlitePragmas keeps concurrent writers waiting on the file lock instead of failing.
const sqlitePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// NewDatabase creates a new database connection with GORM configuration
func NewDatabase(ctx context.Context, cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.DB)
	if err != nil {
		return nil, err
	}

	// Configure GORM logger
	gormLogger := logger.NewGormLogger(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	pool := poolFor(cfg.DB)

	// Configure connection pool
	sqlDB.SetMaxOpenConns(pool.maxOpen)
	sqlDB.SetMaxIdleConns(pool.maxIdle)
	sqlDB.SetConnMaxLifetime(pool.maxLifetime)
	sqlDB.SetConnMaxIdleTime(pool.maxIdleTime)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if cfg.DB.AutoMigrate {
		if err := gormrepo.NewUserRepo(db, l).Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
	}

	l.Info("database connected successfully",
		zap.String("driver", cfg.DB.Driver),
		zap.Int("max_open_conns", pool.maxOpen),
		zap.Int("max_idle_conns", pool.maxIdle),
		zap.Duration("conn_max_lifetime", pool.maxLifetime),
		zap.Duration("conn_max_idle_time", pool.maxIdleTime),
		zap.Bool("auto_migrate", cfg.DB.AutoMigrate),
	)

	return db, nil
}

type poolSettings struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

// poolFor derives database/sql pool limits from config. An in-memory SQLite
// database lives only as long as its connection, so it gets exactly one
// connection that is never closed for age or idleness.
func poolFor(cfg config.DatabaseConfig) poolSettings {
	if isInMemorySQLite(cfg) {
		return poolSettings{maxOpen: 1, maxIdle: 1}
	}
	return poolSettings{
		maxOpen:     cfg.MaxOpenConns,
		maxIdle:     cfg.MaxIdleConns,
		maxLifetime: time.Duration(cfg.ConnMaxLifetime) * time.Second,
		maxIdleTime: time.Duration(cfg.ConnMaxIdleTime) * time.Second,
	}
}

func isInMemorySQLite(cfg config.DatabaseConfig) bool {
	return cfg.Driver == config.DriverSQLite && cfg.SQLitePath == ":memory:"
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return pgdriver.Open(cfg.DSN()), nil
	case config.DriverSQLite:
		if isInMemorySQLite(cfg) {
			return sqlite.Open(cfg.SQLitePath), nil
		}
		return sqlite.Open(cfg.SQLitePath + "?" + sqlitePragmas), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// PingDatabase reports whether the database answers within ctx.
func PingDatabase(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}
