package infrastructure

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-crud-api/internal/adapter/db/gormrepo"
	"user-crud-api/internal/config"
	"user-crud-api/internal/domain/user"
)

func sqliteConfig(path string) *config.Config {
	return &config.Config{
		DB: config.DatabaseConfig{
			Driver:          config.DriverSQLite,
			SQLitePath:      path,
			MaxOpenConns:    4,
			MaxIdleConns:    0,
			ConnMaxLifetime: 1,
			ConnMaxIdleTime: 1,
			AutoMigrate:     true,
		},
		Logger: config.LoggerConfig{Level: "warn", SlowQuerySeconds: 0.2},
	}
}

func TestPoolFor(t *testing.T) {
	t.Run("in-memory sqlite keeps one connection forever", func(t *testing.T) {
		p := poolFor(sqliteConfig(":memory:").DB)
		assert.Equal(t, poolSettings{maxOpen: 1, maxIdle: 1}, p)
	})

	t.Run("file database uses configured limits", func(t *testing.T) {
		p := poolFor(sqliteConfig("users.db").DB)
		assert.Equal(t, poolSettings{
			maxOpen:     4,
			maxIdle:     0,
			maxLifetime: time.Second,
			maxIdleTime: time.Second,
		}, p)
	})
}

func TestNewDatabase_InMemorySurvivesIdleTimeout(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	db, err := NewDatabase(ctx, sqliteConfig(":memory:"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	repo := gormrepo.NewUserRepo(db, log)
	_, err = repo.Create(ctx, &user.User{Name: "Ana"})
	require.NoError(t, err)

	// Longer than the configured idle time and lifetime
	time.Sleep(1500 * time.Millisecond)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana", users[0].Name)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewDatabase_FileSQLite(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)
	cfg := sqliteConfig(filepath.Join(t.TempDir(), "users.db"))

	db, err := NewDatabase(ctx, cfg, log)
	require.NoError(t, err)

	_, err = gormrepo.NewUserRepo(db, log).Create(ctx, &user.User{Name: "Ana"})
	require.NoError(t, err)
	require.NoError(t, PingDatabase(db)(ctx))
	require.NoError(t, CloseDatabase(db))

	// Data outlives the process's connection pool
	db, err = NewDatabase(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	users, err := gormrepo.NewUserRepo(db, log).List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	cfg := sqliteConfig(":memory:")
	cfg.DB.Driver = "oracle"

	_, err := NewDatabase(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}
