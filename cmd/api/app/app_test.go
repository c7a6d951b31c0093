package app

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-crud-api/internal/config"
)

func TestApp_RunStopsOnCancel(t *testing.T) {
	t.Setenv("DB_SQLITE_PATH", ":memory:")
	t.Setenv("HTTP_PORT", "0")
	t.Setenv("GIN_MODE", gin.TestMode)
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	a, err := NewWithConfig(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}
}

func TestApp_InvalidConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	_, err = NewWithConfig(context.Background(), cfg, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create container")
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, ".", getConfigPath())

	t.Setenv("CONFIG_PATH", "/etc/users")
	assert.Equal(t, "/etc/users", getConfigPath())
}
