package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-crud-api/cmd/api/di"
	"user-crud-api/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Setenv("DB_SQLITE_PATH", ":memory:")
	t.Setenv("GIN_MODE", gin.TestMode)
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)

	c, err := di.NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	return New(c)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	srv := newTestServer(t)

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.Serve(lis) }()

	base := "http://" + lis.Addr().String()

	resp, err := http.Post(base+"/users", "application/json", strings.NewReader(`{"name":"Ana"}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `true`, string(body))

	resp, err = http.Get(base + "/users/1")
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":1,"name":"Ana","email":""}`, string(body))

	resp, err = http.Get(base + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err, "clean shutdown is not an error")
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_Timeouts(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, 2*time.Second, srv.Gin.ReadHeaderTimeout)
	assert.Equal(t, 10*time.Second, srv.Gin.ReadTimeout)
	assert.Equal(t, 10*time.Second, srv.Gin.WriteTimeout)
	assert.Equal(t, ":8080", srv.Gin.Addr)
}
