package server

import (
	"context"
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not canceled")
	}
}

func TestWithSignal_CancelsWithSignalCause(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx, stop := WithSignal(context.Background(), zap.New(core))
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	waitDone(t, ctx)

	var sigErr SignalError
	require.True(t, errors.As(context.Cause(ctx), &sigErr))
	assert.Equal(t, syscall.SIGTERM, sigErr.Signal)
	assert.Equal(t, "received signal terminated", sigErr.Error())
	assert.Equal(t, 1, logs.FilterMessage("shutdown signal received").Len())
}

func TestWithSignal_SecondSignalExits(t *testing.T) {
	exited := make(chan int, 1)
	exit = func(code int) { exited <- code }
	t.Cleanup(func() { exit = osExit })

	ctx, stop := WithSignal(context.Background(), zap.NewNop())
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))
	waitDone(t, ctx)
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case code := <-exited:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("second signal did not force exit")
	}
}

func TestWithSignal_StopCancels(t *testing.T) {
	ctx, stop := WithSignal(context.Background(), zap.NewNop())
	stop()
	stop()

	waitDone(t, ctx)
	assert.ErrorIs(t, context.Cause(ctx), context.Canceled)
}
