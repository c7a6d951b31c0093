package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"
)

// SignalError is the cancellation cause of a context ended by WithSignal.
type SignalError struct {
	Signal os.Signal
}

func (e SignalError) Error() string {
	return fmt.Sprintf("received signal %s", e.Signal)
}

var (
	osExit = os.Exit
	// exit is replaced in tests.
	exit = osExit
)

// WithSignal returns a context canceled with a SignalError on the first
// SIGINT or SIGTERM. A second signal during graceful shutdown exits the
// process with status 1. The returned stop func releases the signal handler
// and cancels the context.
func WithSignal(parent context.Context, log *zap.Logger) (context.Context, func()) {
	ctx, cancel := context.WithCancelCause(parent)

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		select {
		case sig := <-sigCh:
			log.Info("shutdown signal received", zap.Stringer("signal", sig))
			cancel(SignalError{Signal: sig})
		case <-done:
			return
		}

		select {
		case sig := <-sigCh:
			log.Warn("second signal received, exiting without graceful shutdown", zap.Stringer("signal", sig))
			exit(1)
		case <-done:
		}
	}()

	var once sync.Once
	return ctx, func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
			cancel(context.Canceled)
		})
	}
}
