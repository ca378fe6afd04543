// Package reportserver serves an HTML and JSON preview of one survey.
package reportserver

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Serve listens on cfg.Addr until ctx is cancelled.
func Serve(ctx context.Context, cfg Config) error {
	if ctx == nil {
		return errors.New("reportserver: context is nil")
	}
	if cfg.Addr == "" {
		return errors.New("reportserver: addr is required")
	}
	listener, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	return ServeListener(ctx, listener, cfg)
}

// ServeListener serves on an existing listener. The listener is closed on return.
func ServeListener(ctx context.Context, listener net.Listener, cfg Config) error {
	handler, err := NewHandler(cfg)
	if err != nil {
		_ = listener.Close()
		return err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	server := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Serve(listener)
	}()
	logger.Info("preview server listening", zap.String("addr", listener.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		err := <-errCh
		if errors.Is(err, http.ErrServerClosed) || err == nil {
			return nil
		}
		return err
	}
}
