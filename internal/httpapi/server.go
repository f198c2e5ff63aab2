package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/autobus-platform/autobus/internal/logger"
)

// Server runs the HTTP API with graceful shutdown.
type Server struct {
	srv             *http.Server
	gracefulTimeout time.Duration
}

// NewServer creates a server listening on bind, serving handler.
func NewServer(bind string, handler http.Handler, gracefulTimeout time.Duration) *Server {
	if gracefulTimeout == 0 {
		gracefulTimeout = 30 * time.Second
	}
	return &Server{
		srv: &http.Server{
			Addr:              bind,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		gracefulTimeout: gracefulTimeout,
	}
}

// Serve blocks until the context is cancelled or the listener fails.
// On cancellation it drains in-flight requests for the graceful timeout
// before forcing the server down.
func (s *Server) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("HTTP server shutting down", "graceful_timeout", s.gracefulTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.gracefulTimeout)
	defer cancel()

	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown incomplete, forcing close", "error", err)
		_ = s.srv.Close()
	}
	return nil
}
