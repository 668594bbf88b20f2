// Package server exposes the relay over HTTP and manages the listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/tgrelay/internal/config"
	"github.com/edgard/tgrelay/internal/dispatch"
	"github.com/edgard/tgrelay/internal/logger"
)

// Server serves the relay API.
type Server struct {
	logger     *slog.Logger
	cfg        config.ServerConfig
	dispatcher *dispatch.Dispatcher
	engine     *gin.Engine
	httpServer *http.Server
}

// NewServer creates a Server with all routes registered. It does not start listening.
func NewServer(log *slog.Logger, cfg config.ServerConfig, dispatcher *dispatch.Dispatcher) *Server {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		logger:     log.With("component", "http_server"),
		cfg:        cfg,
		dispatcher: dispatcher,
	}
	s.engine = s.newEngine()
	s.httpServer = &http.Server{
		Addr:    cfg.Addr(),
		Handler: s.engine,
	}
	return s
}

func (s *Server) newEngine() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), logger.Middleware(s.logger))

	engine.POST("/send_message", s.handleSendMessage)

	return engine
}

// Handler returns the HTTP handler serving the relay routes.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on the configured address and serves until ctx is cancelled,
// then shuts down gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.logger.Error("Failed to listen", "addr", s.httpServer.Addr, "error", err)
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())

		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server stopped unexpectedly", "error", err)
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		s.logger.Info("Shutdown signal received, stopping HTTP server...", "timeout", s.cfg.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("Error during HTTP server shutdown", "error", err)
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("HTTP server stopped gracefully.")
	return nil
}
