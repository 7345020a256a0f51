package site

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayrahq/ayra/internal/config"
)

// Server is the landing site HTTP server.
type Server struct {
	cfg        config.SiteConfig
	logger     zerolog.Logger
	httpServer *http.Server
}

// NewServer wraps the router in an http.Server configured from cfg.
func NewServer(cfg config.SiteConfig, deps Deps, logger zerolog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultConfig().Site.Addr
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if len(deps.AllowedOrigins) == 0 {
		deps.AllowedOrigins = cfg.AllowedOrigins
	}
	if !cfg.MetricsEnabled {
		deps.Metrics = nil
	}
	if deps.Logger == nil {
		deps.Logger = &logger
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           NewRouter(deps),
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	s.logger.Info().Str("addr", listener.Addr().String()).Msg("site server starting")

	// Hijacked websocket connections are not closed by Shutdown; they watch
	// the base context instead.
	baseCtx, cancelBase := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelBase()
	s.httpServer.BaseContext = func(net.Listener) context.Context { return baseCtx }
	s.httpServer.RegisterOnShutdown(cancelBase)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("site server shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			_ = s.httpServer.Close()
			return fmt.Errorf("site shutdown: %w", err)
		}
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("site server error: %w", err)
		}
	}

	s.logger.Info().Msg("site server stopped")
	return nil
}
