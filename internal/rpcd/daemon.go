package rpcd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/ayrahq/ayra/internal/config"
	"github.com/ayrahq/ayra/internal/metrics"
)

// DefaultPort is the default gRPC port.
const DefaultPort = 50161

// Options configure the daemon runtime.
type Options struct {
	Hostname string
	Port     int
	Version  string
	Deps     Deps
}

// Daemon runs the gRPC playback service.
type Daemon struct {
	cfg    *config.Config
	logger zerolog.Logger
	opts   Options

	server     *Server
	limiter    *RateLimiter
	grpcServer *grpc.Server
}

// New constructs a daemon. Hostname and port fall back to cfg.RPC, then to
// 127.0.0.1 and DefaultPort.
func New(cfg *config.Config, logger zerolog.Logger, opts Options) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if opts.Hostname == "" {
		opts.Hostname = cfg.RPC.Host
	}
	if opts.Hostname == "" {
		opts.Hostname = "127.0.0.1"
	}
	if opts.Port == 0 {
		opts.Port = cfg.RPC.Port
	}
	if opts.Port == 0 {
		opts.Port = DefaultPort
	}

	limits := cfg.RPC.RateLimit
	limiterOpts := []RateLimiterOption{WithEnabled(limits.Enabled)}
	if limits.Enabled && limits.RequestsPerSecond > 0 && limits.Burst > 0 {
		limiterOpts = append(limiterOpts, WithGlobalLimit(RateLimit{
			RequestsPerSecond: limits.RequestsPerSecond,
			Burst:             limits.Burst,
		}))
	}
	limiter := NewRateLimiter(limiterOpts...)

	server := NewServer(opts.Deps, logger, WithVersion(opts.Version))

	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			observeUnary(opts.Deps.Metrics),
			limiter.UnaryServerInterceptor(),
		),
		grpc.ChainStreamInterceptor(
			observeStream(opts.Deps.Metrics),
			limiter.StreamServerInterceptor(),
		),
	)
	RegisterPlaybackServer(grpcServer, server)

	return &Daemon{
		cfg:        cfg,
		logger:     logger,
		opts:       opts,
		server:     server,
		limiter:    limiter,
		grpcServer: grpcServer,
	}, nil
}

// Run listens on the configured address and blocks until ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	bindAddr := d.bindAddr()
	listener, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", bindAddr, err)
	}
	return d.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (d *Daemon) Serve(ctx context.Context, listener net.Listener) error {
	d.logger.Info().
		Str("bind", listener.Addr().String()).
		Str("version", d.opts.Version).
		Bool("rate_limit", d.limiter.Enabled()).
		Msg("rpc server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := d.grpcServer.Serve(listener); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		d.logger.Info().Msg("rpc server shutting down...")
		d.grpcServer.GracefulStop()
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("gRPC server error: %w", err)
		}
	}

	for _, st := range d.limiter.Stats() {
		if st.Denied > 0 {
			d.logger.Info().Str("method", st.Method).Int64("requests", st.Requests).Int64("denied", st.Denied).Msg("rate limit summary")
		}
	}
	d.logger.Info().Msg("rpc server stopped")
	return nil
}

func (d *Daemon) bindAddr() string {
	return net.JoinHostPort(d.opts.Hostname, strconv.Itoa(d.opts.Port))
}

// Server returns the service implementation.
func (d *Daemon) Server() *Server {
	return d.server
}

// Limiter returns the rate limiter.
func (d *Daemon) Limiter() *RateLimiter {
	return d.limiter
}

func observeUnary(collector *metrics.Collector) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if collector != nil {
			collector.ObserveRPC(info.FullMethod, status.Code(err).String())
		}
		return resp, err
	}
}

func observeStream(collector *metrics.Collector) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if collector != nil {
			collector.ObserveRPC(info.FullMethod, status.Code(err).String())
		}
		return err
	}
}
