// Package httpserver runs an http.Handler on a listener handed over by the
// orchestrator, with connection tracking, a request worker pool and a
// bounded graceful shutdown. The web and WebDAV adapters are built on it.
package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/pkg/adapter/connpool"
	"github.com/marmos91/rootshare/pkg/metrics"
)

// Config holds the transport settings shared by HTTP-based adapters.
type Config struct {
	// PoolSize is the number of requests processed concurrently.
	// 0 means connpool.DefaultPoolSize.
	PoolSize int

	// MaxConnections limits open client connections. 0 means unlimited.
	MaxConnections int

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// ShutdownTimeout bounds the graceful drain before connections are
	// force-closed. 0 means wait for the caller's context only.
	ShutdownTimeout time.Duration
}

// Server is a single-use HTTP server lifecycle.
type Server struct {
	protocol string
	config   Config
	metrics  metrics.ServiceMetrics

	mu      sync.Mutex
	started bool
	pool    *connpool.Listener

	shutdownOnce sync.Once
	shutdown     chan struct{}
	done         chan struct{}
}

// New creates a Server. A nil metrics value disables metrics.
func New(protocol string, config Config, m metrics.ServiceMetrics) *Server {
	if m == nil {
		m = metrics.NewNoopServiceMetrics()
	}
	return &Server{
		protocol: protocol,
		config:   config,
		metrics:  m,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Serve serves handler on ln until ctx is cancelled or Stop is called.
//
// It returns nil after a graceful (or forced) shutdown and the accept error
// if the listener fails on its own.
func (s *Server) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	s.mu.Lock()
	select {
	case <-s.shutdown:
		s.mu.Unlock()
		_ = ln.Close()
		return nil
	default:
	}
	if s.started {
		s.mu.Unlock()
		return errors.New(s.protocol + " server already started")
	}
	s.started = true
	s.pool = connpool.Wrap(ln, s.protocol, s.config.MaxConnections, s.metrics)
	s.mu.Unlock()
	defer close(s.done)

	workers := connpool.NewWorkerPool(s.config.PoolSize)
	srv := &http.Server{
		Handler:      workers.Middleware(handler),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Slog().Handler(), slog.LevelDebug),
	}

	logger.Info("%s server listening on %s (workers: %d)", s.protocol, ln.Addr(), workers.Size())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(s.pool)
	}()

	select {
	case <-ctx.Done():
		logger.Debug("%s shutdown signal received: %v", s.protocol, ctx.Err())
	case <-s.shutdown:
	case err := <-errCh:
		s.pool.ForceClose()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}

	s.gracefulShutdown(srv)
	<-errCh
	return nil
}

// gracefulShutdown drains in-flight requests and force-closes whatever is
// still open once ShutdownTimeout expires.
func (s *Server) gracefulShutdown(srv *http.Server) {
	ctx := context.Background()
	if s.config.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.ShutdownTimeout)
		defer cancel()
	}

	logger.Info("%s graceful shutdown: waiting for %d active connection(s)", s.protocol, s.pool.Active())

	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("%s shutdown timeout exceeded (%v) - forcing closure", s.protocol, err)
		_ = srv.Close()
		s.pool.ForceClose()
		return
	}
	logger.Info("%s graceful shutdown complete", s.protocol)
}

// Stop signals shutdown and waits for Serve to return or ctx to expire.
// Safe to call more than once and before Serve.
func (s *Server) Stop(ctx context.Context) error {
	s.shutdownOnce.Do(func() { close(s.shutdown) })

	s.mu.Lock()
	started := s.started
	s.mu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ActiveConnections returns the number of open client connections.
func (s *Server) ActiveConnections() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool == nil {
		return 0
	}
	return s.pool.Active()
}
