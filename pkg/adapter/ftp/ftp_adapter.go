// Package ftp serves the shared root over anonymous, read-write FTP.
//
// Any user name with any password is accepted and lands in the root with
// full permissions: list, change directory, retrieve, store, append, delete,
// make directory and rename.
package ftp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"

	ftpserver "github.com/gonzalop/ftp/server"
	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/pkg/adapter/connpool"
	"github.com/marmos91/rootshare/pkg/metrics"
)

// Protocol is the name the FTP service is registered under.
const Protocol = "FTP"

// Adapter runs an FTP server over the local filesystem driver.
//
// The FTP library owns the protocol state machine; the adapter owns the
// listener so that connections are tracked and shutdown is bounded.
type Adapter struct {
	config  Config
	metrics metrics.ServiceMetrics

	mu      sync.Mutex
	server  *ftpserver.Server
	pool    *connpool.Listener
	started bool

	shutdownOnce sync.Once
	shutdown     chan struct{}
	done         chan struct{}
}

// New creates an FTP adapter. A nil metrics value disables metrics.
func New(config Config, m metrics.ServiceMetrics) *Adapter {
	if m == nil {
		m = metrics.NewNoopServiceMetrics()
	}
	return &Adapter{
		config:   config,
		metrics:  m,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Prepare builds the FTP driver and server rooted at root.
func (a *Adapter) Prepare(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("ftp root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("ftp root %q is not a directory", root)
	}

	// every login, "anonymous" included, goes through anonymousLogin
	driverOpts := options(
		ftpserver.WithDisableAnonymous(true),
		ftpserver.WithAuthenticator(anonymousLogin(root)),
	)
	if a.config.PublicHost != "" || a.config.PassivePortMin != 0 || a.config.PassivePortMax != 0 {
		driverOpts = append(driverOpts, ftpserver.WithSettings(&ftpserver.Settings{
			PublicHost:  a.config.PublicHost,
			PasvMinPort: a.config.PassivePortMin,
			PasvMaxPort: a.config.PassivePortMax,
		}))
	}

	driver, err := ftpserver.NewFSDriver(root, driverOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ftp driver: %w", err)
	}

	serverOpts := options(
		ftpserver.WithDriver(driver),
		ftpserver.WithLogger(logger.Slog().With("protocol", Protocol)),
	)
	if a.config.MaxConnections > 0 {
		serverOpts = append(serverOpts, ftpserver.WithMaxConnections(a.config.MaxConnections))
	}
	if a.config.IdleTimeout > 0 {
		serverOpts = append(serverOpts, ftpserver.WithMaxIdleTime(a.config.IdleTimeout))
	}

	srv, err := ftpserver.NewServer(":"+strconv.Itoa(a.config.Port), serverOpts...)
	if err != nil {
		return fmt.Errorf("failed to create ftp server: %w", err)
	}

	a.mu.Lock()
	a.server = srv
	a.mu.Unlock()

	logger.Debug("FTP prepared: root=%s max_connections=%d idle_timeout=%v",
		root, a.config.MaxConnections, a.config.IdleTimeout)
	return nil
}

// options collects functional options into a slice that can grow
// conditionally.
func options[T any](first T, rest ...T) []T {
	return append([]T{first}, rest...)
}

// anonymousLogin accepts any credentials with read-write access to root.
func anonymousLogin(root string) func(user, pass, host string) (string, bool, error) {
	return func(user, _, host string) (string, bool, error) {
		logger.Info("FTP login: user=%q host=%q", user, host)
		return root, false, nil
	}
}

// Serve accepts FTP control connections from ln until ctx is cancelled or
// Stop is called.
func (a *Adapter) Serve(ctx context.Context, ln net.Listener) error {
	a.mu.Lock()
	srv := a.server
	select {
	case <-a.shutdown:
		a.mu.Unlock()
		_ = ln.Close()
		return nil
	default:
	}
	if srv == nil {
		a.mu.Unlock()
		return errors.New("FTP adapter not prepared")
	}
	if a.started {
		a.mu.Unlock()
		return errors.New("FTP adapter already started")
	}
	a.started = true
	a.pool = connpool.Wrap(ln, Protocol, 0, a.metrics)
	pool := a.pool
	a.mu.Unlock()
	defer close(a.done)

	logger.Info("FTP server listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(pool)
	}()

	select {
	case <-ctx.Done():
		logger.Debug("FTP shutdown signal received: %v", ctx.Err())
	case <-a.shutdown:
	case err := <-errCh:
		pool.ForceClose()
		if errors.Is(err, net.ErrClosed) {
			return nil
		}
		return err
	}

	logger.Info("FTP graceful shutdown: waiting for %d active connection(s)", pool.Active())
	if err := pool.Shutdown(context.Background(), a.config.ShutdownTimeout); err == nil {
		logger.Info("FTP graceful shutdown complete")
	}
	<-errCh
	return nil
}

// Stop signals shutdown and waits for Serve to return or ctx to expire.
// Safe to call more than once and before Serve.
func (a *Adapter) Stop(ctx context.Context) error {
	a.shutdownOnce.Do(func() { close(a.shutdown) })

	a.mu.Lock()
	started := a.started
	a.mu.Unlock()
	if !started {
		return nil
	}

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Protocol returns "FTP".
func (a *Adapter) Protocol() string {
	return Protocol
}

// Port returns the configured control port.
func (a *Adapter) Port() int {
	return a.config.Port
}

// ActiveConnections returns the number of open control connections.
func (a *Adapter) ActiveConnections() int32 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.pool == nil {
		return 0
	}
	return a.pool.Active()
}
