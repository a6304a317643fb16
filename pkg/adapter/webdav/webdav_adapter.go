// Package webdav exposes the shared root as an anonymous, read-write WebDAV
// collection at "/".
package webdav

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/pkg/adapter/httpserver"
	"github.com/marmos91/rootshare/pkg/metrics"
	"golang.org/x/net/webdav"
)

// Protocol is the name the WebDAV service is registered under.
const Protocol = "WebDAV"

// Adapter serves WebDAV for one root with an in-memory lock system.
type Adapter struct {
	config Config
	server *httpserver.Server

	mu      sync.RWMutex
	handler http.Handler
}

// New creates a WebDAV adapter. A nil metrics value disables metrics.
func New(config Config, m metrics.ServiceMetrics) *Adapter {
	return &Adapter{
		config: config,
		server: httpserver.New(Protocol, httpserver.Config{
			PoolSize:        config.PoolSize,
			MaxConnections:  config.MaxConnections,
			ReadTimeout:     config.ReadTimeout,
			WriteTimeout:    config.WriteTimeout,
			IdleTimeout:     config.IdleTimeout,
			ShutdownTimeout: config.ShutdownTimeout,
		}, m),
	}
}

// Prepare builds the WebDAV handler for root.
func (a *Adapter) Prepare(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("webdav root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("webdav root %q is not a directory", root)
	}

	h := &webdav.Handler{
		FileSystem: webdav.Dir(root),
		LockSystem: webdav.NewMemLS(),
		Logger: func(r *http.Request, err error) {
			if err != nil {
				logger.Debug("WebDAV %s %s from %s: %v", r.Method, r.URL.Path, r.RemoteAddr, err)
				return
			}
			logger.Debug("WebDAV %s %s from %s", r.Method, r.URL.Path, r.RemoteAddr)
		},
	}

	a.mu.Lock()
	a.handler = h
	a.mu.Unlock()
	return nil
}

// Handler returns the prepared WebDAV handler, or nil before Prepare.
func (a *Adapter) Handler() http.Handler {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.handler
}

// Serve serves WebDAV on ln until ctx is cancelled or Stop is called.
func (a *Adapter) Serve(ctx context.Context, ln net.Listener) error {
	h := a.Handler()
	if h == nil {
		return fmt.Errorf("WebDAV adapter not prepared")
	}
	return a.server.Serve(ctx, ln, h)
}

// Stop initiates graceful shutdown.
func (a *Adapter) Stop(ctx context.Context) error {
	return a.server.Stop(ctx)
}

// Protocol returns "WebDAV".
func (a *Adapter) Protocol() string {
	return Protocol
}

// Port returns the configured port.
func (a *Adapter) Port() int {
	return a.config.Port
}
