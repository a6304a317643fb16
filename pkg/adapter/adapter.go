package adapter

import (
	"context"
	"net"
)

// Adapter represents a protocol-specific file service managed by the
// orchestrator in pkg/server.
//
// Each adapter exposes the same root directory through one protocol (web,
// FTP, WebDAV). The orchestrator owns the listening socket so that a bind
// failure is attributed to exactly one service.
//
// Lifecycle:
//  1. Creation: adapter is created with protocol-specific configuration
//  2. Preparation: Prepare() builds the protocol handler for the root
//  3. Startup: Serve() serves connections from the listener until shutdown
//  4. Shutdown: Stop() or context cancellation triggers graceful shutdown
//
// Thread safety:
// Prepare() is called once before Serve(). Stop() may be called concurrently
// with Serve() and more than once.
type Adapter interface {
	// Prepare builds the protocol server for root. An error here marks the
	// service Failed before any socket is bound.
	Prepare(root string) error

	// Serve accepts connections from ln and blocks until ctx is cancelled,
	// Stop is called, or an unrecoverable error occurs.
	//
	// When ctx is cancelled Serve must stop accepting, wait for active
	// connections (bounded by the adapter's shutdown timeout), close what is
	// left and return nil.
	Serve(ctx context.Context, ln net.Listener) error

	// Stop initiates graceful shutdown and waits for it to finish or for ctx
	// to expire. Idempotent.
	Stop(ctx context.Context) error

	// Protocol returns the constant protocol name used for logging, metrics
	// and handle lookup. Examples: "HTTP", "FTP", "WebDAV".
	Protocol() string

	// Port returns the configured TCP port. 0 requests an ephemeral port.
	Port() int
}
