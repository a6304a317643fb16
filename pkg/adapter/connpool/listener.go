// Package connpool tracks the client connections of one protocol service so
// that the service can be stopped deterministically: stop accepting, wait for
// open connections to drain, then force-close whatever is left.
package connpool

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/pkg/metrics"
)

// drainPollInterval is how often Drain re-checks the open connection count.
const drainPollInterval = 20 * time.Millisecond

// Listener wraps a net.Listener, tracking every accepted connection.
//
// When maxConns > 0 Accept blocks once that many connections are open until
// one of them closes.
type Listener struct {
	net.Listener

	protocol string
	metrics  metrics.ServiceMetrics

	// sem limits concurrent connections; nil means unlimited
	sem chan struct{}

	// conns maps *trackedConn to struct{} for forced closure
	conns sync.Map
	count atomic.Int32

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// Wrap starts tracking connections accepted from ln. A nil metrics value
// disables metrics.
func Wrap(ln net.Listener, protocol string, maxConns int, m metrics.ServiceMetrics) *Listener {
	if m == nil {
		m = metrics.NewNoopServiceMetrics()
	}
	l := &Listener{
		Listener: ln,
		protocol: protocol,
		metrics:  m,
		closed:   make(chan struct{}),
	}
	if maxConns > 0 {
		l.sem = make(chan struct{}, maxConns)
	}
	return l
}

// Accept waits for a connection slot and the next connection.
func (l *Listener) Accept() (net.Conn, error) {
	if l.sem != nil {
		select {
		case l.sem <- struct{}{}:
		case <-l.closed:
			return nil, net.ErrClosed
		}
	}

	conn, err := l.Listener.Accept()
	if err != nil {
		if l.sem != nil {
			<-l.sem
		}
		return nil, err
	}

	tc := &trackedConn{Conn: conn, owner: l}
	l.conns.Store(tc, struct{}{})
	n := l.count.Add(1)

	l.metrics.RecordConnectionAccepted(l.protocol)
	l.metrics.SetActiveConnections(l.protocol, n)
	logger.Debug("%s connection accepted from %s (active: %d)", l.protocol, conn.RemoteAddr(), n)

	return tc, nil
}

// Close stops accepting. Open connections are left alone; see Drain and
// ForceClose. Safe to call more than once.
func (l *Listener) Close() error {
	l.closeOnce.Do(func() {
		close(l.closed)
		l.closeErr = l.Listener.Close()
	})
	return l.closeErr
}

// Active returns the number of open connections.
func (l *Listener) Active() int32 {
	return l.count.Load()
}

// Drain blocks until every tracked connection has closed or ctx is done.
func (l *Listener) Drain(ctx context.Context) error {
	ticker := time.NewTicker(drainPollInterval)
	defer ticker.Stop()

	for l.Active() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// ForceClose closes every open connection and returns how many were closed.
func (l *Listener) ForceClose() int {
	closed := 0
	l.conns.Range(func(key, _ any) bool {
		tc := key.(*trackedConn)
		if err := tc.Close(); err != nil {
			logger.Debug("Error force-closing %s connection to %s: %v", l.protocol, tc.RemoteAddr(), err)
		} else {
			closed++
			l.metrics.RecordConnectionForceClosed(l.protocol)
		}
		return true
	})
	if closed > 0 {
		logger.Info("Force-closed %d %s connection(s)", closed, l.protocol)
	}
	return closed
}

// Shutdown closes the listener, waits up to timeout for connections to
// drain, then force-closes the rest. It returns ctx's error if it expired
// before the drain finished.
func (l *Listener) Shutdown(ctx context.Context, timeout time.Duration) error {
	_ = l.Close()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if err := l.Drain(ctx); err != nil {
		logger.Warn("%s shutdown timeout exceeded: %d connection(s) still active - forcing closure",
			l.protocol, l.Active())
		l.ForceClose()
		return err
	}
	return nil
}

func (l *Listener) release(tc *trackedConn) {
	l.conns.Delete(tc)
	n := l.count.Add(-1)
	if l.sem != nil {
		<-l.sem
	}
	l.metrics.RecordConnectionClosed(l.protocol)
	l.metrics.SetActiveConnections(l.protocol, n)
	logger.Debug("%s connection closed from %s (active: %d)", l.protocol, tc.RemoteAddr(), n)
}

// trackedConn releases its slot exactly once, however often Close is called.
type trackedConn struct {
	net.Conn
	owner *Listener
	once  sync.Once
}

func (c *trackedConn) Close() error {
	err := c.Conn.Close()
	c.once.Do(func() { c.owner.release(c) })
	return err
}
