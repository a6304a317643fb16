package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/pkg/adapter"
	"github.com/marmos91/rootshare/pkg/metrics"
)

// DefaultStopTimeout bounds Stop when the caller's context has no deadline.
const DefaultStopTimeout = 30 * time.Second

// Orchestrator manages the lifecycle of the protocol adapters that expose a
// single root directory.
//
// Architecture:
// Each adapter (web, FTP, WebDAV) runs in its own goroutine with its own
// cancel function and ServerHandle. The orchestrator binds every listener
// itself, so a port already in use fails exactly one handle and the other
// services keep running. There is no automatic restart.
//
// Lifecycle:
//  1. Creation: New() with the root every adapter will serve
//  2. Registration: AddAdapter() for each protocol
//  3. Startup: Start() prepares, binds and launches all adapters
//  4. Shutdown: Stop() or cancellation of Start's context
//
// Thread safety:
// All methods are safe for concurrent use. Start may only be called once.
//
// Example usage:
//
//	orch := server.New(root, server.WithBindAddress("0.0.0.0"))
//	orch.AddAdapter(web.New(webConfig, reg, svcMetrics, webMetrics))
//	orch.AddAdapter(ftp.New(ftpConfig, svcMetrics))
//
//	handles, err := orch.Start(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer orch.Stop(context.Background())
type Orchestrator struct {
	root        string
	bindAddress string
	stopTimeout time.Duration
	metrics     metrics.ServiceMetrics

	// mu protects adapters, handles and started
	mu       sync.RWMutex
	adapters []adapter.Adapter
	handles  map[string]*ServerHandle
	started  bool

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopErr  error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithBindAddress sets the address every listener binds to. Default "" (all
// interfaces).
func WithBindAddress(addr string) Option {
	return func(o *Orchestrator) { o.bindAddress = addr }
}

// WithStopTimeout bounds Stop when its context has no deadline.
func WithStopTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.stopTimeout = d
		}
	}
}

// WithMetrics reports service state transitions.
func WithMetrics(m metrics.ServiceMetrics) Option {
	return func(o *Orchestrator) {
		if m != nil {
			o.metrics = m
		}
	}
}

// New creates an orchestrator for root. The root is captured here and handed
// unchanged to every adapter.
func New(root string, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		root:        root,
		stopTimeout: DefaultStopTimeout,
		metrics:     metrics.NewNoopServiceMetrics(),
		adapters:    make([]adapter.Adapter, 0, 3),
		handles:     make(map[string]*ServerHandle),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Root returns the directory shared by every adapter.
func (o *Orchestrator) Root() string {
	return o.root
}

// AddAdapter registers a protocol adapter.
//
// Duplicate protocols and port conflicts between fixed (non-zero) ports are
// rejected with an error.
//
// Panics if the adapter is nil or Start has already been called.
func (o *Orchestrator) AddAdapter(a adapter.Adapter) error {
	if a == nil {
		panic("adapter cannot be nil")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.started {
		panic("cannot add adapter after Start() has been called")
	}

	protocol := a.Protocol()
	port := a.Port()

	for _, existing := range o.adapters {
		if existing.Protocol() == protocol {
			return fmt.Errorf("adapter for protocol %s already registered", protocol)
		}
		if port != 0 && existing.Port() == port {
			return fmt.Errorf("port %d already in use by %s adapter", port, existing.Protocol())
		}
	}

	o.adapters = append(o.adapters, a)
	logger.Info("Registered %s adapter on port %d", protocol, port)
	return nil
}

// Start launches every registered adapter and returns once each one has
// reported Running or Failed.
//
// Preflight failures (no adapters, root missing or not a directory) start
// nothing and return an error. Per-adapter failures (preparation, bind or an
// immediate Serve error) only mark that adapter's handle Failed; Start still
// returns nil and the snapshots tell which services are up.
//
// Cancelling ctx later stops every service, like Stop.
func (o *Orchestrator) Start(ctx context.Context) ([]HandleSnapshot, error) {
	o.mu.Lock()
	if o.started {
		o.mu.Unlock()
		return nil, errors.New("orchestrator already started")
	}
	if len(o.adapters) == 0 {
		o.mu.Unlock()
		return nil, errors.New("no adapters registered; call AddAdapter() before Start()")
	}
	if err := checkRoot(o.root); err != nil {
		o.mu.Unlock()
		return nil, err
	}
	o.started = true
	launches := make([]launch, 0, len(o.adapters))
	for _, a := range o.adapters {
		h := newHandle(a.Protocol(), a.Port())
		hctx, cancel := context.WithCancel(ctx)
		h.cancel = cancel
		o.handles[h.protocol] = h
		launches = append(launches, launch{adapter: a, handle: h, ctx: hctx})
	}
	o.wg.Add(len(launches))
	o.mu.Unlock()

	logger.Info("Starting %d service(s) for root %s", len(launches), o.root)
	startTime := time.Now()

	ready := make(chan struct{}, len(launches))
	for _, l := range launches {
		o.metrics.SetState(l.handle.protocol, StateStarting.String())
		go o.run(l.ctx, l.adapter, l.handle, ready)
	}

	for range launches {
		<-ready
	}

	snapshots := o.Handles()
	running := 0
	for _, s := range snapshots {
		if s.State == StateRunning {
			running++
		}
	}
	logger.Info("%d of %d service(s) running after %v", running, len(snapshots), time.Since(startTime))

	return snapshots, nil
}

// launch pairs an adapter with its handle and service context.
type launch struct {
	adapter adapter.Adapter
	handle  *ServerHandle
	ctx     context.Context
}

// checkRoot verifies the shared root before anything is started.
func checkRoot(root string) error {
	if root == "" {
		return errors.New("root directory not set")
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("root directory unusable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("root %s is not a directory", root)
	}
	return nil
}

// run drives one adapter: prepare, bind, report, serve.
func (o *Orchestrator) run(ctx context.Context, a adapter.Adapter, h *ServerHandle, ready chan<- struct{}) {
	defer o.wg.Done()
	defer close(h.done)

	reported := false
	report := func() {
		if !reported {
			reported = true
			ready <- struct{}{}
		}
	}
	defer report()

	protocol := a.Protocol()

	if err := a.Prepare(o.root); err != nil {
		o.fail(h, fmt.Errorf("prepare: %w", err))
		return
	}

	addr := net.JoinHostPort(o.bindAddress, strconv.Itoa(a.Port()))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		o.fail(h, fmt.Errorf("bind %s: %w", addr, err))
		return
	}

	if tcp, ok := ln.Addr().(*net.TCPAddr); ok {
		h.setBoundPort(tcp.Port)
	}
	if h.transition(StateRunning, nil) {
		o.metrics.SetState(protocol, StateRunning.String())
	}
	logger.Info("%s service running on %s", protocol, ln.Addr())
	report()

	err = a.Serve(ctx, ln)
	switch {
	case ctx.Err() != nil:
		o.markStopped(h)
	case err != nil:
		o.fail(h, err)
	default:
		logger.Warn("%s service returned without being stopped", protocol)
		o.markStopped(h)
	}
}

func (o *Orchestrator) fail(h *ServerHandle, err error) {
	if h.transition(StateFailed, err) {
		o.metrics.SetState(h.protocol, StateFailed.String())
		logger.Error("%s service failed: %v", h.protocol, err)
	}
}

func (o *Orchestrator) markStopped(h *ServerHandle) {
	if h.transition(StateStopped, nil) {
		o.metrics.SetState(h.protocol, StateStopped.String())
		logger.Info("%s service stopped", h.protocol)
	}
}

// Handles returns snapshots of every handle in registration order. Empty
// before Start.
func (o *Orchestrator) Handles() []HandleSnapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]HandleSnapshot, 0, len(o.handles))
	for _, a := range o.adapters {
		if h, ok := o.handles[a.Protocol()]; ok {
			out = append(out, h.Snapshot())
		}
	}
	return out
}

// Handle returns the live handle for protocol.
func (o *Orchestrator) Handle(protocol string) (*ServerHandle, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	h, ok := o.handles[protocol]
	return h, ok
}

// Stop shuts every service down in reverse registration order and waits for
// them, bounded by ctx (or the stop timeout if ctx has no deadline). Handles
// end up Stopped, except those that had already Failed.
//
// Safe to call more than once; later calls return the first call's result.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.stopOnce.Do(func() {
		o.stopErr = o.stop(ctx)
	})
	return o.stopErr
}

func (o *Orchestrator) stop(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.stopTimeout)
		defer cancel()
	}

	o.mu.Lock()
	o.started = true
	adapters := make([]adapter.Adapter, len(o.adapters))
	copy(adapters, o.adapters)
	o.mu.Unlock()

	logger.Info("Initiating graceful shutdown of %d service(s)", len(adapters))

	var errs []error
	for i := len(adapters) - 1; i >= 0; i-- {
		a := adapters[i]
		protocol := a.Protocol()

		h, ok := o.Handle(protocol)
		if !ok {
			continue
		}

		logger.Debug("Stopping %s service", protocol)
		h.cancel()
		if err := a.Stop(ctx); err != nil {
			logger.Error("Error stopping %s service: %v", protocol, err)
			errs = append(errs, fmt.Errorf("%s: %w", protocol, err))
		}
	}

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		errs = append(errs, fmt.Errorf("waiting for services: %w", ctx.Err()))
	}

	for _, a := range adapters {
		if h, ok := o.Handle(a.Protocol()); ok {
			o.markStopped(h)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logger.Info("All services stopped")
	return nil
}

// Wait blocks until every service goroutine has exited.
func (o *Orchestrator) Wait() {
	o.wg.Wait()
}
