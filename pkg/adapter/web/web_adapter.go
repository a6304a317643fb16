// Package web implements the browser-facing service: directory browsing,
// multipart upload and attachment download over HTTP.
package web

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/internal/ratelimiter"
	"github.com/marmos91/rootshare/pkg/adapter/httpserver"
	"github.com/marmos91/rootshare/pkg/fileops"
	"github.com/marmos91/rootshare/pkg/lister"
	"github.com/marmos91/rootshare/pkg/metrics"
	"github.com/marmos91/rootshare/pkg/registry"
	"github.com/marmos91/rootshare/pkg/resolver"
	"github.com/spf13/afero"
)

// Protocol is the name the web service is registered under.
const Protocol = "HTTP"

// Adapter serves the web UI for one root.
//
// The root handed to Prepare is the fallback for invalid paths. When the
// registry carries an override, every path is additionally confined to it;
// otherwise the whole host filesystem is browsable, starting at the root.
type Adapter struct {
	config     Config
	registry   *registry.Registry
	webMetrics metrics.WebMetrics
	fs         afero.Fs

	server  *httpserver.Server
	limiter *ratelimiter.RateLimiter

	mu         sync.RWMutex
	handler    http.Handler
	resolver   *resolver.Resolver
	lister     *lister.Lister
	uploader   *fileops.Uploader
	downloader *fileops.Downloader
}

// New creates a web adapter. Nil metrics disable the corresponding metrics.
func New(config Config, reg *registry.Registry, svc metrics.ServiceMetrics, wm metrics.WebMetrics) *Adapter {
	if reg == nil {
		reg = registry.New()
	}
	if wm == nil {
		wm = metrics.NewNoopWebMetrics()
	}
	return &Adapter{
		config:     config,
		registry:   reg,
		webMetrics: wm,
		fs:         afero.NewOsFs(),
		limiter:    ratelimiter.New(config.RateLimit.RequestsPerSecond, config.RateLimit.Burst),
		server: httpserver.New(Protocol, httpserver.Config{
			PoolSize:        config.PoolSize,
			MaxConnections:  config.MaxConnections,
			ReadTimeout:     config.ReadTimeout,
			WriteTimeout:    config.WriteTimeout,
			IdleTimeout:     config.IdleTimeout,
			ShutdownTimeout: config.ShutdownTimeout,
		}, svc),
	}
}

// Prepare builds the path services and router for root.
func (a *Adapter) Prepare(root string) error {
	var opts []resolver.Option
	opts = append(opts, resolver.WithFs(a.fs))
	if a.registry.Override() != "" {
		opts = append(opts, resolver.WithConfinement())
	}
	res := resolver.New(root, opts...)
	if !res.IsDir(res.Fallback()) {
		return fmt.Errorf("web root %q is not a directory", root)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.resolver = res
	a.lister = lister.New(a.fs)
	a.uploader = fileops.NewUploader(a.fs, res, a.config.MaxUploadBytes)
	a.downloader = fileops.NewDownloader(a.fs, res)
	a.handler = a.routes()

	logger.Debug("HTTP prepared: root=%s confined=%v max_upload_bytes=%d",
		res.Fallback(), res.Confined(), a.config.MaxUploadBytes)
	return nil
}

// routes builds the router. Paths are matched in their escaped form so that
// %2F inside a browse or download path does not split it.
func (a *Adapter) routes() http.Handler {
	r := mux.NewRouter().SkipClean(true).UseEncodedPath()

	r.HandleFunc("/", a.handleBrowse).Methods(http.MethodGet, http.MethodPost).Name("index")
	r.HandleFunc("/browse/{path:.*}", a.handleBrowse).Methods(http.MethodGet, http.MethodPost).Name("browse")
	r.HandleFunc("/upload", a.handleUpload).Methods(http.MethodPost).Name("upload")
	r.HandleFunc("/download/{path:.*}", a.handleDownload).Methods(http.MethodGet, http.MethodHead).Name("download")
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet).Name("healthz")

	r.Use(a.instrument, a.limiter.Middleware)
	return r
}

// Handler returns the prepared router, or nil before Prepare.
func (a *Adapter) Handler() http.Handler {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.handler
}

// Serve serves the web UI on ln until ctx is cancelled or Stop is called.
func (a *Adapter) Serve(ctx context.Context, ln net.Listener) error {
	h := a.Handler()
	if h == nil {
		return fmt.Errorf("HTTP adapter not prepared")
	}
	return a.server.Serve(ctx, ln, h)
}

// Stop initiates graceful shutdown.
func (a *Adapter) Stop(ctx context.Context) error {
	return a.server.Stop(ctx)
}

// Protocol returns "HTTP".
func (a *Adapter) Protocol() string {
	return Protocol
}

// Port returns the configured port.
func (a *Adapter) Port() int {
	return a.config.Port
}
