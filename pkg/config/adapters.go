package config

import (
	"github.com/marmos91/rootshare/pkg/adapter"
	"github.com/marmos91/rootshare/pkg/adapter/ftp"
	"github.com/marmos91/rootshare/pkg/adapter/web"
	"github.com/marmos91/rootshare/pkg/adapter/webdav"
	"github.com/marmos91/rootshare/pkg/registry"
)

// CreateRegistry builds the root registry. A configured server.root becomes
// a fixed override; otherwise the host's system roots are enumerated.
func CreateRegistry(cfg *Config) *registry.Registry {
	if cfg.Server.Root != "" {
		return registry.NewWithRoot(cfg.Server.Root)
	}
	return registry.New()
}

// CreateAdapters creates the web, FTP and WebDAV adapters, in that order.
//
// Parameters:
//   - cfg: The complete rootshare configuration
//   - reg: Root registry shown by the web service
//   - m: Metrics collectors from InitializeMetrics (nil = no metrics)
func CreateAdapters(cfg *Config, reg *registry.Registry, m *MetricsResult) []adapter.Adapter {
	if m == nil {
		m = noopMetrics()
	}

	return []adapter.Adapter{
		web.New(cfg.Adapters.HTTP, reg, m.ServiceMetrics, m.WebMetrics),
		ftp.New(cfg.Adapters.FTP, m.ServiceMetrics),
		webdav.New(cfg.Adapters.WebDAV, m.ServiceMetrics),
	}
}
