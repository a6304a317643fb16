package config

import (
	"github.com/marmos91/rootshare/pkg/metrics"
	promMetrics "github.com/marmos91/rootshare/pkg/metrics/prometheus"
)

// MetricsResult contains all metrics-related components created from configuration.
type MetricsResult struct {
	// Server is the HTTP server exposing Prometheus metrics (nil if disabled)
	Server *metrics.Server

	// ServiceMetrics observes service state and connections (never nil)
	ServiceMetrics metrics.ServiceMetrics

	// WebMetrics observes web requests and transfers (never nil)
	WebMetrics metrics.WebMetrics
}

// InitializeMetrics creates and initializes all metrics components based on configuration.
//
// If metrics are enabled in the configuration:
//   - Initializes the global Prometheus registry
//   - Creates the metrics HTTP server
//   - Creates Prometheus-backed metrics instances for all components
//
// If metrics are disabled:
//   - Returns nil server
//   - Returns no-op metrics implementations (zero overhead)
func InitializeMetrics(cfg *Config) *MetricsResult {
	if !cfg.Server.Metrics.Enabled {
		return noopMetrics()
	}

	// Initialize global Prometheus registry
	metrics.InitRegistry()

	server := metrics.NewServer(metrics.ServerConfig{
		BindAddress: cfg.Server.BindAddress,
		Port:        cfg.Server.Metrics.Port,
	})

	return &MetricsResult{
		Server:         server,
		ServiceMetrics: promMetrics.NewServiceMetrics(),
		WebMetrics:     promMetrics.NewWebMetrics(),
	}
}

func noopMetrics() *MetricsResult {
	return &MetricsResult{
		ServiceMetrics: metrics.NewNoopServiceMetrics(),
		WebMetrics:     metrics.NewNoopWebMetrics(),
	}
}
