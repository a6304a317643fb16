// Package metrics provides Prometheus metrics collection for rootshare services.
//
// All metrics are optional - if the registry is not initialized, components use
// no-op implementations. This allows rootshare to run with or without metrics
// collection enabled.
//
// Usage:
//
//	metrics.InitRegistry()
//	svc := prometheus.NewServiceMetrics()
//	web := prometheus.NewWebMetrics()
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
)

// InitRegistry initializes the global Prometheus registry. Subsequent calls
// are ignored.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
	})
}

// GetRegistry returns the global registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}

// IsEnabled returns true if InitRegistry has been called.
func IsEnabled() bool {
	return GetRegistry() != nil
}
