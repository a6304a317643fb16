package prometheus

import (
	"github.com/marmos91/rootshare/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// States is the label set of rootshare_service_state. Exactly one state per
// protocol is 1 at any time.
var States = []string{"starting", "running", "failed", "stopped"}

type serviceMetrics struct {
	state                  *prometheus.GaugeVec
	activeConnections      *prometheus.GaugeVec
	connectionsAccepted    *prometheus.CounterVec
	connectionsClosed      *prometheus.CounterVec
	connectionsForceClosed *prometheus.CounterVec
}

// NewServiceMetrics returns a Prometheus-backed ServiceMetrics registered in
// the global registry, or a no-op implementation when metrics are disabled.
func NewServiceMetrics() metrics.ServiceMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopServiceMetrics()
	}
	return NewServiceMetricsWith(metrics.GetRegistry())
}

// NewServiceMetricsWith registers the service collectors in reg.
func NewServiceMetricsWith(reg prometheus.Registerer) metrics.ServiceMetrics {
	return &serviceMetrics{
		state: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rootshare_service_state",
				Help: "Lifecycle state of each protocol service (1 = current state)",
			},
			[]string{"protocol", "state"},
		),
		activeConnections: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rootshare_active_connections",
				Help: "Current number of open client connections",
			},
			[]string{"protocol"},
		),
		connectionsAccepted: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rootshare_connections_accepted_total",
				Help: "Total number of client connections accepted",
			},
			[]string{"protocol"},
		),
		connectionsClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rootshare_connections_closed_total",
				Help: "Total number of client connections closed",
			},
			[]string{"protocol"},
		),
		connectionsForceClosed: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rootshare_connections_force_closed_total",
				Help: "Total number of connections force-closed after the shutdown timeout",
			},
			[]string{"protocol"},
		),
	}
}

func (m *serviceMetrics) SetState(protocol string, state string) {
	for _, s := range States {
		v := 0.0
		if s == state {
			v = 1
		}
		m.state.WithLabelValues(protocol, s).Set(v)
	}
}

func (m *serviceMetrics) RecordConnectionAccepted(protocol string) {
	m.connectionsAccepted.WithLabelValues(protocol).Inc()
}

func (m *serviceMetrics) RecordConnectionClosed(protocol string) {
	m.connectionsClosed.WithLabelValues(protocol).Inc()
}

func (m *serviceMetrics) RecordConnectionForceClosed(protocol string) {
	m.connectionsForceClosed.WithLabelValues(protocol).Inc()
}

func (m *serviceMetrics) SetActiveConnections(protocol string, count int32) {
	m.activeConnections.WithLabelValues(protocol).Set(float64(count))
}
