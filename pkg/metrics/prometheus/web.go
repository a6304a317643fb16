package prometheus

import (
	"strconv"
	"time"

	"github.com/marmos91/rootshare/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type webMetrics struct {
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	bytesTransferred *prometheus.CounterVec
}

// NewWebMetrics returns a Prometheus-backed WebMetrics registered in the
// global registry, or a no-op implementation when metrics are disabled.
func NewWebMetrics() metrics.WebMetrics {
	if !metrics.IsEnabled() {
		return metrics.NewNoopWebMetrics()
	}
	return NewWebMetricsWith(metrics.GetRegistry())
}

// NewWebMetricsWith registers the web collectors in reg.
func NewWebMetricsWith(reg prometheus.Registerer) metrics.WebMetrics {
	return &webMetrics{
		requestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rootshare_http_requests_total",
				Help: "Total number of browsing service requests by route, method and status code",
			},
			[]string{"route", "method", "code"},
		),
		requestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "rootshare_http_request_duration_seconds",
				Help: "Duration of browsing service requests in seconds",
				Buckets: []float64{
					0.001, // 1ms
					0.01,  // 10ms
					0.1,   // 100ms
					1.0,   // 1s
					10.0,  // 10s
					60.0,  // 1m
				},
			},
			[]string{"route"},
		),
		bytesTransferred: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rootshare_http_bytes_transferred_total",
				Help: "Total file bytes uploaded or downloaded through the browsing service",
			},
			[]string{"direction"},
		),
	}
}

func (m *webMetrics) RecordRequest(route string, method string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *webMetrics) RecordBytesTransferred(direction string, bytes int64) {
	m.bytesTransferred.WithLabelValues(direction).Add(float64(bytes))
}
