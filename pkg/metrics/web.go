package metrics

import "time"

// WebMetrics observes the browsing service.
type WebMetrics interface {
	// RecordRequest records a completed request by route name ("browse",
	// "upload", "download"), method and response status.
	RecordRequest(route string, method string, status int, duration time.Duration)

	// RecordBytesTransferred counts file bytes moved. direction is "upload"
	// or "download".
	RecordBytesTransferred(direction string, bytes int64)
}

type noopWebMetrics struct{}

// NewNoopWebMetrics returns a WebMetrics that discards everything.
func NewNoopWebMetrics() WebMetrics {
	return noopWebMetrics{}
}

func (noopWebMetrics) RecordRequest(string, string, int, time.Duration) {}
func (noopWebMetrics) RecordBytesTransferred(string, int64)             {}
