package metrics

// ServiceMetrics observes the lifecycle and connections of protocol services.
//
// The protocol label is the adapter's Protocol() value ("HTTP", "FTP",
// "WebDAV").
type ServiceMetrics interface {
	// SetState records the current lifecycle state of a service.
	SetState(protocol string, state string)

	// RecordConnectionAccepted counts an accepted client connection.
	RecordConnectionAccepted(protocol string)

	// RecordConnectionClosed counts a closed client connection.
	RecordConnectionClosed(protocol string)

	// RecordConnectionForceClosed counts a connection closed by shutdown
	// after the graceful timeout.
	RecordConnectionForceClosed(protocol string)

	// SetActiveConnections records the number of open connections.
	SetActiveConnections(protocol string, count int32)
}

type noopServiceMetrics struct{}

// NewNoopServiceMetrics returns a ServiceMetrics that discards everything.
func NewNoopServiceMetrics() ServiceMetrics {
	return noopServiceMetrics{}
}

func (noopServiceMetrics) SetState(string, string)            {}
func (noopServiceMetrics) RecordConnectionAccepted(string)    {}
func (noopServiceMetrics) RecordConnectionClosed(string)      {}
func (noopServiceMetrics) RecordConnectionForceClosed(string) {}
func (noopServiceMetrics) SetActiveConnections(string, int32) {}
