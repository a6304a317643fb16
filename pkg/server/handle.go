package server

import (
	"context"
	"sync"
)

// State is the lifecycle state of one protocol service.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateFailed
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateFailed:
		return "failed"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ServerHandle tracks one running protocol service.
//
// Transitions: Starting -> Running -> Stopped, Starting -> Failed, or
// Running -> Failed when the service dies on its own. Failed and Stopped are
// terminal; a failed service is never restarted.
type ServerHandle struct {
	protocol      string
	requestedPort int

	mu        sync.RWMutex
	state     State
	boundPort int
	err       error

	// cancel stops this service only
	cancel context.CancelFunc
	done   chan struct{}
}

func newHandle(protocol string, port int) *ServerHandle {
	return &ServerHandle{
		protocol:      protocol,
		requestedPort: port,
		state:         StateStarting,
		cancel:        func() {},
		done:          make(chan struct{}),
	}
}

// HandleSnapshot is a point-in-time copy of a handle's state.
type HandleSnapshot struct {
	Protocol      string
	State         State
	RequestedPort int
	BoundPort     int
	Err           error
}

// Protocol returns the service's protocol name.
func (h *ServerHandle) Protocol() string {
	return h.protocol
}

// State returns the current state.
func (h *ServerHandle) State() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// BoundPort returns the port actually listened on, or 0 if binding never
// succeeded.
func (h *ServerHandle) BoundPort() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.boundPort
}

// Err returns the failure cause of a Failed handle.
func (h *ServerHandle) Err() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.err
}

// Done is closed once the service goroutine has exited.
func (h *ServerHandle) Done() <-chan struct{} {
	return h.done
}

// Snapshot copies the handle's current state.
func (h *ServerHandle) Snapshot() HandleSnapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HandleSnapshot{
		Protocol:      h.protocol,
		State:         h.state,
		RequestedPort: h.requestedPort,
		BoundPort:     h.boundPort,
		Err:           h.err,
	}
}

// transition moves the handle to state unless it is already terminal and
// reports whether it did.
func (h *ServerHandle) transition(state State, err error) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state == StateFailed || h.state == StateStopped {
		return false
	}
	h.state = state
	if err != nil {
		h.err = err
	}
	return true
}

func (h *ServerHandle) setBoundPort(port int) {
	h.mu.Lock()
	h.boundPort = port
	h.mu.Unlock()
}
