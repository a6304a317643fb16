package connpool

import "net/http"

// DefaultPoolSize is the number of requests an HTTP-based service processes
// concurrently unless configured otherwise.
const DefaultPoolSize = 10

// WorkerPool bounds the number of requests handled at the same time. Excess
// requests wait for a free worker or for their client to go away.
type WorkerPool struct {
	slots chan struct{}
}

// NewWorkerPool creates a pool with size workers. size <= 0 means
// DefaultPoolSize.
func NewWorkerPool(size int) *WorkerPool {
	if size <= 0 {
		size = DefaultPoolSize
	}
	return &WorkerPool{slots: make(chan struct{}, size)}
}

// Size returns the number of workers.
func (p *WorkerPool) Size() int {
	return cap(p.slots)
}

// Busy returns the number of requests currently being handled.
func (p *WorkerPool) Busy() int {
	return len(p.slots)
}

// Middleware runs next inside a worker slot.
func (p *WorkerPool) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case p.slots <- struct{}{}:
		case <-r.Context().Done():
			return
		}
		defer func() { <-p.slots }()
		next.ServeHTTP(w, r)
	})
}
