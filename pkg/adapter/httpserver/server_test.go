package httpserver

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, cfg Config, h http.Handler) (*Server, string, chan error) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New("TEST", cfg, nil)
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(context.Background(), ln, h) }()
	return s, "http://" + ln.Addr().String(), errCh
}

func TestServer_ServeAndStop(t *testing.T) {
	s, url, errCh := startServer(t, Config{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "pong")
	}))

	resp, err := http.Get(url + "/ping")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "pong", string(body))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
	require.NoError(t, <-errCh)

	// idempotent
	require.NoError(t, s.Stop(ctx))

	_, err = http.Get(url + "/ping")
	assert.Error(t, err)
}

func TestServer_ContextCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := New("TEST", Config{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve(ctx, ln, http.NotFoundHandler()) }()

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after context cancellation")
	}
}

func TestServer_ForcesSlowRequestsAfterTimeout(t *testing.T) {
	entered := make(chan struct{})
	s, url, errCh := startServer(t, Config{ShutdownTimeout: 100 * time.Millisecond},
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(entered)
			<-r.Context().Done()
		}))

	go func() {
		resp, err := http.Get(url + "/slow")
		if err == nil {
			_ = resp.Body.Close()
		}
	}()
	<-entered

	start := time.Now()
	require.NoError(t, s.Stop(context.Background()))
	require.NoError(t, <-errCh)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, int32(0), s.ActiveConnections())
}

func TestServer_StopBeforeServe(t *testing.T) {
	s := New("TEST", Config{}, nil)
	require.NoError(t, s.Stop(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	assert.NoError(t, s.Serve(context.Background(), ln, http.NotFoundHandler()))

	// the listener was released
	_, err = net.Dial("tcp", ln.Addr().String())
	assert.Error(t, err)
}
