package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/rootshare/pkg/adapter/ftp"
	"github.com/marmos91/rootshare/pkg/adapter/web"
	"github.com/marmos91/rootshare/pkg/adapter/webdav"
	"github.com/marmos91/rootshare/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func realOrchestrator(t *testing.T, ftpPort int) (*Orchestrator, string) {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "shared.txt"), []byte("same bytes"), 0644))

	o := New(root, WithBindAddress("127.0.0.1"), WithStopTimeout(5*time.Second))
	require.NoError(t, o.AddAdapter(web.New(web.Config{ShutdownTimeout: time.Second}, registry.NewWithRoot(root), nil, nil)))
	require.NoError(t, o.AddAdapter(ftp.New(ftp.Config{Port: ftpPort, ShutdownTimeout: time.Second}, nil)))
	require.NoError(t, o.AddAdapter(webdav.New(webdav.Config{ShutdownTimeout: time.Second}, nil)))
	return o, root
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestIntegration_ThreeServicesShareRoot(t *testing.T) {
	o, root := realOrchestrator(t, 0)

	snaps, err := o.Start(context.Background())
	require.NoError(t, err)
	for _, s := range snaps {
		require.Equal(t, StateRunning, s.State, "%s: %v", s.Protocol, s.Err)
	}

	httpPort := stateOf(t, snaps, web.Protocol).BoundPort
	davPort := stateOf(t, snaps, webdav.Protocol).BoundPort

	file := filepath.Join(root, "shared.txt")
	assert.Equal(t, "same bytes", get(t, fmt.Sprintf("http://127.0.0.1:%d/download/%s", httpPort, url.PathEscape(file))))
	assert.Equal(t, "same bytes", get(t, fmt.Sprintf("http://127.0.0.1:%d/shared.txt", davPort)))

	ftpAddr := fmt.Sprintf("127.0.0.1:%d", stateOf(t, snaps, ftp.Protocol).BoundPort)
	conn, err := net.DialTimeout("tcp", ftpAddr, time.Second)
	require.NoError(t, err)
	_ = conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, o.Stop(ctx))
	for _, s := range o.Handles() {
		assert.Equal(t, StateStopped, s.State, s.Protocol)
	}
}

func TestIntegration_PortConflictIsolated(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = busy.Close() }()

	o, _ := realOrchestrator(t, busy.Addr().(*net.TCPAddr).Port)

	snaps, err := o.Start(context.Background())
	require.NoError(t, err)
	defer func() { _ = o.Stop(context.Background()) }()

	assert.Equal(t, StateFailed, stateOf(t, snaps, ftp.Protocol).State)
	assert.Equal(t, StateRunning, stateOf(t, snaps, web.Protocol).State)
	assert.Equal(t, StateRunning, stateOf(t, snaps, webdav.Protocol).State)

	httpPort := stateOf(t, snaps, web.Protocol).BoundPort
	assert.Equal(t, "ok\n", get(t, fmt.Sprintf("http://127.0.0.1:%d/healthz", httpPort)))
}
