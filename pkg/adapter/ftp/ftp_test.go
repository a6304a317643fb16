package ftp

import (
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	ftpclient "github.com/jlaffaye/ftp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startFTP serves a fresh temp root and returns the control address.
func startFTP(t *testing.T, cfg Config) (*Adapter, string, string) {
	t.Helper()
	root := t.TempDir()

	a := New(cfg, nil)
	require.NoError(t, a.Prepare(root))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- a.Serve(context.Background(), ln) }()

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, a.Stop(ctx))
		assert.NoError(t, <-errCh)
	})
	return a, ln.Addr().String(), root
}

func login(t *testing.T, addr, user, pass string) *ftpclient.ServerConn {
	t.Helper()
	c, err := ftpclient.Dial(addr, ftpclient.DialWithTimeout(5*time.Second))
	require.NoError(t, err)
	require.NoError(t, c.Login(user, pass))
	return c
}

func TestFTP_AnonymousReadWrite(t *testing.T) {
	_, addr, root := startFTP(t, Config{ShutdownTimeout: time.Second})

	c := login(t, addr, "anonymous", "guest@example.com")
	defer func() { _ = c.Quit() }()

	// stor
	require.NoError(t, c.Stor("hello.txt", strings.NewReader("hi there")))
	data, err := os.ReadFile(filepath.Join(root, "hello.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi there", string(data))

	// appe
	require.NoError(t, c.Append("hello.txt", strings.NewReader("!")))

	// retr
	r, err := c.Retr("hello.txt")
	require.NoError(t, err)
	got, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	assert.Equal(t, "hi there!", string(got))

	// mkd, cwd, list
	require.NoError(t, c.MakeDir("sub"))
	assert.DirExists(t, filepath.Join(root, "sub"))
	require.NoError(t, c.ChangeDir("sub"))
	require.NoError(t, c.ChangeDir("/"))

	entries, err := c.List("/")
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"hello.txt", "sub"}, names)

	// rnfr/rnto
	require.NoError(t, c.Rename("hello.txt", "sub/greeting.txt"))
	assert.FileExists(t, filepath.Join(root, "sub", "greeting.txt"))

	// dele
	require.NoError(t, c.Delete("sub/greeting.txt"))
	assert.NoFileExists(t, filepath.Join(root, "sub", "greeting.txt"))
}

func TestFTP_AnyUserName(t *testing.T) {
	_, addr, root := startFTP(t, Config{ShutdownTimeout: time.Second})

	c := login(t, addr, "alice", "whatever")
	defer func() { _ = c.Quit() }()

	require.NoError(t, c.Stor("a.txt", strings.NewReader("a")))
	assert.FileExists(t, filepath.Join(root, "a.txt"))
}

func TestFTP_StopClosesIdleClients(t *testing.T) {
	a, addr, _ := startFTP(t, Config{ShutdownTimeout: 100 * time.Millisecond})

	c := login(t, addr, "anonymous", "x")
	require.Eventually(t, func() bool { return a.ActiveConnections() == 1 }, time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, a.Stop(ctx))
	assert.Equal(t, int32(0), a.ActiveConnections())

	// the control connection is gone
	assert.Error(t, c.NoOp())

	_, err := net.DialTimeout("tcp", addr, time.Second)
	assert.Error(t, err)
}

func TestPrepare_InvalidRoot(t *testing.T) {
	a := New(Config{}, nil)
	assert.Error(t, a.Prepare(filepath.Join(t.TempDir(), "missing")))

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	assert.Error(t, a.Prepare(file))
}

func TestServe_NotPrepared(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = ln.Close() }()

	a := New(Config{}, nil)
	assert.Error(t, a.Serve(context.Background(), ln))
}

func TestStopBeforeServe(t *testing.T) {
	a := New(Config{}, nil)
	require.NoError(t, a.Prepare(t.TempDir()))
	require.NoError(t, a.Stop(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	assert.NoError(t, a.Serve(context.Background(), ln))
}
