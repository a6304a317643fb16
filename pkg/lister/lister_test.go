package lister

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(entries []DirectoryEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestList_DirectoriesFirstCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"beta", "Alpha", "gamma"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, d), 0755))
	}
	for _, f := range []string{"b.txt", "A.txt", "c.TXT", "Zed"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte(f), 0644))
	}

	entries := New(nil).List(context.Background(), dir)

	assert.Equal(t, []string{"Alpha", "beta", "gamma", "A.txt", "b.txt", "c.TXT", "Zed"}, names(entries))
	for i, e := range entries {
		assert.Equal(t, i < 3, e.IsDir, e.Name)
		assert.Equal(t, filepath.Join(dir, e.Name), e.Path)
		assert.False(t, e.Restricted)
	}
	assert.False(t, entries[0].HasSize())
	assert.Equal(t, int64(len("A.txt")), entries[3].Size)
}

func TestList_IsPermutationOfEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	dir := "/data"
	want := []string{"x", "Y", "z.bin", "a.BIN", "M"}
	require.NoError(t, fs.MkdirAll(filepath.Join(dir, "x"), 0755))
	require.NoError(t, fs.MkdirAll(filepath.Join(dir, "M"), 0755))
	for _, f := range []string{"Y", "z.bin", "a.BIN"} {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, f), nil, 0644))
	}

	entries := New(fs).List(context.Background(), dir)
	assert.ElementsMatch(t, want, names(entries))
	assert.Equal(t, []string{"M", "x", "a.BIN", "Y", "z.bin"}, names(entries))
}

func TestList_OneLevelOnly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b", "c"), 0755))

	entries := New(nil).List(context.Background(), dir)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Name)
}

func TestList_SymlinkToDirectoryIsDirectory(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	dir := t.TempDir()
	target := filepath.Join(dir, "real")
	require.NoError(t, os.Mkdir(target, 0755))
	require.NoError(t, os.Symlink(target, filepath.Join(dir, "link")))

	entries := New(nil).List(context.Background(), dir)
	require.Len(t, entries, 2)
	assert.Equal(t, "link", entries[0].Name)
	assert.True(t, entries[0].IsDir)
}

func TestList_PermissionDeniedReturnsSentinel(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for this user")
	}
	dir := filepath.Join(t.TempDir(), "locked")
	require.NoError(t, os.Mkdir(dir, 0000))
	defer func() { _ = os.Chmod(dir, 0755) }()

	entries := New(nil).List(context.Background(), dir)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Restricted)
	assert.Equal(t, PermissionDeniedName, entries[0].Name)
}

func TestList_MissingDirectoryReturnsSentinel(t *testing.T) {
	entries := New(afero.NewMemMapFs()).List(context.Background(), "/missing")
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Restricted)
	assert.Equal(t, UnreadableName, entries[0].Name)
}

func TestList_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Empty(t, New(nil).List(ctx, t.TempDir()))
}

func TestSort_TiesAreDeterministic(t *testing.T) {
	entries := []DirectoryEntry{{Name: "b"}, {Name: "B"}, {Name: "a", IsDir: true}}
	Sort(entries)
	assert.Equal(t, []string{"a", "B", "b"}, names(entries))
}
