package resolver

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/marmos91/rootshare/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_FallbackOnInvalidInput(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "notes.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	r := New(root)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"relative", "some/relative/dir"},
		{"dot", "."},
		{"missing", filepath.Join(root, "does-not-exist")},
		{"encoded missing", url.PathEscape(filepath.Join(root, "nope"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(tt.raw)
			assert.False(t, res.Valid)
			assert.Equal(t, root, res.Path)
			assert.Equal(t, tt.raw, res.Raw)
		})
	}
}

func TestResolve_ValidPaths(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "A Folder")
	require.NoError(t, os.Mkdir(sub, 0755))

	r := New(root)

	res := r.Resolve(url.PathEscape(sub))
	require.True(t, res.Valid)
	assert.Equal(t, sub, res.Path)
	assert.Equal(t, root, res.Parent)

	// unencoded input and trailing separators are accepted too
	res = r.Resolve(sub + string(filepath.Separator))
	require.True(t, res.Valid)
	assert.Equal(t, sub, res.Path)
}

func TestResolve_ExistingFileIsValid(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "a.bin")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	res := New(root).Resolve(file)
	assert.True(t, res.Valid)
	assert.Equal(t, file, res.Path)
}

func TestResolve_MalformedEscapeKeptLiterally(t *testing.T) {
	root := t.TempDir()
	odd := filepath.Join(root, "100%zz")
	require.NoError(t, os.Mkdir(odd, 0755))

	res := New(root).Resolve(odd)
	assert.True(t, res.Valid)
	assert.Equal(t, odd, res.Path)
}

func TestResolve_EnumeratedRootsHaveNoParent(t *testing.T) {
	for _, root := range registry.New().List() {
		res := New(root.Path).Resolve(root.Path)
		assert.Equal(t, filepath.Clean(root.Path), res.Path)
		assert.False(t, res.HasParent(), "root %s must be terminal", root.Path)
	}
}

func TestResolve_Confinement(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "share")
	inside := filepath.Join(root, "docs")
	outside := filepath.Join(parent, "private")
	require.NoError(t, os.MkdirAll(inside, 0755))
	require.NoError(t, os.MkdirAll(outside, 0755))

	r := New(root, WithConfinement())
	assert.True(t, r.Confined())

	res := r.Resolve(inside)
	assert.True(t, res.Valid)
	assert.Equal(t, root, res.Parent)

	res = r.Resolve(outside)
	assert.False(t, res.Valid)
	assert.Equal(t, root, res.Path)

	res = r.Resolve(filepath.Join(inside, "..", "..", "private"))
	assert.False(t, res.Valid)

	res = r.Resolve(root)
	assert.True(t, res.Valid)
	assert.False(t, res.HasParent(), "confinement root must be terminal")
}

func TestResolve_UnconfinedAllowsOutsideFallback(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()

	res := New(a).Resolve(b)
	assert.True(t, res.Valid)
	assert.Equal(t, b, res.Path)
}

func TestContains(t *testing.T) {
	root := filepath.Join(string(filepath.Separator), "srv", "share")

	assert.True(t, Contains(root, root))
	assert.True(t, Contains(root, filepath.Join(root, "a", "b")))
	assert.True(t, Contains(root, filepath.Join(root, "..a")))
	assert.False(t, Contains(root, filepath.Join(root, "..")))
	assert.False(t, Contains(root, filepath.Join(root, "..", "share2")))
	assert.False(t, Contains(root, filepath.Dir(root)))
}

func TestIsVolumeRoot(t *testing.T) {
	sep := string(filepath.Separator)
	tmp := t.TempDir()

	assert.True(t, IsVolumeRoot(filepath.VolumeName(tmp)+sep))
	assert.False(t, IsVolumeRoot(tmp))
}

func TestDecode(t *testing.T) {
	assert.Equal(t, "/a b/c", Decode("/a%20b/c"))
	assert.Equal(t, "/a/b", Decode("%2Fa%2Fb"))
	assert.Equal(t, "/100%zz", Decode("/100%zz"))
	assert.Equal(t, "/a+b", Decode("/a+b"))
}
