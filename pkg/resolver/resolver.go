// Package resolver turns untrusted client path strings into validated,
// absolute, existing filesystem paths.
//
// Resolution never fails visibly: any input that is empty, relative, missing
// on disk or (when confinement is enabled) outside the root degrades to the
// fallback root.
package resolver

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ResolvedPath is the outcome of one resolution.
type ResolvedPath struct {
	// Raw is the client input before decoding.
	Raw string

	// Path is always an existing absolute path.
	Path string

	// Valid is false when Path is the fallback substituted for bad input.
	Valid bool

	// Parent is the direct ancestor of Path, or "" when Path is terminal
	// (a volume root, or the confinement root).
	Parent string
}

// HasParent reports whether "go up" navigation is possible.
func (p ResolvedPath) HasParent() bool {
	return p.Parent != ""
}

// Resolver resolves client paths against a fallback root.
//
// Resolver is stateless apart from its immutable settings and is safe for
// concurrent use.
type Resolver struct {
	fs       afero.Fs
	fallback string
	confine  bool
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithConfinement rejects any path that is not inside the fallback root.
func WithConfinement() Option {
	return func(r *Resolver) { r.confine = true }
}

// WithFs overrides the filesystem used for existence checks.
func WithFs(fs afero.Fs) Option {
	return func(r *Resolver) { r.fs = fs }
}

// New creates a Resolver whose fallback is the given absolute directory.
func New(fallback string, opts ...Option) *Resolver {
	r := &Resolver{
		fs:       afero.NewOsFs(),
		fallback: filepath.Clean(fallback),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fallback returns the root substituted for invalid input.
func (r *Resolver) Fallback() string {
	return r.fallback
}

// Confined reports whether paths outside the fallback root are rejected.
func (r *Resolver) Confined() bool {
	return r.confine
}

// Resolve decodes raw and validates it. It performs no filesystem mutation.
func (r *Resolver) Resolve(raw string) ResolvedPath {
	res := ResolvedPath{Raw: raw}

	if p, ok := r.check(Decode(raw)); ok {
		res.Path = p
		res.Valid = true
	} else {
		res.Path = r.fallback
	}

	res.Parent = r.parentOf(res.Path)
	return res
}

// Allowed reports whether an already decoded absolute path lies inside the
// area this resolver exposes. Without confinement every absolute path is
// allowed.
func (r *Resolver) Allowed(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	if !r.confine {
		return true
	}
	return Contains(r.fallback, filepath.Clean(path))
}

// Exists reports whether path exists on the resolver's filesystem.
func (r *Resolver) Exists(path string) bool {
	_, err := r.fs.Stat(path)
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func (r *Resolver) IsDir(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.IsDir()
}

func (r *Resolver) check(decoded string) (string, bool) {
	if decoded == "" || !filepath.IsAbs(decoded) {
		return "", false
	}
	p := filepath.Clean(decoded)
	if !r.Allowed(p) || !r.Exists(p) {
		return "", false
	}
	return p, true
}

func (r *Resolver) parentOf(path string) string {
	if IsVolumeRoot(path) {
		return ""
	}
	if r.confine && path == r.fallback {
		return ""
	}
	return filepath.Dir(path)
}

// Decode percent-decodes a client path. Malformed escapes are kept literally.
func Decode(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// IsVolumeRoot reports whether path is the root of its own volume ("/",
// `C:\`, `\\host\share\`).
func IsVolumeRoot(path string) bool {
	p := filepath.Clean(path)
	vol := filepath.VolumeName(p)
	return p == vol+string(filepath.Separator)
}

// Contains reports whether target is root itself or lexically inside it.
// Both arguments must be absolute. Symlinks are not evaluated.
func Contains(root, target string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(target))
	if err != nil {
		return false
	}
	if filepath.IsAbs(rel) {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
