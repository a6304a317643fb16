// Package registry enumerates the top-level roots a client may browse.
//
// On POSIX hosts there is exactly one root, "/". On Windows every logical
// drive is a root. The platform variant is chosen at build time; List
// re-queries the host on every call so newly mounted volumes show up without
// a restart.
package registry

import (
	"path/filepath"

	"github.com/marmos91/rootshare/internal/logger"
)

// RootEntry is one addressable top-level directory.
type RootEntry struct {
	// Label is the display name ("/", "C:").
	Label string `json:"label"`

	// Path is the absolute path of the root ("/", `C:\`).
	Path string `json:"path"`
}

// Registry lists roots. The zero value is not usable; use New or NewWithRoot.
//
// A Registry holds no mutable state and is safe for concurrent use.
type Registry struct {
	override  string
	enumerate func() ([]RootEntry, error)
}

// New returns a Registry backed by the host's volume enumeration.
func New() *Registry {
	return &Registry{enumerate: systemRoots}
}

// NewWithRoot returns a Registry that exposes a single configured directory
// instead of the host volumes. An empty path behaves like New.
func NewWithRoot(path string) *Registry {
	if path == "" {
		return New()
	}
	return &Registry{override: filepath.Clean(path), enumerate: systemRoots}
}

// Override returns the configured root directory, or "" when the registry
// exposes the host volumes.
func (r *Registry) Override() string {
	return r.override
}

// List returns the current roots in display order. It never returns an empty
// slice: on enumeration failure a synthetic fallback root is returned.
func (r *Registry) List() []RootEntry {
	if r.override != "" {
		return []RootEntry{{Label: r.override, Path: r.override}}
	}

	roots, err := r.enumerate()
	if err != nil {
		logger.Warn("Root enumeration failed, using fallback %s: %v", fallbackRoot.Path, err)
		return []RootEntry{fallbackRoot}
	}
	if len(roots) == 0 {
		return []RootEntry{fallbackRoot}
	}
	return roots
}

// Default returns the first root, which serves as the fallback for
// unresolvable client paths.
func (r *Registry) Default() RootEntry {
	return r.List()[0]
}
