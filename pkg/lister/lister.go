// Package lister produces one-level, sorted directory listings.
package lister

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/marmos91/rootshare/internal/logger"
	"github.com/spf13/afero"
)

const (
	// PermissionDeniedName is the name of the sentinel entry returned when the
	// directory cannot be read for lack of permission.
	PermissionDeniedName = "Permission denied"

	// UnreadableName is the name of the sentinel entry returned for any other
	// read failure.
	UnreadableName = "Directory could not be read"
)

// DirectoryEntry describes one immediate child of a listed directory.
type DirectoryEntry struct {
	Name  string
	Path  string
	IsDir bool

	// Size is the file size in bytes, or -1 for directories and non-regular
	// files.
	Size int64

	// Restricted marks the sentinel entry returned instead of an error.
	Restricted bool
}

// HasSize reports whether Size carries a value.
func (e DirectoryEntry) HasSize() bool {
	return e.Size >= 0
}

// Lister reads directories from a filesystem. Safe for concurrent use.
type Lister struct {
	fs afero.Fs
}

// New creates a Lister over fs. A nil fs means the host filesystem.
func New(fs afero.Fs) *Lister {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Lister{fs: fs}
}

// List returns the immediate children of dir, directories first, each group
// in ascending case-insensitive name order.
//
// List never returns an error. When dir cannot be read a single Restricted
// sentinel entry is returned so callers can render a message instead.
func (l *Lister) List(ctx context.Context, dir string) []DirectoryEntry {
	if ctx.Err() != nil {
		return nil
	}

	infos, err := afero.ReadDir(l.fs, dir)
	if err != nil {
		return []DirectoryEntry{sentinel(dir, err)}
	}

	entries := make([]DirectoryEntry, 0, len(infos))
	for _, info := range infos {
		if ctx.Err() != nil {
			logger.Debug("Listing of %s cancelled after %d entries", dir, len(entries))
			return nil
		}
		entries = append(entries, l.entry(dir, info))
	}

	Sort(entries)
	return entries
}

// entry converts a FileInfo, following symlinks so that a link to a
// directory is listed as a directory.
func (l *Lister) entry(dir string, info os.FileInfo) DirectoryEntry {
	path := filepath.Join(dir, info.Name())

	if info.Mode()&os.ModeSymlink != 0 {
		if target, err := l.fs.Stat(path); err == nil {
			info = target
		}
	}

	e := DirectoryEntry{
		Name:  info.Name(),
		Path:  path,
		IsDir: info.IsDir(),
		Size:  -1,
	}
	if info.Mode().IsRegular() {
		e.Size = info.Size()
	}
	// Stat on a symlink reports the target's name; keep the link's own.
	e.Name = filepath.Base(path)
	return e
}

func sentinel(dir string, err error) DirectoryEntry {
	name := UnreadableName
	if errors.Is(err, os.ErrPermission) {
		name = PermissionDeniedName
		logger.Debug("Permission denied listing %s", dir)
	} else {
		logger.Warn("Failed to list %s: %v", dir, err)
	}
	return DirectoryEntry{Name: name, Path: dir, Size: -1, Restricted: true}
}

// Sort orders entries directories first, then by case-insensitive name.
// Names equal ignoring case fall back to byte order for a stable result.
func Sort(entries []DirectoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir != b.IsDir {
			return a.IsDir
		}
		la, lb := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if la != lb {
			return la < lb
		}
		return a.Name < b.Name
	})
}
