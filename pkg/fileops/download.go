package fileops

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/marmos91/rootshare/pkg/resolver"
	"github.com/spf13/afero"
)

// Download is an open regular file ready to be streamed. The caller must
// Close it.
type Download struct {
	File afero.File

	// Name is the suggested download name (the file's base name).
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Close releases the underlying file.
func (d *Download) Close() error {
	return d.File.Close()
}

// Downloader opens files for streaming.
type Downloader struct {
	fs       afero.Fs
	resolver *resolver.Resolver
}

// NewDownloader creates a Downloader. A nil fs means the host filesystem.
func NewDownloader(fs afero.Fs, res *resolver.Resolver) *Downloader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Downloader{fs: fs, resolver: res}
}

// Fetch decodes and resolves raw and opens it. Anything other than an
// existing regular file inside the exposed area yields ErrNotFound.
func (d *Downloader) Fetch(raw string) (*Download, error) {
	res := d.resolver.Resolve(raw)
	if !res.Valid {
		return nil, ErrNotFound
	}

	info, err := d.fs.Stat(res.Path)
	if err != nil || !info.Mode().IsRegular() {
		return nil, ErrNotFound
	}

	f, err := d.fs.Open(res.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	return &Download{
		File:    f,
		Name:    filepath.Base(res.Path),
		Path:    res.Path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}
