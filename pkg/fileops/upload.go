package fileops

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/pkg/resolver"
	"github.com/spf13/afero"
)

// tempPrefix marks in-progress uploads inside the target directory.
const tempPrefix = ".rootshare-upload-"

// Uploader writes client files under a target directory.
type Uploader struct {
	fs       afero.Fs
	resolver *resolver.Resolver
	maxBytes int64
}

// NewUploader creates an Uploader. res decides which directories may be
// written (see resolver.Resolver.Allowed); maxBytes <= 0 means no limit.
// A nil fs means the host filesystem.
func NewUploader(fs afero.Fs, res *resolver.Resolver, maxBytes int64) *Uploader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Uploader{fs: fs, resolver: res, maxBytes: maxBytes}
}

// SanitizeName keeps only the final path segment of name. Both '/' and '\'
// count as separators regardless of the host OS.
func SanitizeName(name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)

	switch {
	case name == "", name == ".", name == "..":
		return "", ErrInvalidName
	case strings.ContainsRune(name, 0):
		return "", ErrInvalidName
	}
	return name, nil
}

// Accept stores content as targetDir/basename(fileName) and returns the final
// path with the number of bytes written.
//
// targetDir is created if absent. An existing file with the same name is
// replaced. The content is first written to a temporary file in targetDir
// and renamed into place, so readers never see a partial file.
func (u *Uploader) Accept(ctx context.Context, targetDir, fileName string, content io.Reader) (string, int64, error) {
	if !filepath.IsAbs(targetDir) {
		return "", 0, ErrNotAbsolute
	}
	target := filepath.Clean(targetDir)

	if u.resolver != nil && !u.resolver.Allowed(target) {
		return "", 0, fmt.Errorf("%w: %s", ErrContainment, target)
	}

	name, err := SanitizeName(fileName)
	if err != nil {
		return "", 0, err
	}

	final := filepath.Clean(filepath.Join(target, name))
	if filepath.Dir(final) != target || !resolver.Contains(target, final) || final == target {
		return "", 0, fmt.Errorf("%w: %q", ErrContainment, fileName)
	}

	if err := u.fs.MkdirAll(target, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", target, err)
	}

	tmp := filepath.Join(target, tempPrefix+uuid.NewString())
	f, err := u.fs.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create %s: %w", tmp, err)
	}

	n, err := u.copy(ctx, f, content)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("failed to close %s: %w", tmp, cerr)
	}
	if err != nil {
		if rerr := u.fs.Remove(tmp); rerr != nil {
			logger.Warn("Failed to remove partial upload %s: %v", tmp, rerr)
		}
		return "", 0, err
	}

	if err := u.fs.Rename(tmp, final); err != nil {
		_ = u.fs.Remove(tmp)
		return "", 0, fmt.Errorf("failed to move upload into %s: %w", final, err)
	}

	logger.Debug("Stored upload %s (%d bytes)", final, n)
	return final, n, nil
}

func (u *Uploader) copy(ctx context.Context, dst io.Writer, src io.Reader) (int64, error) {
	src = &ctxReader{ctx: ctx, r: src}
	if u.maxBytes <= 0 {
		n, err := io.Copy(dst, src)
		if err != nil {
			return n, fmt.Errorf("failed to write upload: %w", err)
		}
		return n, nil
	}

	n, err := io.Copy(dst, io.LimitReader(src, u.maxBytes+1))
	if err != nil {
		return n, fmt.Errorf("failed to write upload: %w", err)
	}
	if n > u.maxBytes {
		return n, ErrTooLarge
	}
	return n, nil
}

// ctxReader stops a copy once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
