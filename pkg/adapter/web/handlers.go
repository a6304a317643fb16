package web

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/marmos91/rootshare/internal/logger"
	"github.com/marmos91/rootshare/pkg/fileops"
)

// maxMemory is the part of a multipart body kept in memory; the rest is
// spooled to temporary files by net/http.
const maxMemory = 32 << 20

// multipartOverhead is the slack allowed on top of MaxUploadBytes for the
// form fields and part headers.
const multipartOverhead = 1 << 20

func (a *Adapter) handleBrowse(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if target, ok := a.customDir(r); ok {
			http.Redirect(w, r, browseURL(target), http.StatusSeeOther)
			return
		}
	}

	res := a.resolver.Resolve(mux.Vars(r)["path"])
	if !a.resolver.IsDir(res.Path) {
		http.Redirect(w, r, downloadURL(res.Path), http.StatusSeeOther)
		return
	}

	page := browsePage{
		Roots:     a.registry.List(),
		Current:   res.Path,
		Parent:    res.Parent,
		Entries:   a.lister.List(r.Context(), res.Path),
		Invalid:   res.Raw != "" && !res.Valid,
		Requested: res.Raw,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := browseTemplate.Execute(w, page); err != nil {
		logger.Error("HTTP render listing of %s failed: %v", res.Path, err)
	}
}

// customDir returns the directory named by the custom_dir form field when it
// is absolute, allowed and an existing directory.
func (a *Adapter) customDir(r *http.Request) (string, bool) {
	dir := strings.TrimSpace(r.PostFormValue("custom_dir"))
	if dir == "" || !filepath.IsAbs(dir) {
		return "", false
	}
	dir = filepath.Clean(dir)
	if !a.resolver.Allowed(dir) || !a.resolver.IsDir(dir) {
		logger.Debug("HTTP custom_dir %q rejected", dir)
		return "", false
	}
	return dir, true
}

func (a *Adapter) handleUpload(w http.ResponseWriter, r *http.Request) {
	if a.config.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxUploadBytes+multipartOverhead)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "invalid upload form", http.StatusBadRequest)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	targetDir := r.FormValue("current_path")
	if targetDir == "" {
		http.Error(w, "no target directory provided", http.StatusBadRequest)
		return
	}

	final, n, err := a.uploader.Accept(r.Context(), targetDir, header.Filename, file)
	if err != nil {
		status, msg := uploadErrorStatus(err)
		logger.Warn("HTTP upload of %q to %s failed: %v", header.Filename, targetDir, err)
		http.Error(w, msg, status)
		return
	}

	a.webMetrics.RecordBytesTransferred("upload", n)
	logger.Info("HTTP uploaded %s (%d bytes)", final, n)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "Uploaded %s to %s\n", filepath.Base(final), filepath.Dir(final))
}

// uploadErrorStatus maps upload failures onto HTTP status codes.
func uploadErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, fileops.ErrInvalidName):
		return http.StatusBadRequest, "invalid file name"
	case errors.Is(err, fileops.ErrNotAbsolute):
		return http.StatusBadRequest, "target directory must be absolute"
	case errors.Is(err, fileops.ErrContainment):
		return http.StatusForbidden, "target outside the shared root"
	case errors.Is(err, fileops.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "file too large"
	default:
		return http.StatusInternalServerError, "upload failed"
	}
}

func (a *Adapter) handleDownload(w http.ResponseWriter, r *http.Request) {
	dl, err := a.downloader.Fetch(mux.Vars(r)["path"])
	if err != nil {
		logger.Debug("HTTP download of %q refused: %v", mux.Vars(r)["path"], err)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer func() { _ = dl.Close() }()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": dl.Name}))

	cw := &countingWriter{ResponseWriter: w}
	http.ServeContent(cw, r, dl.Name, dl.ModTime, dl.File)
	a.webMetrics.RecordBytesTransferred("download", cw.n)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok\n")
}

// countingWriter counts body bytes written through it.
type countingWriter struct {
	http.ResponseWriter
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.ResponseWriter.Write(p)
	c.n += int64(n)
	return n, err
}
