package fileops

import "errors"

var (
	// ErrInvalidName is returned when an upload name has no usable final
	// path segment.
	ErrInvalidName = errors.New("invalid file name")

	// ErrNotAbsolute is returned when the upload target is not an absolute
	// directory path.
	ErrNotAbsolute = errors.New("target directory must be an absolute path")

	// ErrContainment is returned when the write path would leave the target
	// directory or the exposed root.
	ErrContainment = errors.New("path escapes the permitted directory")

	// ErrTooLarge is returned when an upload exceeds the configured limit.
	ErrTooLarge = errors.New("upload exceeds size limit")

	// ErrNotFound is returned by Fetch for anything that is not an existing
	// regular file.
	ErrNotFound = errors.New("file not found")
)
