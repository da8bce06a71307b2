package library

import "errors"

var (
	// ErrNotFound indicates the requested asset doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicate indicates a unique constraint violation.
	ErrDuplicate = errors.New("duplicate entry")

	// ErrConstraint indicates a check constraint violation.
	ErrConstraint = errors.New("constraint violation")

	// ErrPermissionDenied indicates the library root cannot be read or written.
	// It is surfaced to the caller unchanged and never retried.
	ErrPermissionDenied = errors.New("library permission denied")

	// ErrUnsupportedMedia indicates a file is neither a known image nor video.
	ErrUnsupportedMedia = errors.New("unsupported media type")
)
