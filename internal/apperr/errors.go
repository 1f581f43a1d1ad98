// Package apperr defines the sentinel errors shared across service layers.
package apperr

import "errors"

var (
	// ErrNotFound signals a container or item lookup miss.
	ErrNotFound = errors.New("not found")
	// ErrConflict signals an optimistic-concurrency failure: the source
	// document changed under the caller's checksum.
	ErrConflict = errors.New("conflict")
	// ErrInvalid signals a malformed request value.
	ErrInvalid = errors.New("invalid")
)
