package userdata

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrDestinationExists is returned by Move when the destination exists and
	// overwrite is disabled.
	ErrDestinationExists = errors.New("destination already exists")
	// ErrDestinationIsDir is returned by Move when the final target is an
	// existing directory, which a move never replaces.
	ErrDestinationIsDir = errors.New("destination is a directory")
)

// ResolveError is a path resolution failure. It carries the HTTP status and a
// client-facing reason so callers can forward it unchanged.
type ResolveError struct {
	Status int
	Reason string
	// Path is the offending request path. It is not part of the client response.
	Path string
}

func (e *ResolveError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s (%d): %s", e.Reason, e.Status, e.Path)
	}
	return fmt.Sprintf("%s (%d)", e.Reason, e.Status)
}

func badRequest(reason, path string) *ResolveError {
	return &ResolveError{Status: http.StatusBadRequest, Reason: reason, Path: path}
}

func forbidden(reason, path string) *ResolveError {
	return &ResolveError{Status: http.StatusForbidden, Reason: reason, Path: path}
}

func notFound(reason, path string) *ResolveError {
	return &ResolveError{Status: http.StatusNotFound, Reason: reason, Path: path}
}

// AsResolveError reports whether err is a ResolveError and returns it.
func AsResolveError(err error) (*ResolveError, bool) {
	var resolveErr *ResolveError
	if errors.As(err, &resolveErr) {
		return resolveErr, true
	}
	return nil, false
}
