package docker

import (
	"context"
	"errors"
	"strings"

	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

// ErrorKind buckets engine failures for banner wording. The taxonomy is
// inherited from the engine: the dashboard never invents failure modes of
// its own.
type ErrorKind int

const (
	// ErrUnknown covers anything the classifier does not recognize.
	ErrUnknown ErrorKind = iota
	// ErrNotFound means the object id went stale between render and action.
	ErrNotFound
	// ErrConflict means the engine refused the operation in the object's
	// current state, e.g. removing a running container without force.
	ErrConflict
	// ErrPermission means the socket rejected the caller.
	ErrPermission
	// ErrUnavailable means the engine could not be reached at all.
	ErrUnavailable
)

// Classify maps an engine error onto an ErrorKind.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrUnknown
	case errdefs.IsNotFound(err):
		return ErrNotFound
	case errdefs.IsConflict(err):
		return ErrConflict
	case errdefs.IsUnauthorized(err) || errdefs.IsForbidden(err):
		return ErrPermission
	case strings.Contains(err.Error(), "permission denied"):
		// socket-level EACCES arrives as a plain transport error
		return ErrPermission
	case errdefs.IsUnavailable(err),
		client.IsErrConnectionFailed(err),
		strings.Contains(err.Error(), "Cannot connect to the Docker daemon"),
		errors.Is(err, context.DeadlineExceeded):
		return ErrUnavailable
	default:
		return ErrUnknown
	}
}

// Unreachable reports whether the error indicates the engine itself is
// down or unreachable, as opposed to a per-object failure.
func Unreachable(err error) bool {
	if err == nil {
		return false
	}
	k := Classify(err)
	return k == ErrUnavailable || k == ErrPermission
}
