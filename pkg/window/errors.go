package window

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConnectionError reports a session to the windowing system or its idle
// extension that could not be established or queried. It is recoverable by
// resetting the probe.
type ConnectionError struct {
	Backend string
	Op      string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Backend, e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ResourceReleaseError reports a failure while disconnecting a probe. It is
// logged by callers and never propagated.
type ResourceReleaseError struct {
	Backend string
	Err     error
}

func (e *ResourceReleaseError) Error() string {
	return fmt.Sprintf("%s release: %v", e.Backend, e.Err)
}

func (e *ResourceReleaseError) Unwrap() error { return e.Err }

// ErrNotConnected is returned by queries issued before Connect or after
// Disconnect.
var ErrNotConnected = errors.New("not connected")

// NewConnectionError builds a ConnectionError, keeping a stack trace on the
// wrapped cause.
func NewConnectionError(backend, op string, err error) *ConnectionError {
	return &ConnectionError{Backend: backend, Op: op, Err: errors.WithStack(err)}
}

// IsConnectionError reports whether err carries a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
