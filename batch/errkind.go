package batch

import (
	"context"
	"errors"
)

// Intentional abort signals. They propagate to the caller of Run immediately,
// are never logged as errors, and are never retried or swallowed. Callers
// signal them with errors.Is-compatible wrapping.
var (
	// ErrUserQuit indicates the user asked to stop the whole scan.
	ErrUserQuit = errors.New("user quit")
	// ErrSkipTarget indicates the current target should be abandoned.
	ErrSkipTarget = errors.New("skip target")
)

// IsAbort reports whether err is an intentional abort signal.
func IsAbort(err error) bool {
	return errors.Is(err, ErrUserQuit) || errors.Is(err, ErrSkipTarget)
}

// isCancellation reports whether err should stop the batch and be re-raised:
// intentional aborts and external interrupts, as opposed to unit failures.
func isCancellation(err error) bool {
	return IsAbort(err) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
