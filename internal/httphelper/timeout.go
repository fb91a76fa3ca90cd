package httphelper

import (
	"context"
	"errors"
	"time"
)

// awaitWithTimeout runs op under a deadline of timeout.
//
// op receives a context that is cancelled when the deadline elapses, so the
// transport aborts the request instead of finishing it in the background;
// awaitWithTimeout returns only once op has observed that. ok is false when
// the deadline won, in which case err is nil and any partial result is
// discarded. Other errors are returned unchanged.
func awaitWithTimeout[T any](ctx context.Context, timeout time.Duration, op func(context.Context) (T, error)) (value T, ok bool, err error) {
	var zero T
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	v, err := op(opCtx)
	if err != nil {
		if isOwnDeadline(ctx, opCtx, err) {
			return zero, false, nil
		}
		return zero, false, err
	}
	if isOwnDeadline(ctx, opCtx, opCtx.Err()) {
		// op finished but ignored the deadline
		return zero, false, nil
	}
	return v, true, nil
}

// isOwnDeadline reports whether err comes from the deadline set by
// awaitWithTimeout rather than from the caller's context.
func isOwnDeadline(parent, opCtx context.Context, err error) bool {
	if err == nil || parent.Err() != nil {
		return false
	}
	// once our deadline fired, whatever op failed with is a consequence of it
	return errors.Is(opCtx.Err(), context.DeadlineExceeded)
}
