package httputil

import (
	"context"
	"errors"
	"time"
)

// Backoff is a retry schedule: at most Attempts calls, waiting Delay after
// the first failure and twice as long after each one that follows.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// RetryableError marks a transient failure, such as a reset connection or a
// 5xx response, that is worth another attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil error stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Retry calls fn until it succeeds, returns an error not marked with
// [Retryable], or the schedule runs out. fn always runs at least once.
// A cancelled ctx ends the wait between attempts with ctx.Err().
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	wait := b.Delay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt >= b.Attempts {
			return err
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
	}
}
