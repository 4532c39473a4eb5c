package cache

import (
	"context"
	"errors"
	"time"

	"github.com/matzehuels/mysterygraph/pkg/httputil"
)

// ErrBackend marks failures talking to a remote cache backend.
var ErrBackend = errors.New("cache backend error")

// Retryable marks a transient backend error for [RetryWithBackoff].
func Retryable(err error) error { return httputil.Retryable(err) }

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool { return httputil.IsRetryable(err) }

// retryDelay is the first backoff delay; tests shorten it.
var retryDelay = 100 * time.Millisecond

// RetryWithBackoff gives Redis operations three attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return httputil.Retry(ctx, httputil.Backoff{Attempts: 3, Delay: retryDelay}, fn)
}
