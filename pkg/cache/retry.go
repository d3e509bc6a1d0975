package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned when a networked backend cannot be reached.
var ErrUnavailable = errors.New("cache unavailable")

// transientError marks a failure worth retrying.
type transientError struct{ err error }

func (e transientError) Error() string { return e.err.Error() }
func (e transientError) Unwrap() error { return e.err }

// Retryable marks err as transient. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return transientError{err}
}

// IsRetryable reports whether err, or an error it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var t transientError
	return errors.As(err, &t)
}

// Backoff is a retry schedule: Attempts calls, waiting Base before the
// second and doubling after that.
type Backoff struct {
	Attempts int
	Base     time.Duration
}

// DefaultBackoff is the schedule used by [RetryWithBackoff].
var DefaultBackoff = Backoff{Attempts: 3, Base: 200 * time.Millisecond}

// Retry calls fn until it succeeds, returns an error not marked
// [Retryable], or the attempts run out. It returns ctx.Err() if ctx ends
// while waiting.
func (b Backoff) Retry(ctx context.Context, fn func() error) error {
	var err error
	for i := range max(b.Attempts, 1) {
		if i > 0 {
			t := time.NewTimer(b.Base << (i - 1))
			select {
			case <-ctx.Done():
				t.Stop()
				return ctx.Err()
			case <-t.C:
			}
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

// RetryWithBackoff retries fn on [DefaultBackoff]. Stores use it for
// transient network failures.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Retry(ctx, fn)
}
