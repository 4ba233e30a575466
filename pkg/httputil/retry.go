package httputil

import (
	"context"
	"errors"
	"time"
)

// MaxDelay caps the pause between two attempts.
const MaxDelay = 30 * time.Second

// RetryableError marks a transient failure, such as a reset connection or a
// 5xx from the mod site.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Retry calls fn until it succeeds, fails with an error that is not
// [IsRetryable], or has run attempts times (at least once). The pause
// starts at delay and doubles up to [MaxDelay]. Cancelling ctx during a
// pause returns ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	for i := 1; ; i++ {
		err := fn()
		if err == nil || !IsRetryable(err) || i == attempts {
			return err
		}

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay = nextDelay(delay)
	}
}

func nextDelay(d time.Duration) time.Duration {
	return min(2*d, MaxDelay)
}
