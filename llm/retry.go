package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryableError marks an error as a transient connection or rate-limit
// signal eligible for retry. Providers that can distinguish these from
// permanent failures should wrap with this instead of a bare error.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var re *RetryableError
	if errors.As(err, &re) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, signal := range []string{"rate limit", "429", "connection reset", "timeout", "temporarily unavailable", "503"} {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}

// withRetry runs op with up to 5 attempts, exponential backoff escalating
// from a 4s floor to a 10s ceiling, stopping immediately on a non-retryable
// error.
func withRetry(ctx context.Context, op func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.Multiplier = 2.0
	bo.RandomizationFactor = 0
	bo.InitialInterval = 4 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 0

	attempts := 0
	wrapped := func() error {
		attempts++
		err := op()
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		if attempts >= 5 {
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(wrapped, backoff.WithContext(bo, ctx))
}
