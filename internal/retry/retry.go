// Package retry provides the shared retry-with-backoff policy applied to all
// network collaborators. Transient failures (5xx, 429, timeouts, connection
// resets) are retried with capped exponential backoff; everything else fails
// immediately.
package retry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/naga-ruthvik/certificate-verification/internal/model"
)

// Permanent wraps an error so the retry loop stops immediately.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do runs op with the configured policy. The operation is attempted at most
// cfg.MaxAttempts times; delays grow exponentially from InitialInterval up to
// MaxInterval. Context cancellation aborts between attempts.
func Do(ctx context.Context, cfg model.RetryConfig, op func() error) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.InitialInterval
	b.MaxInterval = cfg.MaxInterval
	b.RandomizationFactor = 0 // deterministic delays, capped by MaxInterval
	b.Multiplier = 2
	b.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
	return backoff.Retry(op, policy)
}

// Classify wraps err as permanent unless it looks transient, so callers can
// feed arbitrary network errors straight into Do.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) {
		return err
	}
	return backoff.Permanent(err)
}

// IsTransient reports whether an error is worth retrying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	s := strings.ToLower(err.Error())
	for _, marker := range []string{
		"timeout",
		"connection refused",
		"connection reset",
		"temporary failure",
		"status: 5",
		"status: 429",
	} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// RetryableStatus reports whether an HTTP status code indicates a transient
// server-side failure.
func RetryableStatus(status int) bool {
	return status == 429 || (status >= 500 && status < 600)
}

// Backoff returns the delay before the given attempt (0-based) under the
// configured policy. Exposed for components that pace work manually.
func Backoff(cfg model.RetryConfig, attempt int) time.Duration {
	d := cfg.InitialInterval
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= cfg.MaxInterval {
			return cfg.MaxInterval
		}
	}
	return d
}
