package gemini

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/koopa0/secondbrain/internal/log"
)

// RetryPolicy bounds the shared retry-with-backoff wrapper. The policy
// applies uniformly to generation and embedding calls; both hit the
// same provider and share its failure modes.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts uint64

	// InitialDelay is the wait after the first failure; it doubles on
	// each subsequent retry.
	InitialDelay time.Duration
}

// DefaultRetryPolicy retries up to 3 attempts total with delays of
// 1s then 2s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialDelay: time.Second}
}

// Retry runs op, retrying only on failures that Retryable reports as
// transient (429 rate limiting, 503 unavailability). Any other failure
// returns immediately; exhausting the attempt budget returns the last
// failure. Delays double from InitialDelay with no jitter, keeping the
// schedule deterministic.
func Retry[T any](ctx context.Context, logger log.Logger, policy RetryPolicy, op func() (T, error)) (T, error) {
	if policy.MaxAttempts == 0 {
		policy = DefaultRetryPolicy()
	}
	if logger == nil {
		logger = log.NewNop()
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = policy.InitialDelay
	eb.Multiplier = 2
	eb.RandomizationFactor = 0
	eb.MaxInterval = 5 * time.Minute
	eb.MaxElapsedTime = 0
	eb.Reset()

	bo := backoff.WithContext(backoff.WithMaxRetries(eb, policy.MaxAttempts-1), ctx)

	attempt := 0
	return backoff.RetryNotifyWithData(func() (T, error) {
		attempt++
		v, err := op()
		if err != nil && !Retryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, bo, func(err error, delay time.Duration) {
		logger.Warn("provider busy, backing off",
			"attempt", attempt, "delay", delay, "error", err)
	})
}
