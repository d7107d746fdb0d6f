package gemini_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koopa0/secondbrain/internal/gemini"
	"github.com/koopa0/secondbrain/internal/log"
)

// testPolicy keeps backoff delays short enough for unit tests while
// preserving the doubling schedule.
var testPolicy = gemini.RetryPolicy{MaxAttempts: 3, InitialDelay: 10 * time.Millisecond}

func TestRetrySucceedsAfterRateLimits(t *testing.T) {
	calls := 0
	start := time.Now()

	got, err := gemini.Retry(context.Background(), log.NewNop(), testPolicy, func() (string, error) {
		calls++
		if calls < 3 {
			return "", fmt.Errorf("embed: %w", gemini.ErrRateLimited)
		}
		return "answer", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	assert.Equal(t, 3, calls)

	// Delays double: 10ms after attempt 1, 20ms after attempt 2.
	elapsed := time.Since(start)
	assert.GreaterOrEqual(t, elapsed, 30*time.Millisecond)
}

func TestRetryNonRetryableFailsImmediately(t *testing.T) {
	calls := 0
	wantErr := errors.New("invalid request")

	_, err := gemini.Retry(context.Background(), log.NewNop(), testPolicy, func() (int, error) {
		calls++
		return 0, wantErr
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls, "non-retryable errors must not be retried")
}

func TestRetryPlainUnavailableFailsImmediately(t *testing.T) {
	// ErrUnavailable without the 429/503 specialization is not
	// retryable: a malformed response will not fix itself.
	calls := 0

	_, err := gemini.Retry(context.Background(), log.NewNop(), testPolicy, func() (int, error) {
		calls++
		return 0, gemini.ErrUnavailable
	})

	require.ErrorIs(t, err, gemini.ErrUnavailable)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustionReturnsLastError(t *testing.T) {
	calls := 0

	_, err := gemini.Retry(context.Background(), log.NewNop(), testPolicy, func() (string, error) {
		calls++
		return "", fmt.Errorf("attempt %d: %w", calls, gemini.ErrOverloaded)
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, gemini.ErrOverloaded)
	assert.Contains(t, err.Error(), "attempt 3")
	assert.Equal(t, 3, calls)
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	_, err := gemini.Retry(ctx, log.NewNop(), gemini.RetryPolicy{MaxAttempts: 3, InitialDelay: time.Hour}, func() (string, error) {
		calls++
		return "", gemini.ErrRateLimited
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "cancellation must stop the backoff wait")
}

func TestRetryZeroPolicyUsesDefault(t *testing.T) {
	got, err := gemini.Retry(context.Background(), log.NewNop(), gemini.RetryPolicy{}, func() (string, error) {
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
}
