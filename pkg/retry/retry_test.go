package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "igclient/pkg/errors"
	"igclient/pkg/logger"
)

func TestConstantBackoff(t *testing.T) {
	cb := &ConstantBackoff{Delay: 50 * time.Millisecond}
	assert.Equal(t, 50*time.Millisecond, cb.NextDelay(1))
	assert.Equal(t, 50*time.Millisecond, cb.NextDelay(7))
}

func TestExponentialBackoffGrowsAndCaps(t *testing.T) {
	eb := &ExponentialBackoff{
		BaseDelay:  100 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
	}
	assert.Equal(t, 100*time.Millisecond, eb.NextDelay(1))
	assert.Equal(t, 200*time.Millisecond, eb.NextDelay(2))
	assert.Equal(t, 400*time.Millisecond, eb.NextDelay(3))
	assert.Equal(t, time.Second, eb.NextDelay(10), "capped at max")
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errs.NewThrottled("429", nil)
		}
		return nil
	}, &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		Logger:      logger.NewTestLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonRetryable(t *testing.T) {
	attempts := 0
	wantErr := errs.NewNotFound("404", nil)
	err := Do(context.Background(), func() error {
		attempts++
		return wantErr
	}, &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		Logger:      logger.NewTestLogger(),
	})
	assert.Equal(t, 1, attempts, "non-retryable errors abort immediately")
	assert.ErrorIs(t, err, wantErr)
}

func TestDoExhaustsAttempts(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), func() error {
		attempts++
		return errs.NewThrottled("429", nil)
	}, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		Logger:      logger.NewTestLogger(),
	})
	assert.Equal(t, 3, attempts)
	var throttled *errs.ClientThrottledError
	assert.True(t, errors.As(err, &throttled))
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		return nil
	}, &Config{MaxAttempts: 3, Logger: logger.NewTestLogger()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts, "cancelled context prevents any attempt")
}

func TestDoCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := Do(ctx, func() error {
		attempts++
		cancel()
		return errs.NewThrottled("429", nil)
	}, &Config{
		MaxAttempts: 5,
		Backoff:     &ConstantBackoff{Delay: 10 * time.Second},
		Logger:      logger.NewTestLogger(),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDoCallsOnRetry(t *testing.T) {
	var retries []int
	_ = Do(context.Background(), func() error {
		return errs.NewThrottled("429", nil)
	}, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		OnRetry: func(attempt int, err error, delay time.Duration) {
			retries = append(retries, attempt)
		},
		Logger: logger.NewTestLogger(),
	})
	assert.Equal(t, []int{1, 2}, retries)
}

func TestDoWithResult(t *testing.T) {
	attempts := 0
	out, err := DoWithResult(context.Background(), func() (string, error) {
		attempts++
		if attempts == 1 {
			return "", errs.NewThrottled("429", nil)
		}
		return "payload", nil
	}, &Config{
		MaxAttempts: 3,
		Backoff:     &ConstantBackoff{Delay: time.Millisecond},
		Logger:      logger.NewTestLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, "payload", out)
	assert.Equal(t, 2, attempts)
}

func TestDefaultConfigUsesTaxonomy(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.True(t, cfg.RetryIf(errs.NewThrottled("429", nil)))
	assert.False(t, cfg.RetryIf(errs.NewNotFound("404", nil)))
}
