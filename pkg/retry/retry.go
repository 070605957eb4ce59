// Package retry runs operations with bounded retries and pluggable backoff.
// The dispatcher drives it with the taxonomy's retryability rules; retries
// are bounded by attempt count and per-attempt sleep, never by an overall
// deadline; callers wanting one pass a deadline context.
package retry

import (
	"context"
	"time"

	errs "igclient/pkg/errors"
	"igclient/pkg/logger"
	"igclient/pkg/ratelimit"
)

// Operation is a unit of work that may need retrying.
type Operation func() error

// Config holds retry configuration.
type Config struct {
	// MaxAttempts caps total attempts (first try included). Zero or one
	// means no retries.
	MaxAttempts int
	Backoff     BackoffStrategy
	// RetryIf decides whether an error is worth another attempt.
	RetryIf func(error) bool
	// OnRetry is called before each retry sleep.
	OnRetry func(attempt int, err error, delay time.Duration)
	Logger  logger.Logger
}

// DefaultConfig retries twice more with exponential backoff on anything the
// taxonomy deems retryable.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Backoff:     DefaultExponentialBackoff(),
		RetryIf:     errs.IsRetryable,
		Logger:      logger.GetLogger(),
	}
}

// Do executes op, retrying per cfg. Sleeps are context-cancellable.
func Do(ctx context.Context, op Operation, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = errs.IsRetryable
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := op()
		if err == nil {
			if attempt > 1 && cfg.Logger != nil {
				cfg.Logger.DebugWithFields("operation succeeded after retry", map[string]interface{}{
					"attempt": attempt,
				})
			}
			return nil
		}
		lastErr = err
		if !retryIf(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}
		delay := time.Duration(0)
		if cfg.Backoff != nil {
			delay = cfg.Backoff.NextDelay(attempt)
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, delay)
		}
		if cfg.Logger != nil {
			cfg.Logger.WarnWithFields("retrying operation", map[string]interface{}{
				"attempt":      attempt,
				"max_attempts": maxAttempts,
				"delay_ms":     delay.Milliseconds(),
				"error":        err.Error(),
			})
		}
		if err := ratelimit.Sleep(ctx, delay); err != nil {
			return err
		}
	}
	return lastErr
}

// DoWithResult executes an operation returning a value, retrying per cfg.
func DoWithResult[T any](ctx context.Context, op func() (T, error), cfg *Config) (T, error) {
	var result T
	err := Do(ctx, func() error {
		var opErr error
		result, opErr = op()
		return opErr
	}, cfg)
	return result, err
}
