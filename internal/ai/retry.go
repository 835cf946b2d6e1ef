package ai

import (
	"context"
	"time"
)

// RetryConfig controls retries of transient failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// BackoffBase is the wait before the first retry.
	BackoffBase time.Duration
	// BackoffMultiplier grows the wait on each retry.
	BackoffMultiplier float64
	// MaxBackoff caps the wait.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns the retry defaults for model calls.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       3,
		BackoffBase:       time.Second,
		BackoffMultiplier: 2.0,
		MaxBackoff:        15 * time.Second,
	}
}

// retry runs fn until it succeeds, returns a non-transient error, or the
// attempts run out. It returns the number of attempts made.
func retry(ctx context.Context, cfg RetryConfig, fn func(context.Context) error) (int, error) {
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := cfg.BackoffBase

	var err error
	for i := 1; i <= attempts; i++ {
		err = fn(ctx)
		if err == nil || !IsTransient(err) || i == attempts {
			return i, err
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return i, ctx.Err()
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
		if cfg.MaxBackoff > 0 && backoff > cfg.MaxBackoff {
			backoff = cfg.MaxBackoff
		}
	}
	return attempts, err
}
