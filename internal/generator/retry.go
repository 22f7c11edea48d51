package generator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// retryConfig parameterizes withRetry. Priorities differ only in token
// budget; retry policy is shared.
type retryConfig struct {
	// MaxAttempts is the total attempt count (first try included).
	MaxAttempts int

	// BackoffBase is the base for exponential backoff between attempts:
	// base, 2*base, 4*base, ...
	BackoffBase time.Duration

	// AttemptTimeout bounds each attempt via a derived context. A timed-out
	// attempt's underlying call may keep running remotely; its result is
	// discarded.
	AttemptTimeout time.Duration
}

// withRetry runs fn up to cfg.MaxAttempts times with exponential backoff and
// a per-attempt timeout. The last error is propagated once attempts are
// exhausted.
func withRetry[T any](ctx context.Context, cfg retryConfig, op string, log *zap.Logger, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			backoff := cfg.BackoffBase << uint(i-1)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		attemptCtx := ctx
		cancel := context.CancelFunc(func() {})
		if cfg.AttemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.AttemptTimeout)
		}
		result, err := fn(attemptCtx)
		cancel()

		if err == nil {
			return result, nil
		}
		lastErr = err
		log.Warn("attempt failed",
			zap.String("op", op),
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", attempts),
			zap.Error(err))

		// Parent cancellation ends the retry loop immediately.
		if ctx.Err() != nil {
			break
		}
	}

	return zero, fmt.Errorf("%s: all %d attempts failed: %w", op, attempts, lastErr)
}
