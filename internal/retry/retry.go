// Package retry repeats startup operations such as connecting to a state
// backend that may come up after the monitor. Alert delivery never goes
// through here; a failed send is simply tried again on the next cycle.
package retry

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Func defines the function signature for a retryable operation.
type Func func(ctx context.Context) error

// Execute runs op until it succeeds, the attempts are used up or ctx is
// done. The wait doubles after every failure, capped at MaxInterval.
func Execute(ctx context.Context, cfg *Config, logger *zap.Logger, op Func) error {
	if cfg == nil {
		return op(ctx)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid retry configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	interval := cfg.Interval
	var lastErr error
	for i := 1; i <= cfg.Attempts; i++ {
		if lastErr = op(ctx); lastErr == nil {
			return nil
		}
		if i == cfg.Attempts {
			break
		}

		logger.Warn("Attempt failed, retrying",
			zap.Int("attempt", i),
			zap.Int("attempts", cfg.Attempts),
			zap.Duration("wait", interval),
			zap.Error(lastErr))

		select {
		case <-ctx.Done():
			return fmt.Errorf("retry aborted: %w", ctx.Err())
		case <-time.After(interval):
		}

		interval *= 2
		if cfg.MaxInterval > 0 && interval > cfg.MaxInterval {
			interval = cfg.MaxInterval
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", cfg.Attempts, lastErr)
}
