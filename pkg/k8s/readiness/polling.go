package readiness

import (
	"context"
	"fmt"
	"time"
)

// DefaultPollInterval is the fixed interval between readiness probes. Polls
// never back off; they re-check at this cadence until the deadline passes.
const DefaultPollInterval = 5 * time.Second

// CheckFunc probes a resource once. It returns true when the resource is
// ready, false to keep polling, or a non-nil error to abort immediately.
type CheckFunc func(ctx context.Context) (bool, error)

// PollForReadiness invokes check at DefaultPollInterval until it reports
// ready, fails, or the deadline passes. The first check runs immediately.
//
// A deadline overrun returns an error wrapping ErrTimeoutExceeded so callers
// can distinguish "still not ready" from a hard failure and degrade to a
// warning where appropriate.
func PollForReadiness(ctx context.Context, deadline time.Duration, check CheckFunc) error {
	waitCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	ticker := time.NewTicker(DefaultPollInterval)
	defer ticker.Stop()

	for {
		ready, err := check(waitCtx)
		if err != nil {
			return fmt.Errorf("readiness check failed: %w", err)
		}

		if ready {
			return nil
		}

		select {
		case <-waitCtx.Done():
			return fmt.Errorf("%w after %s", ErrTimeoutExceeded, deadline)
		case <-ticker.C:
			// Poll again
		}
	}
}
