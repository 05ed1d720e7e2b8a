package engine

import (
	"context"
	"time"
)

// DefaultPollInterval is how often WaitUntil re-evaluates its condition.
const DefaultPollInterval = 100 * time.Millisecond

// Condition is a readiness predicate polled by WaitUntil. Errors are
// treated as "not ready yet".
type Condition func(ctx context.Context) (bool, error)

// WaitUntil polls cond every interval until it returns true or timeout
// elapses. It reports whether the condition was met. The only error it
// returns is ctx's, when the parent context is done; a timeout is not an
// error; callers proceed with whatever state the page is in.
func WaitUntil(ctx context.Context, timeout, interval time.Duration, cond Condition) (bool, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ok, err := cond(ctx); err == nil && ok {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.C:
			return false, nil
		case <-ticker.C:
		}
	}
}

// Sleep pauses for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
