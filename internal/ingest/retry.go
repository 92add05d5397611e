package ingest

import (
	"context"
	"time"
)

// RetryPolicy governs how page fetches are retried on transient failures.
// The same policy is applied uniformly to every upstream source.
type RetryPolicy struct {
	MaxAttempts int           // total attempts, including the first
	Delay       time.Duration // sleep between attempts
}

// DefaultRetryPolicy matches the upstream sources' tolerance: three attempts
// with a two second pause between them.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}

// Do runs fn until it succeeds, fails permanently, or attempts are exhausted.
// Permanent errors are returned immediately without further attempts.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	return err
}
