package storage

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy bounds retries of a journal write. Backoff doubles after every
// failed attempt.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Do runs fn until it succeeds, the policy is exhausted or ctx is done.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	retries := max(p.MaxRetries, 0)
	delay := p.Backoff
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	var err error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
			delay *= 2
		}
		if err = fn(ctx); err == nil {
			return nil
		}
	}
	if retries == 0 {
		return err
	}
	return fmt.Errorf("after %d attempts: %w", retries+1, err)
}
