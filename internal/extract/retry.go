package extract

import (
	"context"
	"time"
)

// RetryPolicy controls how often a review is re-submitted after a rejected
// response. The zero value is usable and behaves like a single attempt.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	// Retryable selects the errors that earn another attempt. Nil means
	// IsValidationError.
	Retryable func(error) bool
	// Sleep waits between attempts. Nil means a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns three attempts with 1s, 2s backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    8 * time.Second,
		Retryable:   IsValidationError,
		Sleep:       sleepContext,
	}
}

// Delay returns the wait after the given 1-based attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable == nil {
		return IsValidationError(err)
	}
	return p.Retryable(err)
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. It returns the number of attempts made and the last
// error.
func (p RetryPolicy) Do(ctx context.Context, fn func(attempt int) error) (int, error) {
	maxAttempts := max(p.MaxAttempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(attempt)
		if err == nil {
			return attempt, nil
		}
		if !p.retryable(err) || attempt == maxAttempts {
			return attempt, err
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return attempt, serr
		}
	}
	return maxAttempts, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
