package ai

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy is a bounded-retry strategy with jittered exponential backoff,
// applied only to overload-class failures. Attempts are strictly sequential:
// a retry never starts before the previous attempt's delay has elapsed.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the backoff unit. The delay before retry i is
	// BaseDelay * 2^(i-1) plus up to MaxJitter of random noise.
	BaseDelay time.Duration

	// MaxJitter bounds the random component added to every delay.
	MaxJitter time.Duration

	// Sleep is the suspension primitive. Overridable in tests to observe
	// delays without waiting them out.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy mirrors the production backoff settings: 3 attempts,
// 1s base delay, up to 1s of jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxJitter:   time.Second,
	}
}

// Do runs fn under the policy. A failed attempt is retried only when
// IsOverloaded classifies the error as transient; any other error, or
// exhausting the attempts, surfaces the last error.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay << uint(attempt-1)
			if p.MaxJitter > 0 {
				delay += time.Duration(rand.Int63n(int64(p.MaxJitter)))
			}
			if err := sleep(ctx, delay); err != nil {
				return "", err
			}
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsOverloaded(err) {
			break
		}
	}
	return "", lastErr
}

// sleepContext waits for the duration or the context, whichever ends first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
