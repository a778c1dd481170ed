package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func overloadedErr() error {
	return &APIError{StatusCode: 503, Message: "The model is overloaded. Please try again later."}
}

func TestRetryRecoversFromOverload(t *testing.T) {
	var delays []time.Duration
	policy := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxJitter:   time.Second,
		Sleep: func(_ context.Context, d time.Duration) error {
			delays = append(delays, d)
			return nil
		},
	}

	calls := 0
	result, err := policy.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", overloadedErr()
		}
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %q, want ok", result)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(delays) != 2 {
		t.Fatalf("slept %d times, want 2", len(delays))
	}

	// Exponential base plus bounded jitter: 1s and 2s, each with < 1s noise.
	if delays[0] < time.Second || delays[0] >= 2*time.Second {
		t.Errorf("first delay = %v, want within [1s, 2s)", delays[0])
	}
	if delays[1] < 2*time.Second || delays[1] >= 3*time.Second {
		t.Errorf("second delay = %v, want within [2s, 3s)", delays[1])
	}
}

func TestRetryFailsFastOnNonOverload(t *testing.T) {
	slept := 0
	policy := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep: func(context.Context, time.Duration) error {
			slept++
			return nil
		},
	}

	calls := 0
	badRequest := &APIError{StatusCode: 400, Message: "invalid request"}
	_, err := policy.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", badRequest
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on non-overload errors)", calls)
	}
	if slept != 0 {
		t.Errorf("slept %d times, want 0", slept)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 400 {
		t.Errorf("err = %v, want the original 400", err)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}

	calls := 0
	_, err := policy.Do(context.Background(), func(context.Context) (string, error) {
		calls++
		return "", overloadedErr()
	})

	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if !IsOverloaded(err) {
		t.Errorf("err = %v, want the last overload error", err)
	}
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	policy := RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := policy.Do(ctx, func(context.Context) (string, error) {
		calls++
		cancel()
		return "", overloadedErr()
	})

	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestIsOverloaded(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"status 503", &APIError{StatusCode: 503, Message: "unavailable"}, true},
		{"overloaded message", errors.New("the model is overloaded"), true},
		{"503 in message", errors.New("rpc error: code 503"), true},
		{"bad request", &APIError{StatusCode: 400, Message: "invalid"}, false},
		{"plain error", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOverloaded(tt.err); got != tt.want {
				t.Errorf("IsOverloaded(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
