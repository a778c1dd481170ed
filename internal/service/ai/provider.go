package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Provider is the remote generative model capability: one asynchronous
// prompt-to-text call that may fail. Keeping it this narrow lets the
// orchestrator run against a fake in tests.
type Provider interface {
	// GenerateText sends a prompt to the model and returns the raw response.
	GenerateText(ctx context.Context, prompt string) (string, error)

	// Name returns the provider name for logging and provenance tags.
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// APIError is a remote-service failure with an optional HTTP-style status.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model API error (status %d): %s", e.StatusCode, e.Message)
	}
	return "model API error: " + e.Message
}

// IsOverloaded reports whether an error looks like a transient overload
// failure: HTTP 503 or a message mentioning overload. Only these are worth
// retrying; anything else fails fast.
func IsOverloaded(err error) bool {
	if err == nil {
		return false
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == 503 {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "overloaded") || strings.Contains(msg, "503")
}
