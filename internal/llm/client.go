package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// LLMClient is an interface for invoking LLM models
// This allows mocking in tests without making real API calls
type LLMClient interface {
	InvokeModel(ctx context.Context, request LLMRequest) (*LLMResponse, error)
	InvokeModelWithRetry(ctx context.Context, request LLMRequest) (*LLMResponse, error)
}

var ErrEmptyResponse = errors.New("model returned no content")

// InvokeWithRetry calls invoke until it succeeds, returns a non-retryable
// error, or the policy is exhausted. Delays grow exponentially with jitter.
func InvokeWithRetry(
	ctx context.Context,
	policy RetryPolicy,
	isRetryable func(error) bool,
	invoke func(ctx context.Context) (*LLMResponse, error),
) (*LLMResponse, error) {
	attempts := max(policy.MaxRetries, 1)
	var lastErr error

	for attempt := range attempts {
		response, err := invoke(ctx)
		if err == nil {
			return response, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return nil, fmt.Errorf("non-retryable error: %w", err)
		}
		if attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(Backoff(attempt, policy.InitialDelay, policy.MaxDelay)):
		}
	}

	return nil, fmt.Errorf("max retries %d exceeded: %w", attempts, lastErr)
}

// Backoff returns the delay before retry number attempt (0-based).
func Backoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	backoff := float64(initialDelay) * math.Pow(2, float64(attempt))
	if maxDelay > 0 && backoff > float64(maxDelay) {
		backoff = float64(maxDelay)
	}

	jitter := backoff * 0.2 * (2*rand.Float64() - 1) // +/-20%
	return time.Duration(backoff + jitter)
}
