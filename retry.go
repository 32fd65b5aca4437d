package queryfarmer

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
)

// RetryConfig holds configuration for retry behavior.
type RetryConfig struct {
	MaxRetries int           // Maximum number of retry attempts
	BaseDelay  time.Duration // Initial delay between retries
	MaxDelay   time.Duration // Maximum delay between retries
}

// DefaultRetryConfig returns sensible defaults for retry behavior.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   2 * time.Second,
	}
}

// WithRetry executes fn with exponential backoff, retrying only errors
// for which IsRetryable holds.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var result T
	err := retry.Do(
		func() error {
			v, err := fn()
			if err != nil {
				return err
			}
			result = v
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(cfg.MaxRetries+1)),
		retry.Delay(cfg.BaseDelay),
		retry.MaxDelay(cfg.MaxDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.RetryIf(IsRetryable),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	// Context errors are not retryable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr.Retryable
	}

	return false
}

// RetryableProvider wraps a Provider with retry logic.
type RetryableProvider struct {
	provider Provider
	config   RetryConfig
}

// NewRetryableProvider creates a new provider with retry logic.
func NewRetryableProvider(provider Provider, cfg RetryConfig) *RetryableProvider {
	return &RetryableProvider{
		provider: provider,
		config:   cfg,
	}
}

// Translate implements Provider with retry logic.
func (p *RetryableProvider) Translate(ctx context.Context, req ProviderRequest) (ProviderResponse, error) {
	return WithRetry(ctx, p.config, func() (ProviderResponse, error) {
		return p.provider.Translate(ctx, req)
	})
}

// Name implements Provider.
func (p *RetryableProvider) Name() string {
	return p.provider.Name()
}
