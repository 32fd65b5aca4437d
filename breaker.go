package queryfarmer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerConfig configures the circuit breaker around a provider.
type BreakerConfig struct {
	MaxFailures  uint32        // Consecutive failures that open the circuit
	OpenTimeout  time.Duration // Time spent open before a half-open probe
	HalfOpenMax  uint32        // Requests allowed while half-open
	ResetCounter time.Duration // Closed-state counter reset interval; 0 never resets
}

// DefaultBreakerConfig returns sensible defaults for the circuit breaker.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxFailures: 5,
		OpenTimeout: 30 * time.Second,
		HalfOpenMax: 1,
	}
}

// BreakerProvider fails fast while its provider keeps failing so the
// Translator falls back without waiting out the timeout.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps provider with a circuit breaker.
func NewBreakerProvider(provider Provider, cfg BreakerConfig) *BreakerProvider {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = DefaultBreakerConfig().MaxFailures
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: cfg.HalfOpenMax,
		Interval:    cfg.ResetCounter,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("provider circuit state changed", "provider", name, "from", from.String(), "to", to.String())
		},
	})
	return &BreakerProvider{provider: provider, cb: cb}
}

// Translate implements Provider through the circuit breaker.
func (p *BreakerProvider) Translate(ctx context.Context, req ProviderRequest) (ProviderResponse, error) {
	out, err := p.cb.Execute(func() (interface{}, error) {
		return p.provider.Translate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return ProviderResponse{}, &ProviderError{
				Provider: p.provider.Name(),
				Message:  "circuit open",
				Cause:    err,
			}
		}
		return ProviderResponse{}, err
	}
	return out.(ProviderResponse), nil
}

// Name implements Provider.
func (p *BreakerProvider) Name() string {
	return p.provider.Name()
}

// State returns the current breaker state.
func (p *BreakerProvider) State() gobreaker.State {
	return p.cb.State()
}
