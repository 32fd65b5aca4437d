package provider

import (
	"context"
	"fmt"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

// Chain tries providers in order until one succeeds.
type Chain struct {
	providers []Provider
}

// NewChain creates a fallback chain: primary, then secondary, and so on.
func NewChain(providers ...Provider) (*Chain, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}
	return &Chain{providers: providers}, nil
}

// Name returns the name of the chain (primary provider name).
func (c *Chain) Name() string {
	return fmt.Sprintf("chain(%s)", c.providers[0].Name())
}

// Translate attempts translation with fallback to the next provider on failure.
func (c *Chain) Translate(ctx context.Context, req Request) (Response, error) {
	var lastErr error

	for i, p := range c.providers {
		resp, err := p.Translate(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = fmt.Errorf("provider %s (%d/%d) failed: %w", p.Name(), i+1, len(c.providers), err)

		if ctx.Err() != nil {
			break
		}
	}

	return Response{}, &queryfarmer.ProviderError{
		Provider:  c.Name(),
		Message:   "all providers failed",
		Cause:     lastErr,
		Retryable: queryfarmer.IsRetryable(lastErr),
	}
}

// Verify Chain implements Provider
var _ Provider = (*Chain)(nil)
