package provider

import (
	"context"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

// LocalProvider stands in for an on-premise model that is not available yet.
// Every call fails so the Translator serves its fallback result.
type LocalProvider struct{}

// NewLocalProvider creates a new local provider.
func NewLocalProvider() *LocalProvider {
	return &LocalProvider{}
}

// Name implements Provider.
func (p *LocalProvider) Name() string {
	return NameLocal
}

// Translate implements Provider.
func (p *LocalProvider) Translate(context.Context, Request) (Response, error) {
	return Response{}, &queryfarmer.ProviderError{
		Provider: NameLocal,
		Message:  "local translation model not available",
	}
}

// Verify LocalProvider implements Provider
var _ Provider = (*LocalProvider)(nil)
