// Package provider implements the external translation backends.
//
// Every provider receives text that may contain shielding markers such as
// __URL_0__ and must return them untouched. Missing credentials produce a
// non-retryable error; throttling and server errors are retryable.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

// Provider is an alias to the main package interface for convenience.
type Provider = queryfarmer.Provider

// Request and Response are aliases to the main package types.
type (
	Request  = queryfarmer.ProviderRequest
	Response = queryfarmer.ProviderResponse
)

// Names of the built-in providers.
const (
	NameMock      = "mock"
	NameGoogle    = "google"
	NameDeepL     = "deepl"
	NameOpenAI    = "openai"
	NameAnthropic = "anthropic"
	NameGemini    = "gemini"
	NameLocal     = "local"
)

// Config selects and configures a provider.
type Config struct {
	Name    string        // One of the Name* constants; anything else selects mock
	APIKey  string        // Credential for cloud providers
	Model   string        // Model for LLM providers (optional)
	BaseURL string        // Endpoint override (optional)
	Timeout time.Duration // HTTP timeout for REST providers (default: 10s)
}

// New creates the provider named by cfg.Name. Unknown names fall back to the
// mock provider so the service still answers without credentials.
func New(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Name) {
	case NameGoogle:
		return NewGoogleProvider(GoogleConfig{APIKey: cfg.APIKey, Endpoint: cfg.BaseURL, Timeout: cfg.Timeout}), nil
	case NameDeepL:
		return NewDeepLProvider(DeepLConfig{APIKey: cfg.APIKey, Endpoint: cfg.BaseURL, Timeout: cfg.Timeout}), nil
	case NameOpenAI:
		return NewOpenAIProvider(OpenAIConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}), nil
	case NameAnthropic:
		return NewAnthropicProvider(AnthropicConfig{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}), nil
	case NameGemini:
		p, err := NewGeminiProvider(ctx, GeminiConfig{APIKey: cfg.APIKey, Model: cfg.Model, Endpoint: cfg.BaseURL})
		if err != nil {
			return nil, fmt.Errorf("create gemini provider: %w", err)
		}
		return p, nil
	case NameLocal:
		return NewLocalProvider(), nil
	default:
		return NewMockProvider(), nil
	}
}

// Names lists the providers New understands.
func Names() []string {
	return []string{NameMock, NameGoogle, NameDeepL, NameOpenAI, NameAnthropic, NameGemini, NameLocal}
}

func missingKey(provider string) error {
	return &queryfarmer.ProviderError{
		Provider:  provider,
		Message:   "API key not configured",
		Retryable: false,
	}
}

func statusError(provider string, status int, body string) error {
	return &queryfarmer.ProviderError{
		Provider:  provider,
		Message:   fmt.Sprintf("unexpected status %d: %s", status, truncate(body, 200)),
		Retryable: retryableStatus(status),
	}
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
