package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

const anthropicConfidence = 0.85

// AnthropicProvider implements Provider using the Anthropic messages API.
type AnthropicProvider struct {
	client anthropic.Client
	apiKey string
	model  string
}

// AnthropicConfig holds configuration for the Anthropic provider.
type AnthropicConfig struct {
	APIKey     string // Anthropic API key
	Model      string // Model to use (default: "claude-sonnet-4-20250514")
	BaseURL    string // Custom base URL (optional)
	MaxRetries int    // SDK-level retries (default: 0, retries are handled by the decorator)
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(cfg AnthropicConfig) *AnthropicProvider {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		apiKey: cfg.APIKey,
		model:  model,
	}
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string {
	return NameAnthropic
}

// Translate implements Provider.
func (p *AnthropicProvider) Translate(ctx context.Context, req Request) (Response, error) {
	if p.apiKey == "" {
		return Response{}, missingKey(NameAnthropic)
	}

	prompt := SystemPrompt + "\n\n" + UserPrompt(req)

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		retryable := false
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			retryable = retryableStatus(apiErr.StatusCode)
		} else {
			retryable = ctx.Err() == nil
		}
		return Response{}, &queryfarmer.ProviderError{
			Provider:  NameAnthropic,
			Message:   "Anthropic API call failed",
			Cause:     err,
			Retryable: retryable,
		}
	}

	var b strings.Builder
	for _, block := range message.Content {
		b.WriteString(block.Text)
	}
	if b.Len() == 0 {
		return Response{}, &queryfarmer.ProviderError{
			Provider:  NameAnthropic,
			Message:   "no content returned from Anthropic",
			Retryable: true,
		}
	}

	return Response{Text: b.String(), Confidence: anthropicConfidence}, nil
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
