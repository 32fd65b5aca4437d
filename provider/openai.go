package provider

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

const openAIConfidence = 0.85

// OpenAIProvider implements Provider using OpenAI's chat completions.
type OpenAIProvider struct {
	client      *openai.Client
	apiKey      string
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.2)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.2
	}

	return &OpenAIProvider{
		client:      openai.NewClientWithConfig(config),
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: temperature,
	}
}

// Name implements Provider.
func (p *OpenAIProvider) Name() string {
	return NameOpenAI
}

// Translate implements Provider.
func (p *OpenAIProvider) Translate(ctx context.Context, req Request) (Response, error) {
	if p.apiKey == "" {
		return Response{}, missingKey(NameOpenAI)
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserPrompt(req)},
		},
		Temperature: p.temperature,
	})
	if err != nil {
		return Response{}, &queryfarmer.ProviderError{
			Provider:  NameOpenAI,
			Message:   "OpenAI API call failed",
			Cause:     err,
			Retryable: ctx.Err() == nil && isRetryableError(err),
		}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return Response{}, &queryfarmer.ProviderError{
			Provider:  NameOpenAI,
			Message:   "no response from OpenAI",
			Retryable: true,
		}
	}

	return Response{Text: resp.Choices[0].Message.Content, Confidence: openAIConfidence}, nil
}

// isRetryableError classifies SDK errors by status code, then by message.
func isRetryableError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return retryableStatus(reqErr.HTTPStatusCode)
	}

	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"connection reset",
		"temporary",
		"overloaded",
		"503",
		"502",
		"500",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
