package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

const geminiConfidence = 0.85

// GeminiProvider implements Provider using Google Gemini.
type GeminiProvider struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey   string // Gemini API key
	Model    string // Model to use (default: "gemini-1.5-flash")
	Endpoint string // API endpoint override (optional)
}

// NewGeminiProvider creates a new Gemini provider. Without an API key no
// client is created and every call fails with a non-retryable error.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return &GeminiProvider{}, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	name := cfg.Model
	if name == "" {
		name = "gemini-1.5-flash"
	}
	model := client.GenerativeModel(name)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(SystemPrompt)},
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Name implements Provider.
func (p *GeminiProvider) Name() string {
	return NameGemini
}

// Translate implements Provider.
func (p *GeminiProvider) Translate(ctx context.Context, req Request) (Response, error) {
	if p.model == nil {
		return Response{}, missingKey(NameGemini)
	}

	resp, err := p.model.GenerateContent(ctx, genai.Text(UserPrompt(req)))
	if err != nil {
		retryable := ctx.Err() == nil
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			retryable = retryableStatus(apiErr.Code)
		}
		return Response{}, &queryfarmer.ProviderError{
			Provider:  NameGemini,
			Message:   "Gemini API call failed",
			Cause:     err,
			Retryable: retryable,
		}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Response{}, &queryfarmer.ProviderError{
			Provider:  NameGemini,
			Message:   "no content returned from Gemini",
			Retryable: true,
		}
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}

	return Response{Text: b.String(), Confidence: geminiConfidence}, nil
}

// Close closes the Gemini client.
func (p *GeminiProvider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
