package provider

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

const googleEndpoint = "https://translation.googleapis.com/language/translate/v2"

// GoogleProvider calls the Google Cloud Translation v2 REST API.
type GoogleProvider struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

// GoogleConfig holds configuration for the Google provider.
type GoogleConfig struct {
	APIKey   string        // Cloud API key
	Endpoint string        // Custom endpoint (optional)
	Timeout  time.Duration // Request timeout (default: 10s)
}

// NewGoogleProvider creates a new Google Translate provider.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = googleEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", queryfarmer.UserAgent())

	return &GoogleProvider{
		client:   client,
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
	}
}

// Name implements Provider.
func (p *GoogleProvider) Name() string {
	return NameGoogle
}

// Translate implements Provider. The confidence is the detected source
// confidence when Google reports one, 0.9 otherwise.
func (p *GoogleProvider) Translate(ctx context.Context, req Request) (Response, error) {
	if p.apiKey == "" {
		return Response{}, missingKey(NameGoogle)
	}

	res, err := p.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":      req.Text,
			"source": req.SourceLang,
			"target": req.TargetLang,
			"format": "text",
			"key":    p.apiKey,
		}).
		Post(p.endpoint)
	if err != nil {
		return Response{}, &queryfarmer.ProviderError{
			Provider:  NameGoogle,
			Message:   "request failed",
			Cause:     err,
			Retryable: ctx.Err() == nil,
		}
	}
	if res.IsError() {
		return Response{}, statusError(NameGoogle, res.StatusCode(), res.String())
	}

	translation := gjson.GetBytes(res.Body(), "data.translations.0")
	text := translation.Get("translatedText")
	if !text.Exists() {
		return Response{}, &queryfarmer.ProviderError{
			Provider: NameGoogle,
			Message:  "response has no translatedText",
		}
	}

	confidence := 0.9
	if c := translation.Get("detectedSourceConfidence"); c.Exists() {
		confidence = c.Float()
	}

	return Response{Text: text.String(), Confidence: confidence}, nil
}

// Verify GoogleProvider implements Provider
var _ Provider = (*GoogleProvider)(nil)
