package provider

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

const (
	deeplEndpoint   = "https://api-free.deepl.com/v2/translate"
	deeplConfidence = 0.95
)

// DeepLProvider calls the DeepL v2 translate API.
type DeepLProvider struct {
	client   *resty.Client
	apiKey   string
	endpoint string
}

// DeepLConfig holds configuration for the DeepL provider.
type DeepLConfig struct {
	APIKey   string        // DeepL auth key
	Endpoint string        // Custom endpoint, e.g. the pro API (optional)
	Timeout  time.Duration // Request timeout (default: 10s)
}

// NewDeepLProvider creates a new DeepL provider.
func NewDeepLProvider(cfg DeepLConfig) *DeepLProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = deeplEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", queryfarmer.UserAgent())

	return &DeepLProvider{
		client:   client,
		apiKey:   cfg.APIKey,
		endpoint: endpoint,
	}
}

// Name implements Provider.
func (p *DeepLProvider) Name() string {
	return NameDeepL
}

// Translate implements Provider. DeepL reports no confidence; a fixed 0.95 is used.
func (p *DeepLProvider) Translate(ctx context.Context, req Request) (Response, error) {
	if p.apiKey == "" {
		return Response{}, missingKey(NameDeepL)
	}

	res, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "DeepL-Auth-Key "+p.apiKey).
		SetFormData(map[string]string{
			"text":        req.Text,
			"source_lang": strings.ToUpper(req.SourceLang),
			"target_lang": strings.ToUpper(req.TargetLang),
		}).
		Post(p.endpoint)
	if err != nil {
		return Response{}, &queryfarmer.ProviderError{
			Provider:  NameDeepL,
			Message:   "request failed",
			Cause:     err,
			Retryable: ctx.Err() == nil,
		}
	}
	if res.IsError() {
		return Response{}, statusError(NameDeepL, res.StatusCode(), res.String())
	}

	text := gjson.GetBytes(res.Body(), "translations.0.text")
	if !text.Exists() {
		return Response{}, &queryfarmer.ProviderError{
			Provider: NameDeepL,
			Message:  "response has no translations",
		}
	}

	return Response{Text: text.String(), Confidence: deeplConfidence}, nil
}

// Verify DeepLProvider implements Provider
var _ Provider = (*DeepLProvider)(nil)
