package queryfarmer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	// DefaultTimeout bounds a single provider call.
	DefaultTimeout = 10 * time.Second

	// FallbackConfidence is reported for placeholder results.
	FallbackConfidence = 0.3
)

// Provider is the interface for external translation backends.
type Provider interface {
	Translate(ctx context.Context, req ProviderRequest) (ProviderResponse, error)
	Name() string
}

// TranslationCache is the interface for translation caching.
type TranslationCache interface {
	Get(key string) (TranslationResult, bool)
	Put(key string, result TranslationResult) error
	Len() int
}

// Translator coordinates cache lookup, token shielding, the provider call,
// restoration and cache population.
type Translator struct {
	provider      Provider
	cache         TranslationCache
	languages     *LanguageSet
	preserver     *TokenPreserver
	timeout       time.Duration
	logger        *slog.Logger
	cacheFallback bool
	group         singleflight.Group
}

// TranslatorOption is a functional option for configuring the Translator.
type TranslatorOption func(*Translator)

// WithCache sets the translation cache.
func WithCache(cache TranslationCache) TranslatorOption {
	return func(t *Translator) {
		t.cache = cache
	}
}

// WithLanguages sets the supported languages and pairs.
func WithLanguages(languages *LanguageSet) TranslatorOption {
	return func(t *Translator) {
		t.languages = languages
	}
}

// WithPreserver replaces the default token preserver.
func WithPreserver(p *TokenPreserver) TranslatorOption {
	return func(t *Translator) {
		t.preserver = p
	}
}

// WithTimeout bounds each provider call. Non-positive values are ignored.
func WithTimeout(d time.Duration) TranslatorOption {
	return func(t *Translator) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) TranslatorOption {
	return func(t *Translator) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithCacheFallbacks controls whether placeholder results produced after a
// provider failure are stored in the cache.
func WithCacheFallbacks(enabled bool) TranslatorOption {
	return func(t *Translator) {
		t.cacheFallback = enabled
	}
}

// NewTranslator creates a new Translator backed by the given provider.
func NewTranslator(provider Provider, opts ...TranslatorOption) *Translator {
	t := &Translator{
		provider:  provider,
		languages: DefaultLanguageSet(),
		preserver: NewTokenPreserver(),
		timeout:   DefaultTimeout,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Translate translates a single request. The only error returned for a
// well-formed request is *UnsupportedLanguageError; provider failures degrade
// to a low-confidence fallback result. If ctx ends first its error is returned
// while the provider call continues and still populates the cache.
func (t *Translator) Translate(ctx context.Context, req Request) (*TranslationResult, error) {
	if req.SourceLang == req.TargetLang {
		result := &TranslationResult{
			TranslatedText: req.Text,
			Confidence:     1.0,
			Tokens:         TokenSet{},
			SourceLang:     req.SourceLang,
			TargetLang:     req.TargetLang,
		}
		if req.PreserveTokens {
			result.Tokens = t.preserver.Extract(req.Text)
		}
		return result, nil
	}

	if err := t.languages.Validate(req.SourceLang, req.TargetLang); err != nil {
		return nil, err
	}

	key := Fingerprint(req.Text, req.SourceLang, req.TargetLang)
	if result, ok := t.lookup(key); ok {
		return result, nil
	}

	ch := t.group.DoChan(key, func() (interface{}, error) {
		// Another flight may have finished between lookup and DoChan.
		if result, ok := t.lookup(key); ok {
			return result, nil
		}
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
		defer cancel()
		return t.translate(flightCtx, key, req), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*TranslationResult), nil
	}
}

// translate performs steps 4-7 on a cache miss.
func (t *Translator) translate(ctx context.Context, key string, req Request) *TranslationResult {
	text := req.Text
	tokens := TokenSet{}
	if req.PreserveTokens {
		text, tokens = t.preserver.Protect(req.Text)
	}

	start := time.Now()
	resp, err := t.callProvider(ctx, ProviderRequest{
		Text:       text,
		SourceLang: req.SourceLang,
		TargetLang: req.TargetLang,
	})
	if err != nil {
		t.logger.Warn("provider failed, using fallback",
			"provider", t.providerName(),
			"source", req.SourceLang,
			"target", req.TargetLang,
			"error", err)
		result := Fallback(req, tokens)
		if t.cacheFallback {
			t.store(key, result)
		}
		return result
	}

	translated := resp.Text
	if req.PreserveTokens {
		translated = t.preserver.Restore(translated, tokens)
		if mismatch := Verify(tokens, translated).Err(); mismatch != nil {
			t.logger.Warn("token restoration incomplete", "key", key, "error", mismatch)
		}
	}

	result := &TranslationResult{
		TranslatedText: translated,
		Confidence:     clampConfidence(resp.Confidence),
		Tokens:         tokens,
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
	}
	t.store(key, result)

	t.logger.Info("translated",
		"provider", t.providerName(),
		"source", req.SourceLang,
		"target", req.TargetLang,
		"chars", len(req.Text),
		"tokens", tokens.Len(),
		"duration", time.Since(start))
	return result
}

func (t *Translator) callProvider(ctx context.Context, req ProviderRequest) (ProviderResponse, error) {
	if t.provider == nil {
		return ProviderResponse{}, &ProviderError{Message: "no provider configured"}
	}

	// The call runs on its own goroutine so a provider that ignores ctx
	// cannot hold the flight past the deadline. The buffered channel lets
	// it finish and exit after nobody is listening.
	done := make(chan providerReply, 1)
	go func() {
		resp, err := t.provider.Translate(ctx, req)
		done <- providerReply{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return ProviderResponse{}, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return ProviderResponse{}, r.err
		}
		// A provider that ignored the deadline still counts as timed out.
		if err := ctx.Err(); err != nil {
			return ProviderResponse{}, err
		}
		return r.resp, nil
	}
}

type providerReply struct {
	resp ProviderResponse
	err  error
}

func (t *Translator) lookup(key string) (*TranslationResult, bool) {
	if t.cache == nil {
		return nil, false
	}
	result, ok := t.cache.Get(key)
	if !ok {
		t.logger.Debug("cache miss", "key", key)
		return nil, false
	}
	t.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (t *Translator) store(key string, result *TranslationResult) {
	if t.cache == nil {
		return
	}
	if err := t.cache.Put(key, *result); err != nil {
		var cacheErr *CacheError
		if !errors.As(err, &cacheErr) {
			err = &CacheError{Message: "put failed", Cause: err}
		}
		t.logger.Warn("cache put failed", "key", key, "error", err)
	}
}

func (t *Translator) providerName() string {
	if t.provider == nil {
		return "none"
	}
	return t.provider.Name()
}

// Languages returns the supported language set.
func (t *Translator) Languages() *LanguageSet {
	return t.languages
}

// Preserver returns the token preserver.
func (t *Translator) Preserver() *TokenPreserver {
	return t.preserver
}

// Cache returns the translation cache, or nil.
func (t *Translator) Cache() TranslationCache {
	return t.cache
}

// Fallback builds the placeholder result used when the provider fails:
// the original text tagged with the upper-case target code.
func Fallback(req Request, tokens TokenSet) *TranslationResult {
	if tokens == nil {
		tokens = TokenSet{}
	}
	return &TranslationResult{
		TranslatedText: "[" + strings.ToUpper(req.TargetLang) + "] " + req.Text,
		Confidence:     FallbackConfidence,
		Tokens:         tokens,
		SourceLang:     req.SourceLang,
		TargetLang:     req.TargetLang,
		Fallback:       true,
	}
}

func clampConfidence(c float64) float64 {
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
