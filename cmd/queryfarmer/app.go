package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
	"github.com/srivastavaprakhar/queryFARMER/cache"
	"github.com/srivastavaprakhar/queryFARMER/config"
	"github.com/srivastavaprakhar/queryFARMER/provider"
)

// app holds the components shared by the serve and translate commands.
type app struct {
	translator *queryfarmer.Translator
	cache      cache.Cache[queryfarmer.TranslationResult]
	closers    []func() error
	cancel     context.CancelFunc
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	ctx, cancel := context.WithCancel(ctx)
	a := &app{cancel: cancel}

	p, err := a.newProvider(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	c, err := a.newCache(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.cache = c

	a.translator = queryfarmer.NewTranslator(p,
		queryfarmer.WithCache(c),
		queryfarmer.WithLanguages(cfg.LanguageSet()),
		queryfarmer.WithTimeout(cfg.Timeout()),
		queryfarmer.WithCacheFallbacks(cfg.Cache.CacheFallbacks),
		queryfarmer.WithLogger(logger),
	)

	logger.Debug("translator ready",
		"provider", p.Name(),
		"cache", cfg.Cache.Backend,
		"timeout", cfg.Timeout())
	return a, nil
}

// newProvider builds the configured provider, optionally chained with
// fallbacks, then wraps it in rate limiting, retries and a circuit breaker.
func (a *app) newProvider(ctx context.Context, cfg *config.Config) (queryfarmer.Provider, error) {
	names := append([]string{cfg.Provider.Name}, cfg.Provider.Fallbacks...)
	providers := make([]queryfarmer.Provider, 0, len(names))
	for _, name := range names {
		p, err := provider.New(ctx, provider.Config{
			Name:    name,
			APIKey:  cfg.Provider.APIKey,
			Model:   cfg.Provider.Model,
			BaseURL: cfg.Provider.BaseURL,
			Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("create provider %q: %w", name, err)
		}
		if closer, ok := p.(io.Closer); ok {
			a.closers = append(a.closers, closer.Close)
		}
		providers = append(providers, p)
	}

	var p queryfarmer.Provider = providers[0]
	if len(providers) > 1 {
		chain, err := provider.NewChain(providers...)
		if err != nil {
			return nil, err
		}
		p = chain
	}

	if rpm := cfg.Translation.RequestsPerMinute; rpm > 0 {
		p = queryfarmer.NewRateLimitedProvider(p, queryfarmer.RateLimitConfig{RequestsPerMinute: rpm})
	}
	if retries := cfg.Translation.MaxRetries; retries > 0 {
		retryCfg := queryfarmer.DefaultRetryConfig()
		retryCfg.MaxRetries = retries
		p = queryfarmer.NewRetryableProvider(p, retryCfg)
	}
	if failures := cfg.Translation.BreakerFailures; failures > 0 {
		breakerCfg := queryfarmer.DefaultBreakerConfig()
		breakerCfg.MaxFailures = uint32(failures)
		p = queryfarmer.NewBreakerProvider(p, breakerCfg)
	}
	return p, nil
}

func (a *app) newCache(ctx context.Context, cfg *config.Config) (cache.Cache[queryfarmer.TranslationResult], error) {
	interval := time.Duration(cfg.Cache.CleanupInterval) * time.Second

	switch cfg.Cache.Backend {
	case "redis":
		c, err := cache.NewRedisCache[queryfarmer.TranslationResult](cache.RedisConfig{
			URL:        cfg.Cache.RedisURL,
			TTL:        cfg.Cache.Duration,
			MaxEntries: cfg.Cache.MaxSize,
			KeyPrefix:  cfg.Cache.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("create redis cache: %w", err)
		}
		a.closers = append(a.closers, c.Close)
		go janitor(ctx, c, interval)
		return c, nil
	default:
		c := cache.NewInMemoryCache[queryfarmer.TranslationResult](cfg.Cache.Duration, cfg.Cache.MaxSize)
		go c.Run(ctx, interval)
		return c, nil
	}
}

// janitor periodically cleans caches that have no janitor of their own.
func janitor(ctx context.Context, c cache.Cache[queryfarmer.TranslationResult], interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if expired, evicted := c.Cleanup(); expired+evicted > 0 {
				slog.Debug("cache cleanup", "expired", expired, "evicted", evicted)
			}
		}
	}
}

// Close stops background work and releases provider and cache resources.
func (a *app) Close() error {
	a.cancel()
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
