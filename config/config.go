// Package config loads the service configuration from a YAML file and the
// environment.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	queryfarmer "github.com/srivastavaprakhar/queryFARMER"
)

type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Provider    ProviderConfig    `mapstructure:"provider"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Translation TranslationConfig `mapstructure:"translation"`
	Languages   LanguagesConfig   `mapstructure:"languages"`
	Log         LogConfig         `mapstructure:"log"`
}

type ServerConfig struct {
	Host                 string `mapstructure:"host" validate:"required"`
	Port                 int    `mapstructure:"port" validate:"min=1,max=65535"`
	Debug                bool   `mapstructure:"debug"`
	MaxRequestsPerMinute int    `mapstructure:"max_requests_per_minute" validate:"min=0"`
}

// ProviderConfig selects the external translation provider. Unknown names
// are served by the mock provider.
type ProviderConfig struct {
	Name           string   `mapstructure:"name" validate:"required"`
	APIKey         string   `mapstructure:"api_key"`
	Model          string   `mapstructure:"model"`
	BaseURL        string   `mapstructure:"base_url" validate:"omitempty,url"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"min=0"`
	Fallbacks      []string `mapstructure:"fallbacks"`
}

type CacheConfig struct {
	Backend string `mapstructure:"backend" validate:"oneof=memory redis"`
	// Duration is the entry lifetime in seconds; 0 disables expiry.
	Duration  int    `mapstructure:"duration" validate:"min=0"`
	MaxSize   int    `mapstructure:"max_size" validate:"min=0"`
	RedisURL  string `mapstructure:"redis_url" validate:"required_if=Backend redis"`
	KeyPrefix string `mapstructure:"key_prefix"`
	// CleanupInterval is the janitor period in seconds; 0 disables it.
	CleanupInterval int  `mapstructure:"cleanup_interval" validate:"min=0"`
	CacheFallbacks  bool `mapstructure:"cache_fallbacks"`
}

type TranslationConfig struct {
	TimeoutSeconds    int `mapstructure:"timeout_seconds" validate:"min=1"`
	BatchConcurrency  int `mapstructure:"batch_concurrency" validate:"min=1"`
	MaxRetries        int `mapstructure:"max_retries" validate:"min=0"`
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"min=0"`
	BreakerFailures   int `mapstructure:"breaker_failures" validate:"min=0"`
}

// LanguagesConfig lists the supported languages and the legal translation
// directions. Without a supported section the built-in languages and pairs
// apply; a supported section without pairs allows every direction.
type LanguagesConfig struct {
	Supported map[string]string   `mapstructure:"supported" validate:"dive,keys,min=2,endkeys,required"`
	Pairs     map[string][]string `mapstructure:"pairs"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Addr returns the listen address of the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// Timeout returns the provider call timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Translation.TimeoutSeconds) * time.Second
}

// LanguageSet builds the language set the Translator validates against.
func (c *Config) LanguageSet() *queryfarmer.LanguageSet {
	return queryfarmer.NewLanguageSet(c.Languages.Supported, c.Languages.Pairs)
}

// Summary describes the effective configuration without secrets.
type Summary struct {
	Provider           string   `json:"provider"`
	Host               string   `json:"host"`
	Port               int      `json:"port"`
	Debug              bool     `json:"debug"`
	CacheBackend       string   `json:"cache_backend"`
	CacheDurationHours int      `json:"cache_duration_hours"`
	MaxCacheSize       int      `json:"max_cache_size"`
	SupportedLanguages []string `json:"supported_languages"`
	APIKeyConfigured   bool     `json:"api_key_configured"`
}

// Summary returns the configuration summary. Only the presence of the API
// key is reported.
func (c *Config) Summary() Summary {
	return Summary{
		Provider:           c.Provider.Name,
		Host:               c.Server.Host,
		Port:               c.Server.Port,
		Debug:              c.Server.Debug,
		CacheBackend:       c.Cache.Backend,
		CacheDurationHours: c.Cache.Duration / 3600,
		MaxCacheSize:       c.Cache.MaxSize,
		SupportedLanguages: c.LanguageSet().Codes(),
		APIKeyConfigured:   c.Provider.APIKey != "",
	}
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

// envBindings maps configuration keys to the environment variables that
// override them.
var envBindings = []struct {
	key string
	env string
}{
	{"provider.name", "TRANSLATION_PROVIDER"},
	{"provider.api_key", "TRANSLATION_API_KEY"},
	{"provider.model", "TRANSLATION_MODEL"},
	{"provider.base_url", "TRANSLATION_BASE_URL"},
	{"server.host", "TRANSLATION_HOST"},
	{"server.port", "TRANSLATION_PORT"},
	{"server.debug", "TRANSLATION_DEBUG"},
	{"server.max_requests_per_minute", "MAX_REQUESTS_PER_MINUTE"},
	{"cache.backend", "CACHE_BACKEND"},
	{"cache.duration", "CACHE_DURATION"},
	{"cache.max_size", "MAX_CACHE_SIZE"},
	{"cache.redis_url", "REDIS_URL"},
	{"log.level", "LOG_LEVEL"},
	{"log.format", "LOG_FORMAT"},
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("queryfarmer")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/queryfarmer")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.max_requests_per_minute", 100)
	v.SetDefault("provider.name", "mock")
	v.SetDefault("provider.timeout_seconds", 30)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.duration", 86400)
	v.SetDefault("cache.max_size", 10000)
	v.SetDefault("cache.key_prefix", "queryfarmer:")
	v.SetDefault("cache.cleanup_interval", 300)
	v.SetDefault("translation.timeout_seconds", int(queryfarmer.DefaultTimeout/time.Second))
	v.SetDefault("translation.batch_concurrency", queryfarmer.DefaultBatchConcurrency)
	v.SetDefault("translation.max_retries", queryfarmer.DefaultRetryConfig().MaxRetries)
	v.SetDefault("translation.requests_per_minute", 60)
	v.SetDefault("translation.breaker_failures", int(queryfarmer.DefaultBreakerConfig().MaxFailures))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", b.env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.Provider.Name = strings.ToLower(strings.TrimSpace(cfg.Provider.Name))
	cfg.Cache.Backend = strings.ToLower(cfg.Cache.Backend)
	cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	cfg.Languages.applyDefaults()

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}
	if err := cfg.Languages.checkPairs(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills in the built-in languages when none are configured.
// viper merges nested map defaults key by key, so they are not registered there.
func (lc *LanguagesConfig) applyDefaults() {
	if len(lc.Supported) > 0 {
		return
	}
	lc.Supported = make(map[string]string, len(queryfarmer.DefaultLanguages))
	for code, name := range queryfarmer.DefaultLanguages {
		lc.Supported[code] = name
	}
	if len(lc.Pairs) > 0 {
		return
	}
	lc.Pairs = make(map[string][]string, len(queryfarmer.DefaultPairs))
	for src, targets := range queryfarmer.DefaultPairs {
		lc.Pairs[src] = append([]string(nil), targets...)
	}
}

// checkPairs rejects pairs that name an unsupported language.
func (lc *LanguagesConfig) checkPairs() error {
	supported := queryfarmer.NewLanguageSet(lc.Supported, nil)

	sources := make([]string, 0, len(lc.Pairs))
	for src := range lc.Pairs {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		if !supported.Supports(src) {
			return fmt.Errorf("languages.pairs: unsupported source language %s", src)
		}
		for _, tgt := range lc.Pairs[src] {
			if !supported.Supports(tgt) {
				return fmt.Errorf("languages.pairs: unsupported target language %s for %s", tgt, src)
			}
		}
	}
	return nil
}

// Load reads configFile (or the default locations when empty) and the
// environment.
func Load(configFile string) (*Config, error) {
	loader, err := NewConfigLoader(configFile)
	if err != nil {
		return nil, err
	}
	return loader.Load()
}
