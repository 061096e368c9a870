package ai

import (
	"context"
	"errors"
	"net/http"
)

// Provider is the external text-completion service a translation is
// requested from.
type Provider interface {
	// Test sends a short probe message and returns the response.
	Test(ctx context.Context) (string, error)
	// Name returns the provider name.
	Name() string
	// Complete sends prompt as a single user message to model and returns
	// the reply text. An empty model falls back to the configured one.
	Complete(ctx context.Context, model, prompt string) (string, error)
}

// Config holds the configuration for an AI provider.
type Config struct {
	Provider  string // openai, anthropic, compatible
	APIKey    string
	BaseURL   string // optional for openai, required for compatible
	Model     string // default model when a request names none
	MaxTokens int    // completion limit; required by anthropic

	// HTTPClient carries proxy and timeout settings; nil uses the SDK default.
	HTTPClient *http.Client
}

// ProviderType constants
const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderCompatible = "compatible"
)

// DefaultMaxTokens bounds a single translation reply.
const DefaultMaxTokens = 4096

var (
	ErrInvalidProvider = errors.New("invalid provider")
	ErrMissingAPIKey   = errors.New("API key is required")
	ErrMissingBaseURL  = errors.New("base URL is required for compatible provider")
	ErrMissingModel    = errors.New("model is required")
	ErrEmptyResponse   = errors.New("empty response from provider")
)

// NewProvider creates a new AI provider based on the config.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	switch cfg.Provider {
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.HTTPClient)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.HTTPClient)
	case ProviderCompatible:
		if cfg.BaseURL == "" {
			return nil, ErrMissingBaseURL
		}
		return NewCompatibleProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.HTTPClient)
	default:
		return nil, ErrInvalidProvider
	}
}

func pickModel(requested, fallback string) string {
	if requested != "" {
		return requested
	}
	return fallback
}
