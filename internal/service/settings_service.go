package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"mutarjim/internal/repository"
	"mutarjim/internal/service/ai"
)

// DefaultExemplarBudget is the personal-style budget when none is configured.
const DefaultExemplarBudget = 1500

// AIDefaults are process-level fallbacks for settings that were never saved.
type AIDefaults struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	ExemplarBudget int
	HTTPClient     *http.Client
}

// AISettings holds the AI configuration.
type AISettings struct {
	Provider       string `json:"provider"`
	APIKey         string `json:"apiKey"`
	BaseURL        string `json:"baseUrl"`
	Model          string `json:"model"`
	MaxTokens      int    `json:"maxTokens"`
	ExemplarBudget int    `json:"exemplarBudget"`
	RateLimit      int    `json:"rateLimit"`
}

// Setting keys
const (
	KeyAIProvider        = "ai.provider"
	KeyAIAPIKey          = "ai.api_key"
	KeyAIBaseURL         = "ai.base_url"
	KeyAIModel           = "ai.model"
	KeyAIMaxTokens       = "ai.max_tokens"
	KeyAIRateLimit       = "ai.rate_limit"
	KeyExemplarBudget    = "translate.exemplar_budget"
	KeyExcelImportMarker = repository.KeyExcelImported
)

// SettingsService provides settings management.
type SettingsService interface {
	// GetAISettings returns the AI configuration with masked API keys.
	GetAISettings(ctx context.Context) (*AISettings, error)
	// SetAISettings updates the AI configuration.
	// If apiKey is empty or masked, it keeps the existing key.
	SetAISettings(ctx context.Context, settings *AISettings) error
	// TestAI tests the AI connection with the given configuration.
	TestAI(ctx context.Context, settings *AISettings) (string, error)
	// ApplyRateLimit loads a stored rate limit into the limiter. Without a
	// stored value the limiter keeps its startup limit.
	ApplyRateLimit(ctx context.Context) error
}

type settingsService struct {
	repo        repository.SettingsRepository
	defaults    AIDefaults
	rateLimiter *ai.RateLimiter
}

// NewSettingsService creates a new settings service. rateLimiter is the one
// shared with the translation service.
func NewSettingsService(repo repository.SettingsRepository, defaults AIDefaults, rateLimiter *ai.RateLimiter) SettingsService {
	if rateLimiter == nil {
		rateLimiter = ai.NewRateLimiter(0)
	}
	return &settingsService{repo: repo, defaults: defaults, rateLimiter: rateLimiter}
}

func (s *settingsService) GetAISettings(ctx context.Context) (*AISettings, error) {
	cfg, budget, err := loadAISettings(ctx, s.repo, s.defaults)
	if err != nil {
		return nil, err
	}
	return &AISettings{
		Provider:       cfg.Provider,
		APIKey:         maskAPIKey(cfg.APIKey),
		BaseURL:        cfg.BaseURL,
		Model:          cfg.Model,
		MaxTokens:      cfg.MaxTokens,
		ExemplarBudget: budget,
		RateLimit:      s.rateLimiter.GetLimit(),
	}, nil
}

func (s *settingsService) SetAISettings(ctx context.Context, settings *AISettings) error {
	switch settings.Provider {
	case "", ai.ProviderOpenAI, ai.ProviderAnthropic, ai.ProviderCompatible:
	default:
		return &InputError{Field: "provider", Reason: "unsupported provider"}
	}
	if settings.MaxTokens < 0 {
		return &InputError{Field: "maxTokens", Reason: "must not be negative"}
	}
	if settings.ExemplarBudget < 0 {
		return &InputError{Field: "exemplarBudget", Reason: "must not be negative"}
	}
	if settings.RateLimit < 0 {
		return &InputError{Field: "rateLimit", Reason: "must not be negative"}
	}

	if settings.Provider != "" {
		if err := s.repo.Set(ctx, KeyAIProvider, settings.Provider); err != nil {
			return fmt.Errorf("set provider: %w", err)
		}
	}
	if err := s.setAPIKey(ctx, KeyAIAPIKey, settings.APIKey); err != nil {
		return fmt.Errorf("set api key: %w", err)
	}
	if err := s.setOrClear(ctx, KeyAIBaseURL, settings.BaseURL); err != nil {
		return fmt.Errorf("set base url: %w", err)
	}
	if err := s.setOrClear(ctx, KeyAIModel, settings.Model); err != nil {
		return fmt.Errorf("set model: %w", err)
	}
	if err := s.repo.SetInt(ctx, KeyAIMaxTokens, settings.MaxTokens); err != nil {
		return fmt.Errorf("set max tokens: %w", err)
	}
	if err := s.repo.SetInt(ctx, KeyExemplarBudget, settings.ExemplarBudget); err != nil {
		return fmt.Errorf("set exemplar budget: %w", err)
	}
	if err := s.repo.SetInt(ctx, KeyAIRateLimit, settings.RateLimit); err != nil {
		return fmt.Errorf("set rate limit: %w", err)
	}
	s.rateLimiter.SetLimit(settings.RateLimit)
	return nil
}

func (s *settingsService) ApplyRateLimit(ctx context.Context) error {
	qps, ok, err := s.repo.GetInt(ctx, KeyAIRateLimit)
	if err != nil {
		return fmt.Errorf("get rate limit: %w", err)
	}
	if ok {
		s.rateLimiter.SetLimit(qps)
	}
	return nil
}

func (s *settingsService) TestAI(ctx context.Context, settings *AISettings) (string, error) {
	apiKey := settings.APIKey
	// If apiKey looks like a masked key, use the stored one
	if apiKey == "" || isMaskedKey(apiKey) {
		stored, _, err := loadAISettings(ctx, s.repo, s.defaults)
		if err != nil {
			return "", fmt.Errorf("get stored api key: %w", err)
		}
		apiKey = stored.APIKey
	}

	p, err := ai.NewProvider(ai.Config{
		Provider:   settings.Provider,
		APIKey:     apiKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		MaxTokens:  settings.MaxTokens,
		HTTPClient: s.defaults.HTTPClient,
	})
	if err != nil {
		return "", &InputError{Field: "provider", Reason: err.Error()}
	}

	reply, err := p.Test(ctx)
	if err != nil {
		return "", &ServiceError{Provider: p.Name(), Model: settings.Model, Err: err}
	}
	return reply, nil
}

// loadAISettings merges stored ai.* settings over the process defaults.
// The returned config may lack an API key; callers that need a working
// provider check that themselves.
func loadAISettings(ctx context.Context, repo repository.SettingsRepository, defaults AIDefaults) (ai.Config, int, error) {
	cfg := ai.Config{
		Provider:   defaults.Provider,
		APIKey:     defaults.APIKey,
		BaseURL:    defaults.BaseURL,
		Model:      defaults.Model,
		MaxTokens:  defaults.MaxTokens,
		HTTPClient: defaults.HTTPClient,
	}
	budget := defaults.ExemplarBudget

	// Batch fetch all ai.* settings in a single query
	settings, err := repo.GetByPrefix(ctx, "ai.")
	if err != nil {
		return cfg, 0, fmt.Errorf("get AI settings: %w", err)
	}
	for _, setting := range settings {
		if setting.Value == "" {
			continue
		}
		switch setting.Key {
		case KeyAIProvider:
			cfg.Provider = setting.Value
		case KeyAIAPIKey:
			cfg.APIKey = setting.Value
		case KeyAIBaseURL:
			cfg.BaseURL = setting.Value
		case KeyAIModel:
			cfg.Model = setting.Value
		case KeyAIMaxTokens:
			if n, err := strconv.Atoi(setting.Value); err == nil && n > 0 {
				cfg.MaxTokens = n
			}
		}
	}

	budgetSetting, err := repo.Get(ctx, KeyExemplarBudget)
	if err != nil {
		return cfg, 0, fmt.Errorf("get exemplar budget: %w", err)
	}
	if budgetSetting != nil {
		if n, err := strconv.Atoi(budgetSetting.Value); err == nil && n > 0 {
			budget = n
		}
	}

	if cfg.Provider == "" {
		cfg.Provider = ai.ProviderOpenAI
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = ai.DefaultMaxTokens
	}
	if budget <= 0 {
		budget = DefaultExemplarBudget
	}
	return cfg, budget, nil
}

// maskAPIKey returns a masked version of the API key for display.
func maskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	// Find prefix (e.g., "sk-" for OpenAI)
	prefixEnd := 0
	for i, c := range apiKey {
		if c == '-' {
			prefixEnd = i + 1
			break
		}
		if i >= 4 {
			break
		}
	}
	return apiKey[:prefixEnd] + "***" + apiKey[len(apiKey)-3:]
}

// isMaskedKey checks if a string looks like a masked API key.
func isMaskedKey(key string) bool {
	if len(key) == 0 || len(key) >= 20 {
		return false
	}
	for i := 0; i <= len(key)-3; i++ {
		if key[i:i+3] == "***" {
			return true
		}
	}
	return false
}

// setAPIKey keeps the existing key when value is empty or masked.
func (s *settingsService) setAPIKey(ctx context.Context, key, value string) error {
	if value == "" || isMaskedKey(value) {
		return nil
	}
	return s.repo.Set(ctx, key, value)
}

// setOrClear deletes key for an empty value so the process default applies.
func (s *settingsService) setOrClear(ctx context.Context, key, value string) error {
	if value == "" {
		return s.repo.Delete(ctx, key)
	}
	return s.repo.Set(ctx, key, value)
}
