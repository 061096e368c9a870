package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"mutarjim/internal/logger"
	"mutarjim/internal/metrics"
	"mutarjim/internal/repository"
	"mutarjim/internal/service/ai"
)

// TranslateRequest is one translation asked for from the review surface.
type TranslateRequest struct {
	Title      string `json:"title"`
	SourceText string `json:"sourceText"`
	Style      string `json:"style"`
	Model      string `json:"model"`
}

// TranslationDraft is a generated translation awaiting review. Nothing is
// stored until the reviewer saves it.
type TranslationDraft struct {
	RequestID    string `json:"requestId"`
	Title        string `json:"title"`
	SourceText   string `json:"sourceText"`
	Style        string `json:"style"`
	Model        string `json:"model"`
	Provider     string `json:"provider"`
	Translation  string `json:"translation"`
	Exemplars    int    `json:"exemplars"`
	ExemplarCost int    `json:"exemplarCost"`
}

// PromptPreview is the assembled prompt without a provider call.
type PromptPreview struct {
	Style        string `json:"style"`
	Prompt       string `json:"prompt"`
	Exemplars    int    `json:"exemplars"`
	ExemplarCost int    `json:"exemplarCost"`
}

// TranslationService turns source text into a reviewed-ready draft.
type TranslationService interface {
	// Translate assembles the prompt for the requested style and calls the
	// configured provider. It never writes to the archive.
	Translate(ctx context.Context, req TranslateRequest) (*TranslationDraft, error)
	// Preview returns the prompt Translate would send.
	Preview(ctx context.Context, req TranslateRequest) (*PromptPreview, error)
}

// ProviderFactory builds a provider from resolved settings.
type ProviderFactory func(cfg ai.Config) (ai.Provider, error)

// TranslationOptions tune the orchestrator.
type TranslationOptions struct {
	Defaults    AIDefaults
	Cost        ai.CostFunc     // nil means word count
	NewProvider ProviderFactory // nil means ai.NewProvider
}

type translationService struct {
	translations repository.TranslationRepository
	settings     repository.SettingsRepository
	styles       *ai.StyleRegistry
	rateLimiter  *ai.RateLimiter
	defaults     AIDefaults
	cost         ai.CostFunc
	newProvider  ProviderFactory
}

// NewTranslationService creates a new translation service.
func NewTranslationService(
	translations repository.TranslationRepository,
	settings repository.SettingsRepository,
	styles *ai.StyleRegistry,
	rateLimiter *ai.RateLimiter,
	opts TranslationOptions,
) TranslationService {
	s := &translationService{
		translations: translations,
		settings:     settings,
		styles:       styles,
		rateLimiter:  rateLimiter,
		defaults:     opts.Defaults,
		cost:         opts.Cost,
		newProvider:  opts.NewProvider,
	}
	if s.cost == nil {
		s.cost = ai.WordCost
	}
	if s.newProvider == nil {
		s.newProvider = ai.NewProvider
	}
	if s.rateLimiter == nil {
		s.rateLimiter = ai.NewRateLimiter(0)
	}
	return s
}

type assembled struct {
	profile   ai.StyleProfile
	prompt    string
	exemplars ai.ExemplarSet
}

// validate rejects blank source and unknown styles before any store or
// provider access.
func (s *translationService) validate(req TranslateRequest) (ai.StyleProfile, error) {
	if strings.TrimSpace(req.SourceText) == "" {
		return ai.StyleProfile{}, &InputError{Field: "sourceText", Reason: "source text is required"}
	}
	profile, ok := s.styles.Lookup(req.Style)
	if !ok {
		return ai.StyleProfile{}, &InputError{Field: "style", Reason: fmt.Sprintf("unknown style %q", req.Style)}
	}
	return profile, nil
}

func (s *translationService) assemble(ctx context.Context, req TranslateRequest, profile ai.StyleProfile, budget int) (*assembled, error) {

	var exemplars ai.ExemplarSet
	if profile.Kind == ai.StyleExemplarDerived {
		pairs, err := s.translations.ListPairs(ctx)
		if err != nil {
			return nil, &StoreError{Op: "list exemplar pairs", Err: err}
		}
		exemplars = ai.SelectExemplars(pairs, budget, s.cost)
		metrics.ExemplarsSelected.Observe(float64(exemplars.Accepted))
		logger.Debug("exemplars selected", "module", "service", "action", "select", "resource", "exemplar", "result", "ok", "available", len(pairs), "accepted", exemplars.Accepted, "cost", exemplars.Cost, "budget", budget)
	}

	prompt, err := ai.BuildTranslatePrompt(profile, req.SourceText, exemplars)
	if err != nil {
		return nil, fmt.Errorf("build prompt: %w", err)
	}
	return &assembled{profile: profile, prompt: prompt, exemplars: exemplars}, nil
}

func (s *translationService) Preview(ctx context.Context, req TranslateRequest) (*PromptPreview, error) {
	profile, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	_, budget, err := loadAISettings(ctx, s.settings, s.defaults)
	if err != nil {
		return nil, &StoreError{Op: "load settings", Err: err}
	}
	a, err := s.assemble(ctx, req, profile, budget)
	if err != nil {
		return nil, err
	}
	return &PromptPreview{
		Style:        a.profile.ID,
		Prompt:       a.prompt,
		Exemplars:    a.exemplars.Accepted,
		ExemplarCost: a.exemplars.Cost,
	}, nil
}

func (s *translationService) Translate(ctx context.Context, req TranslateRequest) (*TranslationDraft, error) {
	profile, err := s.validate(req)
	if err != nil {
		s.count(s.styleLabel(req.Style), err)
		return nil, err
	}
	styleID := profile.ID

	cfg, budget, err := loadAISettings(ctx, s.settings, s.defaults)
	if err != nil {
		serr := &StoreError{Op: "load settings", Err: err}
		s.count(styleID, serr)
		return nil, serr
	}

	a, err := s.assemble(ctx, req, profile, budget)
	if err != nil {
		s.count(styleID, err)
		return nil, err
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = cfg.Model
	}
	if cfg.APIKey == "" || model == "" {
		s.count(styleID, ErrNotConfigured)
		return nil, ErrNotConfigured
	}
	cfg.Model = model

	provider, err := s.newProvider(cfg)
	if err != nil {
		logger.Warn("ai provider create failed", "module", "service", "action", "translate", "resource", "ai", "result", "failed", "provider", cfg.Provider, "model", model, "error", err)
		s.count(styleID, err)
		if errors.Is(err, ai.ErrInvalidProvider) || errors.Is(err, ai.ErrMissingBaseURL) {
			return nil, fmt.Errorf("%w: %v", ErrNotConfigured, err)
		}
		return nil, fmt.Errorf("create provider: %w", err)
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		logger.Warn("ai rate limit wait failed", "module", "service", "action", "translate", "resource", "ai", "result", "failed", "error", err)
		s.count(styleID, err)
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	text, err := provider.Complete(ctx, model, a.prompt)
	metrics.ProviderLatency.WithLabelValues(provider.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		logger.Warn("translation failed", "module", "service", "action", "translate", "resource", "ai", "result", "failed", "provider", provider.Name(), "model", model, "style", styleID, "error", err)
		serr := &ServiceError{Provider: provider.Name(), Model: model, Err: err}
		s.count(styleID, serr)
		return nil, serr
	}

	draft := &TranslationDraft{
		RequestID:    uuid.NewString(),
		Title:        strings.TrimSpace(req.Title),
		SourceText:   req.SourceText,
		Style:        styleID,
		Model:        model,
		Provider:     provider.Name(),
		Translation:  strings.TrimSpace(text),
		Exemplars:    a.exemplars.Accepted,
		ExemplarCost: a.exemplars.Cost,
	}
	s.count(styleID, nil)
	logger.Info("translation drafted", "module", "service", "action", "translate", "resource", "ai", "result", "ok", "request_id", draft.RequestID, "provider", draft.Provider, "model", model, "style", styleID, "exemplars", draft.Exemplars)
	return draft, nil
}

// styleLabel keeps metric labels to registered identifiers.
func (s *translationService) styleLabel(key string) string {
	if p, ok := s.styles.Lookup(key); ok {
		return p.ID
	}
	return "unknown"
}

func (s *translationService) count(style string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalid):
		result = "invalid"
	case errors.Is(err, ErrService):
		result = "service_error"
	case errors.Is(err, ErrStore):
		result = "store_error"
	case errors.Is(err, ErrNotConfigured):
		result = "not_configured"
	default:
		result = "error"
	}
	metrics.Translations.WithLabelValues(style, result).Inc()
}
