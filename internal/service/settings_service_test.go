package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"mutarjim/internal/repository"
	"mutarjim/internal/repository/testutil"
	"mutarjim/internal/service"
	"mutarjim/internal/service/ai"
)

func newSettings(t *testing.T, defaults service.AIDefaults) (service.SettingsService, repository.SettingsRepository) {
	t.Helper()
	repo := repository.NewSettingsRepository(testutil.NewTestDB(t))
	return service.NewSettingsService(repo, defaults, ai.NewRateLimiter(0)), repo
}

func TestSettingsService_GetAISettings_Defaults(t *testing.T) {
	svc, _ := newSettings(t, service.AIDefaults{APIKey: "sk-env-key-123456", Model: "gpt-3.5-turbo"})

	got, err := svc.GetAISettings(context.Background())
	require.NoError(t, err)
	require.Equal(t, ai.ProviderOpenAI, got.Provider)
	require.Equal(t, "gpt-3.5-turbo", got.Model)
	require.Equal(t, ai.DefaultMaxTokens, got.MaxTokens)
	require.Equal(t, service.DefaultExemplarBudget, got.ExemplarBudget)
	require.Equal(t, "sk-***456", got.APIKey)
}

func TestSettingsService_SetAISettings_RoundTrip(t *testing.T) {
	svc, repo := newSettings(t, service.AIDefaults{})
	ctx := context.Background()

	err := svc.SetAISettings(ctx, &service.AISettings{
		Provider:       ai.ProviderAnthropic,
		APIKey:         "sk-ant-secret-value",
		Model:          "claude-sonnet-4-5",
		MaxTokens:      2048,
		ExemplarBudget: 800,
	})
	require.NoError(t, err)

	got, err := svc.GetAISettings(ctx)
	require.NoError(t, err)
	require.Equal(t, ai.ProviderAnthropic, got.Provider)
	require.Equal(t, "claude-sonnet-4-5", got.Model)
	require.Equal(t, 2048, got.MaxTokens)
	require.Equal(t, 800, got.ExemplarBudget)
	require.NotContains(t, got.APIKey, "secret")

	// Saving the masked key back must not overwrite the stored one.
	got.Model = "claude-opus-4-1"
	require.NoError(t, svc.SetAISettings(ctx, got))
	stored, err := repo.Get(ctx, service.KeyAIAPIKey)
	require.NoError(t, err)
	require.Equal(t, "sk-ant-secret-value", stored.Value)
}

func TestSettingsService_SetAISettings_Validation(t *testing.T) {
	svc, _ := newSettings(t, service.AIDefaults{})
	ctx := context.Background()

	err := svc.SetAISettings(ctx, &service.AISettings{Provider: "mistral"})
	require.ErrorIs(t, err, service.ErrInvalid)

	err = svc.SetAISettings(ctx, &service.AISettings{ExemplarBudget: -1})
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestSettingsService_TestAI_InvalidConfig(t *testing.T) {
	svc, _ := newSettings(t, service.AIDefaults{})

	_, err := svc.TestAI(context.Background(), &service.AISettings{Provider: ai.ProviderOpenAI, Model: "gpt-4"})
	require.ErrorIs(t, err, service.ErrInvalid)
}

func TestSettingsService_RateLimit(t *testing.T) {
	repo := repository.NewSettingsRepository(testutil.NewTestDB(t))
	limiter := ai.NewRateLimiter(0)
	svc := service.NewSettingsService(repo, service.AIDefaults{}, limiter)
	ctx := context.Background()

	// nothing stored keeps the startup limit
	require.NoError(t, svc.ApplyRateLimit(ctx))
	require.Equal(t, 0, limiter.GetLimit())

	require.NoError(t, svc.SetAISettings(ctx, &service.AISettings{RateLimit: 3}))
	require.Equal(t, 3, limiter.GetLimit())

	got, err := svc.GetAISettings(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, got.RateLimit)

	// a fresh process picks the stored limit up
	restarted := ai.NewRateLimiter(0)
	require.NoError(t, service.NewSettingsService(repo, service.AIDefaults{}, restarted).ApplyRateLimit(ctx))
	require.Equal(t, 3, restarted.GetLimit())

	require.ErrorIs(t, svc.SetAISettings(ctx, &service.AISettings{RateLimit: -2}), service.ErrInvalid)
}
