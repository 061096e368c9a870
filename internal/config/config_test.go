package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"MUTARJIM_ADDR", "MUTARJIM_DATA_DIR", "MUTARJIM_DB_PATH", "MUTARJIM_EXCEL_PATH",
		"MUTARJIM_BUDGET_UNIT", "MUTARJIM_EXEMPLAR_BUDGET", "MUTARJIM_AI_QPS", "MUTARJIM_NODE_ID",
		"MUTARJIM_MODELS", "MUTARJIM_AI_API_KEY", "OPENAI_API_KEY", "MUTARJIM_AI_TIMEOUT",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DefaultAddr, cfg.Addr)
	require.Equal(t, filepath.Join("data", "translations.db"), cfg.DBPath)
	require.Equal(t, filepath.Join("data", DefaultExcelFile), cfg.ExcelPath)
	require.Equal(t, "words", cfg.BudgetUnit)
	require.Equal(t, DefaultExemplarBudget, cfg.ExemplarBudget)
	require.Zero(t, cfg.AIQPS)
	require.EqualValues(t, 1, cfg.NodeID)
	require.Equal(t, []string{"gpt-3.5-turbo", "gpt-4"}, cfg.Models)
	require.Equal(t, "gpt-3.5-turbo", cfg.DefaultModel())
	require.Empty(t, cfg.AIAPIKey)
	require.Equal(t, 2*time.Minute, cfg.AITimeout)
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MUTARJIM_DATA_DIR", dir)
	t.Setenv("MUTARJIM_DB_PATH", "")
	t.Setenv("MUTARJIM_BUDGET_UNIT", " Tokens ")
	t.Setenv("MUTARJIM_EXEMPLAR_BUDGET", "300")
	t.Setenv("MUTARJIM_MODELS", " gpt-4o , ,gpt-4 ")
	t.Setenv("MUTARJIM_AI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "translations.db"), cfg.DBPath)
	require.Equal(t, "tokens", cfg.BudgetUnit)
	require.Equal(t, 300, cfg.ExemplarBudget)
	require.Equal(t, []string{"gpt-4o", "gpt-4"}, cfg.Models)
	require.Equal(t, "sk-from-env", cfg.AIAPIKey)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("MUTARJIM_BUDGET_UNIT", "")
	t.Setenv("MUTARJIM_EXEMPLAR_BUDGET", "lots")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("MUTARJIM_EXEMPLAR_BUDGET", "")
	t.Setenv("MUTARJIM_BUDGET_UNIT", "characters")
	_, err = Load()
	require.Error(t, err)
}
