package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	AppName    = "mutarjim"
	AppVersion = "1.0.0"
)

// Defaults for values that have no environment override.
const (
	DefaultAddr           = ":8080"
	DefaultDataDir        = "./data"
	DefaultExcelFile      = "translations.xlsx"
	DefaultExemplarBudget = 1500
	DefaultModels         = "gpt-3.5-turbo,gpt-4"
)

type Config struct {
	Addr      string
	DBPath    string
	DataDir   string
	StaticDir string
	LogLevel  string
	LogFormat string

	// ExcelPath is the seed spreadsheet imported once on first start.
	ExcelPath  string
	StylesFile string

	BudgetUnit     string
	ExemplarBudget int
	AIQPS          int
	NodeID         int64

	AIProvider string
	AIAPIKey   string
	AIBaseURL  string
	AIProxy    string
	AITimeout  time.Duration
	// Models are offered to the reviewer; the first is the default.
	Models []string
}

// DefaultModel is the model used when a request names none.
func (c Config) DefaultModel() string {
	if len(c.Models) == 0 {
		return ""
	}
	return c.Models[0]
}

func Load() (Config, error) {
	dataDir := getenv("MUTARJIM_DATA_DIR", DefaultDataDir)
	cfg := Config{
		Addr:       getenv("MUTARJIM_ADDR", DefaultAddr),
		DataDir:    filepath.Clean(dataDir),
		DBPath:     filepath.Clean(getenv("MUTARJIM_DB_PATH", filepath.Join(dataDir, "translations.db"))),
		StaticDir:  os.Getenv("MUTARJIM_STATIC_DIR"),
		LogLevel:   getenv("MUTARJIM_LOG_LEVEL", "info"),
		LogFormat:  getenv("MUTARJIM_LOG_FORMAT", "text"),
		ExcelPath:  getenv("MUTARJIM_EXCEL_PATH", filepath.Join(dataDir, DefaultExcelFile)),
		StylesFile: os.Getenv("MUTARJIM_STYLES_FILE"),
		BudgetUnit: strings.ToLower(getenv("MUTARJIM_BUDGET_UNIT", "words")),
		AIProvider: getenv("MUTARJIM_AI_PROVIDER", "openai"),
		AIAPIKey:   firstNonEmpty(os.Getenv("MUTARJIM_AI_API_KEY"), os.Getenv("OPENAI_API_KEY")),
		AIBaseURL:  os.Getenv("MUTARJIM_AI_BASE_URL"),
		AIProxy:    os.Getenv("MUTARJIM_AI_PROXY"),
		Models:     splitList(getenv("MUTARJIM_MODELS", DefaultModels)),
	}
	if cfg.StaticDir == "" {
		cfg.StaticDir = detectStaticDir()
	}
	cfg.StaticDir = filepath.Clean(cfg.StaticDir)

	var err error
	if cfg.ExemplarBudget, err = getInt("MUTARJIM_EXEMPLAR_BUDGET", DefaultExemplarBudget); err != nil {
		return Config{}, err
	}
	if cfg.AIQPS, err = getInt("MUTARJIM_AI_QPS", 0); err != nil {
		return Config{}, err
	}
	timeout, err := getInt("MUTARJIM_AI_TIMEOUT", 120)
	if err != nil {
		return Config{}, err
	}
	cfg.AITimeout = time.Duration(timeout) * time.Second
	nodeID, err := getInt("MUTARJIM_NODE_ID", 1)
	if err != nil {
		return Config{}, err
	}
	cfg.NodeID = int64(nodeID)

	switch cfg.BudgetUnit {
	case "words", "tokens":
	default:
		return Config{}, fmt.Errorf("MUTARJIM_BUDGET_UNIT: unknown unit %q", cfg.BudgetUnit)
	}
	if cfg.ExemplarBudget < 0 {
		return Config{}, fmt.Errorf("MUTARJIM_EXEMPLAR_BUDGET: must not be negative")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func detectStaticDir() string {
	candidates := []string{
		"./frontend/dist",
		"../frontend/dist",
	}
	for _, candidate := range candidates {
		indexPath := filepath.Join(candidate, "index.html")
		if info, err := os.Stat(indexPath); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return "./frontend/dist"
}
