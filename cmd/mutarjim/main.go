// Command mutarjim serves the translation archive and its maintenance tasks.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mutarjim/internal/config"
	"mutarjim/internal/db"
	"mutarjim/internal/handler"
	transport "mutarjim/internal/http"
	"mutarjim/internal/logger"
	"mutarjim/internal/network"
	"mutarjim/internal/repository"
	"mutarjim/internal/service"
	"mutarjim/internal/service/ai"
	"mutarjim/internal/snowflake"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	addr     string
	dbPath   string
	logLevel string
	static   string
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Personal English to Arabic translation archive",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&f.dbPath, "db", "", "SQLite archive path (overrides MUTARJIM_DB_PATH)")
	cmd.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the review HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), f)
		},
	}
	serve.Flags().StringVar(&f.addr, "addr", "", "Listen address (overrides MUTARJIM_ADDR)")
	serve.Flags().StringVar(&f.static, "static-dir", "", "Frontend directory (overrides MUTARJIM_STATIC_DIR)")

	var file string
	importCmd := &cobra.Command{
		Use:   "import",
		Short: "Import translations from an Excel workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), f, file)
		},
	}
	importCmd.Flags().StringVar(&file, "file", "", "Workbook path (defaults to MUTARJIM_EXCEL_PATH)")

	dedupe := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate translations, keeping the earliest of each",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDedupe(cmd.Context(), f)
		},
	}

	cmd.AddCommand(serve, importCmd, dedupe, &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s\n", config.AppName, config.AppVersion)
		},
	})
	return cmd
}

// app holds the wired components shared by every command.
type app struct {
	cfg          config.Config
	db           *sql.DB
	styles       *ai.StyleRegistry
	translations repository.TranslationRepository
	settings     repository.SettingsRepository
	archive      service.ArchiveService
	importer     service.ImportService
}

func bootstrap(f flags) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if f.addr != "" {
		cfg.Addr = f.addr
	}
	if f.dbPath != "" {
		cfg.DBPath = f.dbPath
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	if f.static != "" {
		cfg.StaticDir = f.static
	}

	logger.Init(logger.ParseLevel(cfg.LogLevel), cfg.LogFormat)
	if err := snowflake.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("init id generator: %w", err)
	}

	var extra []ai.StyleProfile
	if cfg.StylesFile != "" {
		extra, err = ai.LoadStyleFile(cfg.StylesFile)
		if err != nil {
			return nil, err
		}
	}
	styles, err := ai.NewStyleRegistry(extra...)
	if err != nil {
		return nil, fmt.Errorf("build style registry: %w", err)
	}

	dbConn, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	translations := repository.NewTranslationRepository(dbConn)
	settings := repository.NewSettingsRepository(dbConn)

	count, err := translations.Count(context.Background())
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("count translations: %w", err)
	}
	logger.Info("archive opened", "module", "main", "action", "init", "resource", "db", "result", "ok", "path", cfg.DBPath, "records", count, "styles", len(styles.List()))
	return &app{
		cfg:          cfg,
		db:           dbConn,
		styles:       styles,
		translations: translations,
		settings:     settings,
		archive:      service.NewArchiveService(translations, styles),
		importer:     service.NewImportService(settings, repository.NewTransactor(dbConn)),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

func (a *app) aiDefaults() (service.AIDefaults, error) {
	client, err := network.NewHTTPClient(a.cfg.AIProxy, a.cfg.AITimeout)
	if err != nil {
		return service.AIDefaults{}, fmt.Errorf("MUTARJIM_AI_PROXY: %w", err)
	}
	return service.AIDefaults{
		Provider:       a.cfg.AIProvider,
		APIKey:         a.cfg.AIAPIKey,
		BaseURL:        a.cfg.AIBaseURL,
		Model:          a.cfg.DefaultModel(),
		ExemplarBudget: a.cfg.ExemplarBudget,
		HTTPClient:     client,
	}, nil
}

func runServe(ctx context.Context, f flags) error {
	a, err := bootstrap(f)
	if err != nil {
		return err
	}
	defer a.Close()

	if res, ran, err := a.importer.SeedIfNeeded(ctx, a.cfg.ExcelPath); err != nil {
		logger.Warn("excel seed import failed", "module", "main", "action", "import", "resource", "translation", "result", "failed", "file", a.cfg.ExcelPath, "error", err)
	} else if ran {
		logger.Info("excel seed imported", "module", "main", "action", "import", "resource", "translation", "result", "ok", "imported", res.Imported, "skipped", res.Skipped)
	}

	cost, err := ai.NewCostFunc(a.cfg.BudgetUnit)
	if err != nil {
		return err
	}
	defaults, err := a.aiDefaults()
	if err != nil {
		return err
	}
	limiter := ai.NewRateLimiter(a.cfg.AIQPS)
	settingsService := service.NewSettingsService(a.settings, defaults, limiter)
	if err := settingsService.ApplyRateLimit(ctx); err != nil {
		return err
	}
	translator := service.NewTranslationService(a.translations, a.settings, a.styles, limiter, service.TranslationOptions{
		Defaults: defaults,
		Cost:     cost,
	})

	router := transport.NewRouter(
		handler.NewTranslationHandler(translator, a.archive, a.cfg.Models),
		handler.NewArchiveHandler(a.archive, a.importer),
		handler.NewSettingsHandler(settingsService),
		a.cfg.StaticDir,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", "module", "main", "action", "start", "resource", "http", "result", "ok", "addr", a.cfg.Addr)
		if err := router.Start(a.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("start server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down", "module", "main", "action", "stop", "resource", "http", "result", "ok")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return router.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func runImport(ctx context.Context, f flags, file string) error {
	a, err := bootstrap(f)
	if err != nil {
		return err
	}
	defer a.Close()

	if file == "" {
		file = a.cfg.ExcelPath
	}
	res, err := a.importer.ImportFile(ctx, file)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d translations (%d rows skipped)\n", res.Imported, res.Skipped)
	return nil
}

func runDedupe(ctx context.Context, f flags) error {
	a, err := bootstrap(f)
	if err != nil {
		return err
	}
	defer a.Close()

	removed, err := a.archive.Deduplicate(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("removed %d duplicate translations\n", removed)
	return nil
}
