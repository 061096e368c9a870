package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"mutarjim/internal/logger"
	"mutarjim/internal/metrics"
	"mutarjim/internal/model"
	"mutarjim/internal/repository"
)

// ImportResult reports what a spreadsheet import did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportService seeds the archive from a translations spreadsheet.
type ImportService interface {
	// ImportFile imports every usable row of the workbook at path and sets
	// the import marker.
	ImportFile(ctx context.Context, path string) (ImportResult, error)
	// ImportReader imports from an already opened workbook stream.
	ImportReader(ctx context.Context, r io.Reader) (ImportResult, error)
	// SeedIfNeeded imports path once: it does nothing when the marker is
	// set or the file does not exist. The bool reports whether it ran.
	SeedIfNeeded(ctx context.Context, path string) (ImportResult, bool, error)
}

type importService struct {
	settings repository.SettingsRepository
	tx       repository.Transactor
}

// NewImportService creates a new import service. Each workbook is written
// in a single transaction through tx, marker included.
func NewImportService(settings repository.SettingsRepository, tx repository.Transactor) ImportService {
	return &importService{settings: settings, tx: tx}
}

var importColumns = []string{"title", "source_text", "style", "model", "translation", "notes", "status"}

func (s *importService) SeedIfNeeded(ctx context.Context, path string) (ImportResult, bool, error) {
	if path == "" {
		return ImportResult{}, false, nil
	}
	_, imported, err := s.settings.ImportedAt(ctx)
	if err != nil {
		return ImportResult{}, false, &StoreError{Op: "read import marker", Err: err}
	}
	if imported {
		return ImportResult{}, false, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ImportResult{}, false, nil
		}
		return ImportResult{}, false, fmt.Errorf("stat %s: %w", path, err)
	}

	res, err := s.ImportFile(ctx, path)
	if err != nil {
		return res, false, err
	}
	return res, true, nil
}

func (s *importService) ImportFile(ctx context.Context, path string) (ImportResult, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return ImportResult{}, &InputError{Field: "file", Reason: fmt.Sprintf("open workbook: %v", err)}
	}
	defer f.Close()

	res, err := s.importWorkbook(ctx, f)
	if err != nil {
		return res, err
	}
	logger.Info("excel import finished", "module", "service", "action", "import", "resource", "translation", "result", "ok", "file", path, "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func (s *importService) ImportReader(ctx context.Context, r io.Reader) (ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return ImportResult{}, &InputError{Field: "file", Reason: fmt.Sprintf("open workbook: %v", err)}
	}
	defer f.Close()

	res, err := s.importWorkbook(ctx, f)
	if err != nil {
		return res, err
	}
	logger.Info("excel import finished", "module", "service", "action", "import", "resource", "translation", "result", "ok", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}

func (s *importService) importWorkbook(ctx context.Context, f *excelize.File) (ImportResult, error) {
	var res ImportResult

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return res, &InputError{Field: "file", Reason: "workbook has no sheets"}
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return res, &InputError{Field: "file", Reason: fmt.Sprintf("read rows: %v", err)}
	}
	if len(rows) == 0 {
		return res, &InputError{Field: "file", Reason: "sheet is empty"}
	}

	index := headerIndex(rows[0])
	for _, required := range []string{"source_text", "translation"} {
		if _, ok := index[required]; !ok {
			return res, &InputError{Field: "file", Reason: "missing column " + required}
		}
	}

	var records []model.Translation
	for n, row := range rows[1:] {
		t, ok := rowToTranslation(row, index)
		if !ok {
			res.Skipped++
			logger.Debug("excel row skipped", "module", "service", "action", "import", "resource", "translation", "result", "skipped", "row", n+2)
			continue
		}
		records = append(records, t)
	}

	// rows and marker commit together or not at all
	err = s.tx.WithTx(ctx, func(repos repository.Repos) error {
		for _, t := range records {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := repos.Translations.Create(ctx, t); err != nil {
				return &StoreError{Op: "import translation", Err: err}
			}
		}
		if err := repos.Settings.MarkImported(ctx, time.Now()); err != nil {
			return &StoreError{Op: "set import marker", Err: err}
		}
		return nil
	})
	if err != nil {
		var storeErr *StoreError
		if !errors.As(err, &storeErr) && ctx.Err() == nil {
			err = &StoreError{Op: "import workbook", Err: err}
		}
		return ImportResult{Skipped: res.Skipped}, err
	}

	res.Imported = len(records)
	metrics.RecordsSaved.WithLabelValues("import").Add(float64(res.Imported))
	return res, nil
}

// headerIndex maps known column names to their position in the header row.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(importColumns))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		for _, col := range importColumns {
			if key == col {
				if _, seen := index[col]; !seen {
					index[col] = i
				}
			}
		}
	}
	return index
}

// rowToTranslation reports false for rows without source or translation.
// Style is kept verbatim: historical sheets name styles that were since
// retired.
func rowToTranslation(row []string, index map[string]int) (model.Translation, bool) {
	cell := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	t := model.Translation{
		Title:       cell("title"),
		SourceText:  cell("source_text"),
		Style:       cell("style"),
		Model:       cell("model"),
		Translation: cell("translation"),
		Notes:       cell("notes"),
	}
	if t.SourceText == "" || t.Translation == "" {
		return model.Translation{}, false
	}
	if t.Title == "" {
		t.Title = model.DefaultTitle
	}
	t.Status, _ = model.ParseStatus(cell("status"))
	return t, true
}
