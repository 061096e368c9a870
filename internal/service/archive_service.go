package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"mutarjim/internal/logger"
	"mutarjim/internal/metrics"
	"mutarjim/internal/model"
	"mutarjim/internal/repository"
	"mutarjim/internal/service/ai"
)

// SaveRequest carries the reviewed fields of a translation.
type SaveRequest struct {
	Title       string `json:"title"`
	SourceText  string `json:"sourceText"`
	Style       string `json:"style"`
	Model       string `json:"model"`
	Translation string `json:"translation"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
}

// StatusOption is one review state as offered to the reviewer.
type StatusOption struct {
	Value model.Status `json:"value"`
	Label string       `json:"label"`
}

// ArchiveService stores reviewed translations and answers queries over them.
type ArchiveService interface {
	Save(ctx context.Context, req SaveRequest) (model.Translation, error)
	// Update overwrites an existing record with the edited fields.
	Update(ctx context.Context, id int64, req SaveRequest) (model.Translation, error)
	Get(ctx context.Context, id int64) (model.Translation, error)
	List(ctx context.Context) ([]model.Translation, error)
	// Search matches query case-insensitively against every text field.
	// A blank query returns everything.
	Search(ctx context.Context, query string) ([]model.Translation, error)
	// Deduplicate keeps the earliest record of each
	// (title, source text, translation) group and returns how many were removed.
	Deduplicate(ctx context.Context) (int64, error)
	Styles() []ai.StyleProfile
	Statuses() []StatusOption
}

type archiveService struct {
	repo   repository.TranslationRepository
	styles *ai.StyleRegistry
}

// NewArchiveService creates a new archive service.
func NewArchiveService(repo repository.TranslationRepository, styles *ai.StyleRegistry) ArchiveService {
	return &archiveService{
		repo:   repo,
		styles: styles,
	}
}

// normalize validates req and returns the record to write. current is the
// stored style on update; it may stay even when no longer registered.
func (s *archiveService) normalize(req SaveRequest, current string) (model.Translation, error) {
	if strings.TrimSpace(req.SourceText) == "" {
		return model.Translation{}, &InputError{Field: "sourceText", Reason: "source text is required"}
	}

	style := strings.TrimSpace(req.Style)
	if p, ok := s.styles.Lookup(style); ok {
		style = p.ID
	} else if current == "" || style != current {
		return model.Translation{}, &InputError{Field: "style", Reason: "unknown style " + style}
	}

	status := model.StatusDraft
	if v := strings.TrimSpace(req.Status); v != "" {
		parsed, ok := model.ParseStatus(v)
		if !ok {
			return model.Translation{}, &InputError{Field: "status", Reason: "unknown status " + v}
		}
		status = parsed
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = model.DefaultTitle
	}

	return model.Translation{
		Title:       title,
		SourceText:  req.SourceText,
		Style:       style,
		Model:       strings.TrimSpace(req.Model),
		Translation: req.Translation,
		Notes:       req.Notes,
		Status:      status,
	}, nil
}

func (s *archiveService) Save(ctx context.Context, req SaveRequest) (model.Translation, error) {
	t, err := s.normalize(req, "")
	if err != nil {
		return model.Translation{}, err
	}
	saved, err := s.repo.Create(ctx, t)
	if err != nil {
		logger.Error("translation save failed", "module", "service", "action", "create", "resource", "translation", "result", "failed", "error", err)
		return model.Translation{}, &StoreError{Op: "save translation", Err: err}
	}
	metrics.RecordsSaved.WithLabelValues("create").Inc()
	logger.Info("translation saved", "module", "service", "action", "create", "resource", "translation", "result", "ok", "id", saved.ID, "style", saved.Style, "status", saved.Status)
	return saved, nil
}

func (s *archiveService) Update(ctx context.Context, id int64, req SaveRequest) (model.Translation, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return model.Translation{}, err
	}
	t, err := s.normalize(req, current.Style)
	if err != nil {
		return model.Translation{}, err
	}
	t.ID = id
	t.CreatedAt = current.CreatedAt

	updated, err := s.repo.Update(ctx, t)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Translation{}, ErrNotFound
		}
		logger.Error("translation update failed", "module", "service", "action", "update", "resource", "translation", "result", "failed", "id", id, "error", err)
		return model.Translation{}, &StoreError{Op: "update translation", Err: err}
	}
	metrics.RecordsSaved.WithLabelValues("update").Inc()
	logger.Info("translation updated", "module", "service", "action", "update", "resource", "translation", "result", "ok", "id", id, "status", updated.Status)
	return updated, nil
}

func (s *archiveService) Get(ctx context.Context, id int64) (model.Translation, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Translation{}, ErrNotFound
		}
		return model.Translation{}, &StoreError{Op: "get translation", Err: err}
	}
	return t, nil
}

func (s *archiveService) List(ctx context.Context) ([]model.Translation, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, &StoreError{Op: "list translations", Err: err}
	}
	return items, nil
}

func (s *archiveService) Search(ctx context.Context, query string) ([]model.Translation, error) {
	items, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	// Casers carry state and are not shared across requests.
	fold := cases.Fold()
	needle := foldText(fold, strings.TrimSpace(query))
	if needle == "" {
		return items, nil
	}

	matches := make([]model.Translation, 0)
	for _, t := range items {
		if s.matches(fold, t, needle) {
			matches = append(matches, t)
		}
	}
	return matches, nil
}

func (s *archiveService) matches(fold cases.Caser, t model.Translation, needle string) bool {
	fields := []string{t.Title, t.SourceText, t.Style, t.Model, t.Translation, t.Notes, string(t.Status), t.Status.Label()}
	if p, ok := s.styles.Lookup(t.Style); ok {
		fields = append(fields, p.DisplayName)
	}
	for _, f := range fields {
		if strings.Contains(foldText(fold, f), needle) {
			return true
		}
	}
	return false
}

// foldText applies NFC and Unicode case folding so that composed and
// decomposed forms compare equal.
func foldText(fold cases.Caser, v string) string {
	return fold.String(norm.NFC.String(v))
}

func (s *archiveService) Deduplicate(ctx context.Context) (int64, error) {
	removed, err := s.repo.Deduplicate(ctx)
	if err != nil {
		logger.Error("deduplicate failed", "module", "service", "action", "delete", "resource", "translation", "result", "failed", "error", err)
		return 0, &StoreError{Op: "deduplicate", Err: err}
	}
	metrics.DuplicatesRemoved.Add(float64(removed))
	logger.Info("deduplicate finished", "module", "service", "action", "delete", "resource", "translation", "result", "ok", "removed", removed)
	return removed, nil
}

func (s *archiveService) Styles() []ai.StyleProfile {
	return s.styles.List()
}

func (s *archiveService) Statuses() []StatusOption {
	out := make([]StatusOption, 0, len(model.Statuses))
	for _, st := range model.Statuses {
		out = append(out, StatusOption{Value: st, Label: st.Label()})
	}
	return out
}
