package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mutarjim/internal/handler"
	transport "mutarjim/internal/http"
	"mutarjim/internal/repository"
	"mutarjim/internal/repository/testutil"
	"mutarjim/internal/service"
	"mutarjim/internal/service/ai"
)

type echoProvider struct {
	err error
}

func (p *echoProvider) Test(ctx context.Context) (string, error) { return "pong", p.err }
func (p *echoProvider) Name() string                             { return "echo" }
func (p *echoProvider) Complete(ctx context.Context, model, prompt string) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	return " ترجمة " + model + " ", nil
}

func newTestRouter(t *testing.T, provider *echoProvider) *echo.Echo {
	t.Helper()
	database := testutil.NewTestDB(t)
	translations := repository.NewTranslationRepository(database)
	settings := repository.NewSettingsRepository(database)
	styles, err := ai.NewStyleRegistry()
	require.NoError(t, err)

	defaults := service.AIDefaults{Provider: ai.ProviderOpenAI, APIKey: "sk-test", Model: "gpt-4"}
	limiter := ai.NewRateLimiter(0)
	translator := service.NewTranslationService(translations, settings, styles, limiter, service.TranslationOptions{
		Defaults:    defaults,
		NewProvider: func(ai.Config) (ai.Provider, error) { return provider, nil },
	})
	archive := service.NewArchiveService(translations, styles)

	return transport.NewRouter(
		handler.NewTranslationHandler(translator, archive, []string{"gpt-4", "gpt-3.5-turbo"}),
		handler.NewArchiveHandler(archive, service.NewImportService(settings, repository.NewTransactor(database))),
		handler.NewSettingsHandler(service.NewSettingsService(settings, defaults, limiter)),
		"",
	)
}

func do(t *testing.T, e *echo.Echo, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRouter_TranslateReviewSave(t *testing.T) {
	e := newTestRouter(t, &echoProvider{})

	rec := do(t, e, http.MethodPost, "/api/translate", map[string]string{
		"title":      "Sea",
		"sourceText": "The sea is calm.",
		"style":      ai.StyleAlJahiz,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	draft := decode[service.TranslationDraft](t, rec)
	require.Equal(t, "ترجمة gpt-4", draft.Translation)
	require.NotEmpty(t, rec.Header().Get(transport.RequestIDHeader))

	// Nothing is stored until the reviewer saves.
	rec = do(t, e, http.MethodGet, "/api/translations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, decode[[]map[string]any](t, rec))

	rec = do(t, e, http.MethodPost, "/api/translations", map[string]string{
		"title":       draft.Title,
		"sourceText":  draft.SourceText,
		"style":       draft.Style,
		"model":       draft.Model,
		"translation": draft.Translation + "!",
		"status":      "good",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	saved := decode[map[string]any](t, rec)
	id := saved["id"].(string)
	require.Equal(t, "جيدة", saved["statusLabel"])

	rec = do(t, e, http.MethodPut, "/api/translations/"+id, map[string]string{
		"sourceText":  draft.SourceText,
		"style":       draft.Style,
		"translation": "البحر ساكن.",
		"status":      "final",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/translations?q=%D8%B3%D8%A7%D9%83%D9%86", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	found := decode[[]map[string]any](t, rec)
	require.Len(t, found, 1)
	require.Equal(t, id, found[0]["id"])
	require.Equal(t, "final", found[0]["status"])
}

func TestRouter_ErrorMapping(t *testing.T) {
	provider := &echoProvider{}
	e := newTestRouter(t, provider)

	rec := do(t, e, http.MethodPost, "/api/translate", map[string]string{"sourceText": " ", "style": ai.StyleAlJahiz})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "sourceText", decode[map[string]string](t, rec)["field"])

	rec = do(t, e, http.MethodPost, "/api/translate", map[string]string{"sourceText": "x", "style": "Homer"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	provider.err = errors.New("upstream timeout")
	rec = do(t, e, http.MethodPost, "/api/translate", map[string]string{"sourceText": "x", "style": ai.StyleAlJahiz})
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Contains(t, rec.Body.String(), "upstream timeout")

	rec = do(t, e, http.MethodGet, "/api/translations/123", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/translations/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Dedupe(t *testing.T) {
	e := newTestRouter(t, &echoProvider{})

	record := map[string]string{"title": "A", "sourceText": "x", "style": ai.StylePersonal, "translation": "y"}
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, do(t, e, http.MethodPost, "/api/translations", record).Code)
	}

	rec := do(t, e, http.MethodPost, "/api/translations/dedupe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, decode[map[string]int64](t, rec)["removed"])

	rec = do(t, e, http.MethodPost, "/api/translations/dedupe", nil)
	require.EqualValues(t, 0, decode[map[string]int64](t, rec)["removed"])
}

func TestRouter_Listings(t *testing.T) {
	e := newTestRouter(t, &echoProvider{})

	rec := do(t, e, http.MethodGet, "/api/styles", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	styles := decode[[]map[string]string](t, rec)
	require.Len(t, styles, len(ai.DefaultStyles()))
	require.Equal(t, "exemplar", styles[3]["kind"])

	rec = do(t, e, http.MethodGet, "/api/statuses", nil)
	require.Len(t, decode[[]map[string]string](t, rec), 4)

	rec = do(t, e, http.MethodGet, "/api/models", nil)
	require.Equal(t, []string{"gpt-4", "gpt-3.5-turbo"}, decode[[]string](t, rec))

	rec = do(t, e, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "mutarjim_"))
}

func TestRouter_Settings(t *testing.T) {
	e := newTestRouter(t, &echoProvider{})

	rec := do(t, e, http.MethodGet, "/api/settings/ai", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[service.AISettings](t, rec)
	require.Equal(t, "***", got.APIKey)

	rec = do(t, e, http.MethodPut, "/api/settings/ai", map[string]any{"provider": "openai", "model": "gpt-4o", "exemplarBudget": 200})
	require.Equal(t, http.StatusOK, rec.Code)
	got = decode[service.AISettings](t, rec)
	require.Equal(t, "gpt-4o", got.Model)
	require.Equal(t, 200, got.ExemplarBudget)

	rec = do(t, e, http.MethodPut, "/api/settings/ai", map[string]any{"provider": "nope"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/settings/ai/test", map[string]any{"model": "gpt-4"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ImportUpload(t *testing.T) {
	e := newTestRouter(t, &echoProvider{})

	wb := excelize.NewFile()
	sheet := wb.GetSheetName(0)
	require.NoError(t, wb.SetSheetRow(sheet, "A1", &[]any{"title", "source_text", "translation", "status"}))
	require.NoError(t, wb.SetSheetRow(sheet, "A2", &[]any{"", "hello", "مرحبا", "نهائية"}))
	xlsx, err := wb.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, wb.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "translations.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/translations/import", &body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, service.ImportResult{Imported: 1}, decode[service.ImportResult](t, rec))

	rec = do(t, e, http.MethodGet, "/api/translations?q=untitled", nil)
	require.Len(t, decode[[]map[string]any](t, rec), 1)
}
