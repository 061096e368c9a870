package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mutarjim/internal/service"
)

type TranslationHandler struct {
	service service.TranslationService
	archive service.ArchiveService
	models  []string
}

type translateRequest struct {
	Title      string `json:"title"`
	SourceText string `json:"sourceText"`
	Style      string `json:"style"`
	Model      string `json:"model"`
}

type styleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func NewTranslationHandler(service service.TranslationService, archive service.ArchiveService, models []string) *TranslationHandler {
	return &TranslationHandler{service: service, archive: archive, models: models}
}

func (h *TranslationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/styles", h.ListStyles)
	g.GET("/statuses", h.ListStatuses)
	g.GET("/models", h.ListModels)
	g.POST("/translate", h.Translate)
	g.POST("/translate/preview", h.Preview)
}

// Translate returns a draft for review. Nothing is saved.
func (h *TranslationHandler) Translate(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	draft, err := h.service.Translate(c.Request().Context(), service.TranslateRequest(req))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, draft)
}

// Preview returns the assembled prompt without calling the provider.
func (h *TranslationHandler) Preview(c echo.Context) error {
	var req translateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	preview, err := h.service.Preview(c.Request().Context(), service.TranslateRequest(req))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *TranslationHandler) ListStyles(c echo.Context) error {
	profiles := h.archive.Styles()
	resp := make([]styleResponse, 0, len(profiles))
	for _, p := range profiles {
		resp = append(resp, styleResponse{ID: p.ID, Name: p.DisplayName, Kind: p.Kind.String()})
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *TranslationHandler) ListStatuses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.archive.Statuses())
}

// ListModels returns the models offered for selection. The first is the default.
func (h *TranslationHandler) ListModels(c echo.Context) error {
	models := h.models
	if models == nil {
		models = []string{}
	}
	return c.JSON(http.StatusOK, models)
}
