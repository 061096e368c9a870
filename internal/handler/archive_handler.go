package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mutarjim/internal/service"
)

type ArchiveHandler struct {
	service  service.ArchiveService
	importer service.ImportService
}

type saveRequest struct {
	Title       string `json:"title"`
	SourceText  string `json:"sourceText"`
	Style       string `json:"style"`
	Model       string `json:"model"`
	Translation string `json:"translation"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
}

type dedupeResponse struct {
	Removed int64 `json:"removed"`
}

func NewArchiveHandler(service service.ArchiveService, importer service.ImportService) *ArchiveHandler {
	return &ArchiveHandler{service: service, importer: importer}
}

func (h *ArchiveHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/translations", h.Search)
	g.POST("/translations", h.Save)
	g.GET("/translations/:id", h.Get)
	g.PUT("/translations/:id", h.Update)
	g.POST("/translations/dedupe", h.Deduplicate)
	g.POST("/translations/import", h.Import)
}

// Search lists archived translations. The optional q parameter filters
// case-insensitively over every text field.
func (h *ArchiveHandler) Search(c echo.Context) error {
	items, err := h.service.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return writeServiceError(c, err)
	}
	resp := make([]translationResponse, 0, len(items))
	for _, t := range items {
		resp = append(resp, toTranslationResponse(t))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ArchiveHandler) Get(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	t, err := h.service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTranslationResponse(t))
}

// Save stores a reviewed translation.
func (h *ArchiveHandler) Save(c echo.Context) error {
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	t, err := h.service.Save(c.Request().Context(), service.SaveRequest(req))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, toTranslationResponse(t))
}

// Update re-saves an edited translation in place.
func (h *ArchiveHandler) Update(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid id"})
	}
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	t, err := h.service.Update(c.Request().Context(), id, service.SaveRequest(req))
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, toTranslationResponse(t))
}

func (h *ArchiveHandler) Deduplicate(c echo.Context) error {
	removed, err := h.service.Deduplicate(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dedupeResponse{Removed: removed})
}

// Import reads an uploaded spreadsheet from the "file" form field.
func (h *ArchiveHandler) Import(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "file is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "failed to read file"})
	}
	defer f.Close()

	res, err := h.importer.ImportReader(c.Request().Context(), f)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
