package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"mutarjim/internal/model"
)

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// IDs are sent as strings; snowflake values exceed the range JSON numbers
// keep exactly in browsers.
type translationResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	SourceText  string `json:"sourceText"`
	Style       string `json:"style"`
	Model       string `json:"model"`
	Translation string `json:"translation"`
	Notes       string `json:"notes"`
	Status      string `json:"status"`
	StatusLabel string `json:"statusLabel"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func toTranslationResponse(t model.Translation) translationResponse {
	return translationResponse{
		ID:          strconv.FormatInt(t.ID, 10),
		Title:       t.Title,
		SourceText:  t.SourceText,
		Style:       t.Style,
		Model:       t.Model,
		Translation: t.Translation,
		Notes:       t.Notes,
		Status:      string(t.Status),
		StatusLabel: t.Status.Label(),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
}
