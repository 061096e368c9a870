package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"mutarjim/internal/service"
)

type SettingsHandler struct {
	service service.SettingsService
}

type aiSettingsRequest struct {
	Provider       string `json:"provider"`
	APIKey         string `json:"apiKey"`
	BaseURL        string `json:"baseUrl"`
	Model          string `json:"model"`
	MaxTokens      int    `json:"maxTokens"`
	ExemplarBudget int    `json:"exemplarBudget"`
	RateLimit      int    `json:"rateLimit"`
}

type aiTestResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func NewSettingsHandler(service service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: service}
}

func (h *SettingsHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/settings/ai", h.GetAISettings)
	g.PUT("/settings/ai", h.UpdateAISettings)
	g.POST("/settings/ai/test", h.TestAI)
}

// GetAISettings returns the AI configuration with the API key masked.
func (h *SettingsHandler) GetAISettings(c echo.Context) error {
	settings, err := h.service.GetAISettings(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, settings)
}

// UpdateAISettings saves the AI configuration. An empty or masked apiKey
// keeps the stored key.
func (h *SettingsHandler) UpdateAISettings(c echo.Context) error {
	var req aiSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	settings := service.AISettings(req)
	if err := h.service.SetAISettings(c.Request().Context(), &settings); err != nil {
		return writeServiceError(c, err)
	}
	// Return updated settings (with masked keys)
	return h.GetAISettings(c)
}

// TestAI sends a probe message with the submitted configuration.
func (h *SettingsHandler) TestAI(c echo.Context) error {
	var req aiSettingsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	}
	if req.Provider == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "provider is required"})
	}
	if req.Model == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "model is required"})
	}

	settings := service.AISettings(req)
	response, err := h.service.TestAI(c.Request().Context(), &settings)
	if err != nil {
		return c.JSON(http.StatusOK, aiTestResponse{
			Success: false,
			Error:   err.Error(),
		})
	}
	return c.JSON(http.StatusOK, aiTestResponse{
		Success: true,
		Message: response,
	})
}
