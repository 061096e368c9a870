package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"mutarjim/internal/logger"
	"mutarjim/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeServiceError(c echo.Context, err error) error {
	var inputErr *service.InputError
	switch {
	case errors.As(err, &inputErr):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: inputErr.Reason, Field: inputErr.Field})
	case errors.Is(err, service.ErrInvalid):
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request"})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{Error: "resource not found"})
	case errors.Is(err, service.ErrNotConfigured):
		return c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "translation service is not configured"})
	case errors.Is(err, service.ErrService):
		return c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error()})
	case errors.Is(err, service.ErrStore):
		logger.Error("archive store failed", "module", "handler", "action", "request", "resource", "translation", "result", "failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "archive unavailable"})
	default:
		logger.Error("request failed", "module", "handler", "action", "request", "resource", "http", "result", "failed", "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

// Error returns a JSON error response with the given status and message
func Error(c echo.Context, status int, message string) error {
	return c.JSON(status, errorResponse{Error: message})
}
