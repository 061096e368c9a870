package http

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"mutarjim/internal/logger"
)

// RequestIDHeader carries the per-request identifier in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware keeps a caller-supplied request ID or assigns one.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			c.Set("request_id", id)
			c.Response().Header().Set(RequestIDHeader, id)
			return next(c)
		}
	}
}

// RequestLoggerMiddleware logs HTTP requests using logger. Server errors
// log at error level, client errors at warn and the rest at debug.
func RequestLoggerMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			result, logf := "ok", logger.Debug
			switch {
			case status >= 500:
				result, logf = "failed", logger.Error
			case status >= 400:
				result, logf = "failed", logger.Warn
			}

			requestID, _ := c.Get("request_id").(string)
			logf("http request",
				"module", "http",
				"action", "request",
				"resource", "http",
				"result", result,
				"method", req.Method,
				"path", req.URL.Path,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
				"request_id", requestID,
			)
			return nil
		}
	}
}
