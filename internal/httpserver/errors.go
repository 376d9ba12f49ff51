package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/pharmacy/internal/service"
)

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvalidCode):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrConflict), errors.Is(err, service.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, service.ErrPrescriptionRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrTooManyRequests):
		return http.StatusTooManyRequests
	case errors.Is(err, service.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail logs a failed handler event and returns the matching HTTP error.
// Client errors carry the service message, server errors a generic one.
func fail(l *slog.Logger, event string, err error, reason string) error {
	code := statusOf(err)
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "reason", reason, "error", err)
		if code == http.StatusServiceUnavailable {
			return echo.NewHTTPError(code, err.Error())
		}
		return echo.NewHTTPError(code, reason)
	}
	l.Warn(event, "status", code, "reason", reason, "error", err)
	return echo.NewHTTPError(code, err.Error())
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
