package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pickflick/internal/service"
)

// Every JSON response uses the same envelope:
//
//	{"success": true,  "message": "...", "data": ...}
//	{"success": false, "message": "...", "errors": [...]}

func respond(c echo.Context, status int, message string, data any) error {
	body := echo.Map{"success": true, "message": message}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

func failValidation(c echo.Context, errs []FieldError) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success": false,
		"message": "Validation failed",
		"errors":  errs,
	})
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(err error) int {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict, service.KindInvalidState:
		return http.StatusConflict
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindExhausted:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// messageFor returns the client facing text of a typed error without the
// session code suffix; untyped errors get fallback.
func messageFor(err error, fallback string) string {
	var e *service.Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return fallback
}
