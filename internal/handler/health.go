package handler // declare the package name; contains HTTP handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health is a simple health-check endpoint used by load balancers and
// monitoring systems.  It returns a plain text "ok" with status 200.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// APIHealth answers GET /api/health with the JSON envelope the web client
// polls on start-up.
func APIHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   "PickFlick API is running!",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
