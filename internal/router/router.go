package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pickflick/internal/handler"
)

// RegisterRoutes registers the unauthenticated health checks.  /healthz is
// for load balancers; /api/health is what the web client polls.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
	e.GET("/api/health", handler.APIHealth)
}

// API returns the /api group with the given middlewares applied, so that
// every feature router shares the rate limiter.
func API(e *echo.Echo, m ...echo.MiddlewareFunc) *echo.Group {
	return e.Group("/api", m...)
}
