package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pickflick/internal/handler"
)

// RegisterMovies registers the catalog proxy.  cache wraps the GET routes
// only; search is a POST and always goes upstream.
func RegisterMovies(api *echo.Group, h *handler.MovieHandler, cache echo.MiddlewareFunc) {
	g := api.Group("/movies")
	g.POST("/search", h.Search)
	g.GET("/popular", h.Popular, cache)
	g.GET("/:movieId", h.Details, cache)
}
