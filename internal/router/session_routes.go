package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pickflick/internal/handler"
)

// RegisterSessions registers the participant endpoints.  None of them
// require a token: knowing the session code is enough.
func RegisterSessions(api *echo.Group, h *handler.SessionHandler) {
	g := api.Group("/sessions")
	g.POST("", h.CreateSession)
	g.GET("/:code", h.GetSession)
	g.DELETE("/:code", h.DeleteSession)

	g.POST("/:code/movies", h.AddMovie)
	g.DELETE("/:code/movies/:movieId", h.RemoveMovie)
	g.POST("/:code/select", h.SelectMovie)
}
