package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/pickflick/internal/handler"
	"github.com/iliyamo/pickflick/internal/middleware"
	"github.com/iliyamo/pickflick/internal/utils"
)

// RegisterAdmin registers operator endpoints under /api/admin.  Login is
// open; everything else requires an ADMIN token.
func RegisterAdmin(api *echo.Group, h *handler.AdminHandler, jwtSecret string) {
	api.POST("/admin/login", h.Login)

	g := api.Group(
		"/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(utils.RoleAdmin),
	)
	g.POST("/sessions/purge", h.PurgeSessions)
}
