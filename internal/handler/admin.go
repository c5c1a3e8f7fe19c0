package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/config"
	"github.com/iliyamo/pickflick/internal/middleware"
	"github.com/iliyamo/pickflick/internal/utils"
)

// SessionPurger deletes sessions idle for longer than a duration.
type SessionPurger interface {
	Purge(ctx context.Context, olderThan time.Duration) (int, error)
}

// AdminHandler serves the operator endpoints under /api/admin.
type AdminHandler struct {
	Sessions SessionPurger
	Cfg      config.AdminConfig
	Log      *zap.Logger
}

// NewAdminHandler panics when sessions is nil.
func NewAdminHandler(sessions SessionPurger, cfg config.AdminConfig, log *zap.Logger) *AdminHandler {
	if sessions == nil {
		panic("nil session purger passed to NewAdminHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminHandler{Sessions: sessions, Cfg: cfg, Log: log}
}

type loginInput struct {
	Password string `json:"password"`
}

// Login handles POST /api/admin/login.  It answers 401 for a wrong password
// and 503 when no admin password is configured.
func (h *AdminHandler) Login(c echo.Context) error {
	if h.Cfg.PasswordHash == "" || h.Cfg.JWTSecret == "" {
		return fail(c, http.StatusServiceUnavailable, "admin login is disabled")
	}
	var in loginInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if in.Password == "" {
		return failValidation(c, []FieldError{{Field: "password", Message: "Password is required"}})
	}
	if !utils.VerifyPassword(h.Cfg.PasswordHash, in.Password) {
		h.Log.Warn("admin login rejected", zap.String("ip", c.RealIP()))
		return fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	tok, err := utils.NewAccessToken(h.Cfg.JWTSecret, "admin", utils.RoleAdmin,
		time.Duration(h.Cfg.AccessTTLMin)*time.Minute)
	if err != nil {
		h.Log.Error("issue admin token", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "could not issue token")
	}
	return respond(c, http.StatusOK, "Login successful", tok)
}

// PurgeSessions handles POST /api/admin/sessions/purge?olderThan=24h.
func (h *AdminHandler) PurgeSessions(c echo.Context) error {
	raw := c.QueryParam("olderThan")
	if raw == "" {
		return failValidation(c, []FieldError{{Field: "olderThan", Message: "olderThan is required, e.g. 24h"}})
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return failValidation(c, []FieldError{{Field: "olderThan", Message: "olderThan must be a positive duration, e.g. 24h"}})
	}
	n, err := h.Sessions.Purge(c.Request().Context(), d)
	if err != nil {
		h.Log.Error("purge sessions", zap.Error(err))
		return fail(c, statusFor(err), messageFor(err, "Failed to purge sessions"))
	}
	h.Log.Info("admin purge", zap.String("subject", middleware.Subject(c)), zap.Int("count", n))
	return respond(c, http.StatusOK, "Sessions purged", echo.Map{"purged": n})
}
