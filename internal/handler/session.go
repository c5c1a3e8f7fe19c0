package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/model"
	"github.com/iliyamo/pickflick/internal/service"
)

// SessionManager is the part of service.SessionService the HTTP layer uses.
type SessionManager interface {
	Create(ctx context.Context) (*model.Session, error)
	Get(ctx context.Context, code string) (*model.Session, error)
	AddMovie(ctx context.Context, code string, entry model.MovieEntry) (*model.Session, error)
	RemoveMovie(ctx context.Context, code string, id model.MovieID) (*model.Session, error)
	SelectMovie(ctx context.Context, code string) (*service.Selection, error)
	Delete(ctx context.Context, code string) error
}

// SessionHandler exposes the session lifecycle under /api/sessions.  There
// is no authentication: holding the code is the access control.
type SessionHandler struct {
	Sessions SessionManager
	Log      *zap.Logger
	Now      func() time.Time
}

// NewSessionHandler panics when sessions is nil.
func NewSessionHandler(sessions SessionManager, log *zap.Logger) *SessionHandler {
	if sessions == nil {
		panic("nil session manager passed to NewSessionHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SessionHandler{Sessions: sessions, Log: log, Now: time.Now}
}

// code validates the :code path parameter and returns it upper-cased.
func (h *SessionHandler) code(c echo.Context) (string, bool) {
	code, err := service.NormalizeCode(c.Param("code"))
	if err != nil {
		return "", false
	}
	return code, true
}

func (h *SessionHandler) serviceError(c echo.Context, err error, fallback string) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.Log.Error(fallback, zap.String("path", c.Path()), zap.Error(err))
	}
	return fail(c, status, messageFor(err, fallback))
}

func invalidCode(c echo.Context) error {
	return failValidation(c, []FieldError{{Field: "sessionCode", Message: "Session code must be exactly 6 letters or numbers"}})
}

// CreateSession handles POST /api/sessions.
func (h *SessionHandler) CreateSession(c echo.Context) error {
	s, err := h.Sessions.Create(c.Request().Context())
	if err != nil {
		return h.serviceError(c, err, "Failed to create session")
	}
	return respond(c, http.StatusCreated, "Session created successfully", echo.Map{
		"sessionCode": s.Code,
		"movies":      s.Movies,
		"isActive":    s.IsActive,
	})
}

// GetSession handles GET /api/sessions/:code.  Clients poll it to follow
// other participants' changes.
func (h *SessionHandler) GetSession(c echo.Context) error {
	code, ok := h.code(c)
	if !ok {
		return invalidCode(c)
	}
	s, err := h.Sessions.Get(c.Request().Context(), code)
	if err != nil {
		return h.serviceError(c, err, "Failed to get session")
	}
	return respond(c, http.StatusOK, "", s)
}

// AddMovie handles POST /api/sessions/:code/movies.
func (h *SessionHandler) AddMovie(c echo.Context) error {
	code, ok := h.code(c)
	if !ok {
		return invalidCode(c)
	}
	var in movieInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	entry, errs := in.toEntry(h.Now())
	if len(errs) > 0 {
		return failValidation(c, errs)
	}
	s, err := h.Sessions.AddMovie(c.Request().Context(), code, entry)
	if err != nil {
		return h.serviceError(c, err, "Failed to add movie to session")
	}
	return respond(c, http.StatusOK, "Movie added to session successfully", s)
}

// RemoveMovie handles DELETE /api/sessions/:code/movies/:movieId.  Removing
// an id that is not in the list succeeds and returns the session unchanged.
func (h *SessionHandler) RemoveMovie(c echo.Context) error {
	code, ok := h.code(c)
	if !ok {
		return invalidCode(c)
	}
	id, err := model.ParseMovieID(c.Param("movieId"))
	if err != nil {
		return failValidation(c, []FieldError{{Field: "movieId", Message: "movie id must be a positive catalog number or a manual_ tag"}})
	}
	s, err := h.Sessions.RemoveMovie(c.Request().Context(), code, id)
	if err != nil {
		return h.serviceError(c, err, "Failed to remove movie from session")
	}
	return respond(c, http.StatusOK, "Movie removed from session successfully", s)
}

// SelectMovie handles POST /api/sessions/:code/select.  It ends the session.
func (h *SessionHandler) SelectMovie(c echo.Context) error {
	code, ok := h.code(c)
	if !ok {
		return invalidCode(c)
	}
	sel, err := h.Sessions.SelectMovie(c.Request().Context(), code)
	if err != nil {
		return h.serviceError(c, err, "Failed to select movie")
	}
	return respond(c, http.StatusOK, "Movie selected successfully", sel)
}

// DeleteSession handles DELETE /api/sessions/:code.
func (h *SessionHandler) DeleteSession(c echo.Context) error {
	code, ok := h.code(c)
	if !ok {
		return invalidCode(c)
	}
	if err := h.Sessions.Delete(c.Request().Context(), code); err != nil {
		return h.serviceError(c, err, "Failed to delete session")
	}
	return respond(c, http.StatusOK, "Session deleted successfully", nil)
}
