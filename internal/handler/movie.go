package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/catalog"
)

// MovieHandler proxies the external movie catalog so the API key stays on
// the server.
type MovieHandler struct {
	Catalog catalog.Catalog
	Log     *zap.Logger
}

// NewMovieHandler panics when cat is nil.
func NewMovieHandler(cat catalog.Catalog, log *zap.Logger) *MovieHandler {
	if cat == nil {
		panic("nil catalog passed to NewMovieHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &MovieHandler{Catalog: cat, Log: log}
}

func pageParam(c echo.Context) int {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	return page
}

func (h *MovieHandler) upstreamError(c echo.Context, err error, message string) error {
	h.Log.Warn(message, zap.Error(err))
	return fail(c, http.StatusBadGateway, message)
}

// Search handles POST /api/movies/search with {"query": "...", "page": n}.
func (h *MovieHandler) Search(c echo.Context) error {
	var in searchInput
	if err := c.Bind(&in); err != nil {
		return fail(c, http.StatusBadRequest, "invalid request body")
	}
	if errs := in.validate(); len(errs) > 0 {
		return failValidation(c, errs)
	}
	page, err := h.Catalog.Search(c.Request().Context(), in.Query, in.Page)
	if err != nil {
		return h.upstreamError(c, err, "Failed to search movies")
	}
	return respond(c, http.StatusOK, "", page)
}

// Popular handles GET /api/movies/popular?page=n.
func (h *MovieHandler) Popular(c echo.Context) error {
	page, err := h.Catalog.Popular(c.Request().Context(), pageParam(c))
	if err != nil {
		return h.upstreamError(c, err, "Failed to get popular movies")
	}
	return respond(c, http.StatusOK, "", page)
}

// Details handles GET /api/movies/:movieId.
func (h *MovieHandler) Details(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("movieId"), 10, 64)
	if err != nil || id <= 0 {
		return failValidation(c, []FieldError{{Field: "movieId", Message: "movie id must be a positive integer"}})
	}
	d, err := h.Catalog.Details(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fail(c, http.StatusNotFound, "Movie not found")
		}
		return h.upstreamError(c, err, "Failed to get movie details")
	}
	return respond(c, http.StatusOK, "", d)
}
