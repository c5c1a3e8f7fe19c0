// Package catalog talks to the external movie catalog (a TMDB-compatible
// HTTP API).  The session core never calls it; the movie routes proxy it so
// browsers do not need the API key.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iliyamo/pickflick/internal/model"
)

// ErrNotFound is returned when the catalog has no movie with the given id.
var ErrNotFound = errors.New("catalog: movie not found")

// Catalog is the lookup surface consumed by the movie handlers.
type Catalog interface {
	Search(ctx context.Context, query string, page int) (*model.CatalogPage, error)
	Details(ctx context.Context, id int64) (*model.CatalogDetails, error)
	Popular(ctx context.Context, page int) (*model.CatalogPage, error)
}

// Client is a Catalog backed by HTTP.
type Client struct {
	baseURL  string
	apiKey   string
	language string
	http     *http.Client
}

// New returns a client.  A zero timeout falls back to ten seconds.
func New(baseURL, apiKey, language string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if language == "" {
		language = "en-US"
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		language: language,
		http:     &http.Client{Timeout: timeout},
	}
}

// wire types mirror the catalog's snake_case payloads.
type movieResult struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"poster_path"`
	ReleaseDate *string `json:"release_date"`
	VoteAverage float64 `json:"vote_average"`
}

type pagedResults struct {
	Page         int           `json:"page"`
	Results      []movieResult `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

type detailsResult struct {
	movieResult
	Runtime          int           `json:"runtime"`
	Genres           []model.Genre `json:"genres"`
	OriginalLanguage string        `json:"original_language"`
	Popularity       float64       `json:"popularity"`
}

func (m movieResult) toModel() model.CatalogMovie {
	out := model.CatalogMovie{
		ID:          model.CatalogID(m.ID),
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
	}
	// The catalog sends "" for unknown dates.
	if out.ReleaseDate != nil && *out.ReleaseDate == "" {
		out.ReleaseDate = nil
	}
	return out
}

func (p pagedResults) toModel() *model.CatalogPage {
	out := &model.CatalogPage{
		Movies:       make([]model.CatalogMovie, 0, len(p.Results)),
		TotalPages:   p.TotalPages,
		TotalResults: p.TotalResults,
		CurrentPage:  p.Page,
	}
	for _, r := range p.Results {
		out.Movies = append(out.Movies, r.toModel())
	}
	return out
}

// Search finds movies by title.
func (c *Client) Search(ctx context.Context, query string, page int) (*model.CatalogPage, error) {
	q := url.Values{}
	q.Set("query", query)
	q.Set("page", strconv.Itoa(max(page, 1)))
	q.Set("include_adult", "false")
	var res pagedResults
	if err := c.get(ctx, "/search/movie", q, &res); err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	return res.toModel(), nil
}

// Popular lists the catalog's popular movies.
func (c *Client) Popular(ctx context.Context, page int) (*model.CatalogPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))
	var res pagedResults
	if err := c.get(ctx, "/movie/popular", q, &res); err != nil {
		return nil, fmt.Errorf("popular movies: %w", err)
	}
	return res.toModel(), nil
}

// Details fetches one movie.
func (c *Client) Details(ctx context.Context, id int64) (*model.CatalogDetails, error) {
	var res detailsResult
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), url.Values{}, &res); err != nil {
		return nil, fmt.Errorf("movie details: %w", err)
	}
	return &model.CatalogDetails{
		CatalogMovie:     res.toModel(),
		Runtime:          res.Runtime,
		Genres:           res.Genres,
		OriginalLanguage: res.OriginalLanguage,
		Popularity:       res.Popularity,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("api_key", c.apiKey)
	q.Set("language", c.language)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("catalog returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
