package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pickflick/internal/model"
)

func fakeCatalog(t *testing.T) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "dune", r.URL.Query().Get("query"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"page":2,"total_pages":3,"total_results":41,"results":[
			{"id":438631,"title":"Dune","overview":"Spice","poster_path":"/d.jpg","release_date":"2021-09-15","vote_average":7.8},
			{"id":841,"title":"Dune","overview":"1984","poster_path":null,"release_date":"","vote_average":6.2}]}`))
	})
	mux.HandleFunc("/movie/popular", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"total_results":0,"results":[]}`))
	})
	mux.HandleFunc("/movie/329865", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":329865,"title":"Arrival","overview":"Linguist","runtime":116,
			"genres":[{"id":18,"name":"Drama"}],"original_language":"en","popularity":40.5,"vote_average":7.6}`))
	})
	mux.HandleFunc("/movie/1", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"status_code":34}`, http.StatusNotFound)
	})
	mux.HandleFunc("/movie/2", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream broke", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", "key", "", time.Second)
}

func TestSearchMapsResults(t *testing.T) {
	page, err := fakeCatalog(t).Search(context.Background(), "dune", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 41, page.TotalResults)
	require.Len(t, page.Movies, 2)

	first := page.Movies[0]
	assert.Equal(t, model.CatalogID(438631), first.ID)
	assert.Equal(t, "/d.jpg", *first.PosterPath)
	assert.Equal(t, "2021-09-15", *first.ReleaseDate)
	assert.Nil(t, page.Movies[1].ReleaseDate, "empty dates become null")
}

func TestPopularClampsPage(t *testing.T) {
	page, err := fakeCatalog(t).Popular(context.Background(), 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Movies)
	assert.Empty(t, page.Movies)
}

func TestDetails(t *testing.T) {
	c := fakeCatalog(t)
	d, err := c.Details(context.Background(), 329865)
	require.NoError(t, err)
	assert.Equal(t, "Arrival", d.Title)
	assert.Equal(t, 116, d.Runtime)
	assert.Equal(t, []model.Genre{{ID: 18, Name: "Drama"}}, d.Genres)
	assert.Equal(t, "en", d.OriginalLanguage)

	_, err = c.Details(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Details(context.Background(), 2)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "500")
}
