package service

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pickflick/internal/model"
)

func entries(n int) []model.MovieEntry {
	out := make([]model.MovieEntry, n)
	for i := range out {
		out[i] = model.MovieEntry{ID: model.CatalogID(int64(i + 1)), Title: "m" + strconv.Itoa(i+1), AddedBy: "t"}
	}
	return out
}

func TestUniformSelectorEmpty(t *testing.T) {
	_, err := NewUniformSelector().Choose(nil)
	assert.ErrorIs(t, err, ErrNoMoviesAvailable)
}

func TestUniformSelectorSingle(t *testing.T) {
	got, err := NewUniformSelector().Choose(entries(1))
	require.NoError(t, err)
	assert.Equal(t, model.CatalogID(1), got.ID)
}

func TestUniformSelectorIsUniform(t *testing.T) {
	const draws = 40_000
	movies := entries(4)
	sel := NewUniformSelector()
	counts := map[model.MovieID]int{}
	for i := 0; i < draws; i++ {
		m, err := sel.Choose(movies)
		require.NoError(t, err)
		counts[m.ID]++
	}
	expected := float64(draws) / float64(len(movies))
	chi := 0.0
	for _, m := range movies {
		d := float64(counts[m.ID]) - expected
		chi += d * d / expected
	}
	// 3 degrees of freedom; 30 is beyond p = 0.00001.
	assert.Less(t, chi, 30.0)
}

func TestUniformSelectorReturnsCopy(t *testing.T) {
	p := "/poster.jpg"
	movies := []model.MovieEntry{{ID: model.CatalogID(1), PosterPath: &p}}
	sel := &UniformSelector{intn: func(int) int { return 0 }}
	got, err := sel.Choose(movies)
	require.NoError(t, err)
	*got.PosterPath = "/changed.jpg"
	assert.Equal(t, "/poster.jpg", *movies[0].PosterPath)
}
