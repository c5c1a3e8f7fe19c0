package service

import (
	"math/rand/v2"

	"github.com/iliyamo/pickflick/internal/model"
)

// SelectionEngine picks the winning entry of a session.
type SelectionEngine interface {
	Choose(movies []model.MovieEntry) (model.MovieEntry, error)
}

// UniformSelector gives every entry probability 1/n regardless of its
// position or fields.
type UniformSelector struct {
	intn func(n int) int
}

// NewUniformSelector returns a selector backed by math/rand/v2.
func NewUniformSelector() *UniformSelector {
	return &UniformSelector{intn: rand.IntN}
}

// Choose returns a copy of one element.  An empty list is an error, never a
// zero value.
func (u *UniformSelector) Choose(movies []model.MovieEntry) (model.MovieEntry, error) {
	if len(movies) == 0 {
		return model.MovieEntry{}, ErrNoMoviesAvailable
	}
	return movies[u.intn(len(movies))].Clone(), nil
}
