package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iliyamo/pickflick/internal/model"
)

// Mutator changes a session in place.  Returning an error aborts the update;
// the store then writes nothing and hands the error back unchanged.
type Mutator func(s *model.Session) error

// SessionStore is durable keyed storage of sessions.  Implementations must
// make InsertIfAbsent a single atomic check-and-write, and must serialize
// concurrent Update calls on the same code so that a mutator always sees the
// latest committed state.
type SessionStore interface {
	// InsertIfAbsent stores s under s.Code unless that code is taken.  It
	// returns false, nil on collision and leaves the existing record alone.
	InsertIfAbsent(ctx context.Context, s *model.Session) (bool, error)
	// Find returns a copy of the stored session or ErrSessionNotFound.
	Find(ctx context.Context, code string) (*model.Session, error)
	// Update applies fn to the stored session and persists the result.
	Update(ctx context.Context, code string, fn Mutator) (*model.Session, error)
	// Delete removes the session and reports whether it existed.
	Delete(ctx context.Context, code string) (bool, error)
	// Purge removes sessions last updated before the cutoff.
	Purge(ctx context.Context, before time.Time) (int, error)
	Close() error
}

// sessionRow is the column layout shared by the SQL backends.  Movies and
// the selected movie are stored as JSON documents.
type sessionRow struct {
	Code          string
	Movies        []byte
	IsActive      bool
	SelectedMovie []byte
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func toRow(s *model.Session) (sessionRow, error) {
	movies := s.Movies
	if movies == nil {
		movies = []model.MovieEntry{}
	}
	mb, err := json.Marshal(movies)
	if err != nil {
		return sessionRow{}, fmt.Errorf("encode movies: %w", err)
	}
	var sb []byte
	if s.SelectedMovie != nil {
		if sb, err = json.Marshal(s.SelectedMovie); err != nil {
			return sessionRow{}, fmt.Errorf("encode selected movie: %w", err)
		}
	}
	return sessionRow{
		Code:          s.Code,
		Movies:        mb,
		IsActive:      s.IsActive,
		SelectedMovie: sb,
		CreatedAt:     s.CreatedAt.UTC(),
		UpdatedAt:     s.UpdatedAt.UTC(),
	}, nil
}

func (r sessionRow) toSession() (*model.Session, error) {
	s := &model.Session{
		Code:      r.Code,
		Movies:    []model.MovieEntry{},
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if len(r.Movies) > 0 {
		if err := json.Unmarshal(r.Movies, &s.Movies); err != nil {
			return nil, fmt.Errorf("decode movies of %s: %w", r.Code, err)
		}
	}
	if len(r.SelectedMovie) > 0 {
		var sel model.MovieEntry
		if err := json.Unmarshal(r.SelectedMovie, &sel); err != nil {
			return nil, fmt.Errorf("decode selected movie of %s: %w", r.Code, err)
		}
		s.SelectedMovie = &sel
	}
	return s, nil
}
