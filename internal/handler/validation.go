package handler

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iliyamo/pickflick/internal/model"
)

const (
	maxTitleLen   = 200
	maxAddedByLen = 50
	maxQueryLen   = 100
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// movieInput is the body of POST /sessions/:code/movies.  Older clients send
// the identifier as tmdbId; either key is accepted.
type movieInput struct {
	ID          json.RawMessage `json:"id"`
	TmdbID      json.RawMessage `json:"tmdbId"`
	Title       string          `json:"title"`
	Overview    *string         `json:"overview"`
	PosterPath  *string         `json:"posterPath"`
	ReleaseDate *string         `json:"releaseDate"`
	VoteAverage *float64        `json:"voteAverage"`
	AddedBy     string          `json:"addedBy"`
	IsManual    bool            `json:"isManual"`
}

func rawPresent(r json.RawMessage) bool {
	r = bytes.TrimSpace(r)
	return len(r) > 0 && !bytes.Equal(r, []byte("null")) && !bytes.Equal(r, []byte(`""`))
}

// toEntry validates the input and builds the entry.  Manual entries without
// an id receive a manual_<millis> tag stamped with now.
func (in movieInput) toEntry(now time.Time) (model.MovieEntry, []FieldError) {
	var errs []FieldError
	add := func(field, msg string) { errs = append(errs, FieldError{Field: field, Message: msg}) }

	raw := in.ID
	if !rawPresent(raw) {
		raw = in.TmdbID
	}
	var id model.MovieID
	switch {
	case rawPresent(raw):
		if err := json.Unmarshal(raw, &id); err != nil {
			add("id", "id must be a positive catalog number or a manual_ tag")
		} else if in.IsManual && !id.IsManual() {
			add("id", "manual entries must use a manual_ id")
		}
	case in.IsManual:
		id = model.NewManualID(now)
	default:
		add("id", "movie id is required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		add("title", "Movie title is required")
	} else if utf8.RuneCountInString(title) > maxTitleLen {
		add("title", "Title must be between 1 and 200 characters")
	}

	overview := ""
	if in.Overview != nil {
		overview = strings.TrimSpace(*in.Overview)
	} else if !in.IsManual && !id.IsManual() {
		add("overview", "Movie overview is required")
	}

	vote := 0.0
	if in.VoteAverage != nil {
		vote = *in.VoteAverage
		if vote < 0 || vote > 10 {
			add("voteAverage", "Vote average must be between 0 and 10")
		}
	}

	addedBy := strings.TrimSpace(in.AddedBy)
	if addedBy == "" {
		add("addedBy", "Added by field is required")
	} else if utf8.RuneCountInString(addedBy) > maxAddedByLen {
		add("addedBy", "Added by must be between 1 and 50 characters")
	}

	releaseDate := emptyToNil(in.ReleaseDate)
	if releaseDate != nil {
		if _, err := time.Parse(time.DateOnly, *releaseDate); err != nil {
			add("releaseDate", "Release date must be YYYY-MM-DD")
		}
	}

	if len(errs) > 0 {
		return model.MovieEntry{}, errs
	}
	return model.MovieEntry{
		ID:          id,
		Title:       title,
		Overview:    overview,
		PosterPath:  emptyToNil(in.PosterPath),
		ReleaseDate: releaseDate,
		VoteAverage: vote,
		AddedBy:     addedBy,
	}, nil
}

func emptyToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// searchInput is the body of POST /movies/search.
type searchInput struct {
	Query string `json:"query"`
	Page  int    `json:"page"`
}

func (in *searchInput) validate() []FieldError {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return []FieldError{{Field: "query", Message: "Search query is required"}}
	}
	if utf8.RuneCountInString(in.Query) > maxQueryLen {
		return []FieldError{{Field: "query", Message: "Search query must be between 1 and 100 characters"}}
	}
	if in.Page < 1 {
		in.Page = 1
	}
	return nil
}
