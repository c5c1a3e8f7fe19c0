package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ManualIDPrefix marks identifiers that were not issued by the movie catalog.
const ManualIDPrefix = "manual_"

// ErrInvalidMovieID is returned by ParseMovieID for identifiers that are
// neither a positive catalog number nor a manual tag.
var ErrInvalidMovieID = errors.New("invalid movie id")

// MovieID identifies a movie inside one session's list.  It is either a
// catalog id (a positive integer issued by the external catalog) or a
// manual tag such as "manual_1718029311000".  The zero value is invalid.
type MovieID struct {
	catalog int64
	manual  string
}

// CatalogID wraps a numeric catalog identifier.
func CatalogID(id int64) MovieID { return MovieID{catalog: id} }

// ManualID wraps a manual tag.  The tag must already carry ManualIDPrefix.
func ManualID(tag string) MovieID { return MovieID{manual: tag} }

// NewManualID builds a manual identifier from a timestamp.
func NewManualID(at time.Time) MovieID {
	return ManualID(ManualIDPrefix + strconv.FormatInt(at.UnixMilli(), 10))
}

// ParseMovieID accepts either a positive decimal number or a manual tag with
// a non-empty suffix.
func ParseMovieID(raw string) (MovieID, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, ManualIDPrefix) {
		if len(s) == len(ManualIDPrefix) {
			return MovieID{}, fmt.Errorf("%w: empty manual tag", ErrInvalidMovieID)
		}
		return ManualID(s), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return MovieID{}, fmt.Errorf("%w: %q", ErrInvalidMovieID, raw)
	}
	return CatalogID(n), nil
}

// IsManual reports whether the id is a manual tag.
func (id MovieID) IsManual() bool { return id.manual != "" }

// IsZero reports whether the id was never set.
func (id MovieID) IsZero() bool { return id.catalog == 0 && id.manual == "" }

// Catalog returns the numeric catalog id and whether the id is a catalog id.
func (id MovieID) Catalog() (int64, bool) { return id.catalog, id.manual == "" && id.catalog > 0 }

func (id MovieID) String() string {
	if id.manual != "" {
		return id.manual
	}
	if id.catalog == 0 {
		return ""
	}
	return strconv.FormatInt(id.catalog, 10)
}

func (id MovieID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts a JSON number (catalog ids as sent by older clients)
// or a JSON string.
func (id *MovieID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = MovieID{}
		return nil
	}
	var raw string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
		if raw == "" {
			*id = MovieID{}
			return nil
		}
	} else {
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidMovieID, b)
		}
		raw = n.String()
	}
	parsed, err := ParseMovieID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// MovieEntry is one candidate in a session's list.
//
// Fields:
//
//	ID          – catalog id or manual tag, unique within a session.
//	Title       – display title (1..200 chars).
//	Overview    – synopsis, may be empty for manual entries.
//	PosterPath  – catalog poster path (nullable).
//	ReleaseDate – YYYY-MM-DD (nullable).
//	VoteAverage – catalog rating in [0,10]; 0 when unknown.
//	AddedBy     – participant name (1..50 chars).
//
// Whether an entry is manual is derived from ID and only materialised in JSON.
type MovieEntry struct {
	ID          MovieID `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"posterPath"`
	ReleaseDate *string `json:"releaseDate"`
	VoteAverage float64 `json:"voteAverage"`
	AddedBy     string  `json:"addedBy"`
}

// IsManual reports whether the entry was typed in by a participant rather
// than picked from the catalog.
func (m MovieEntry) IsManual() bool { return m.ID.IsManual() }

// Clone returns a copy that shares no pointers with m.
func (m MovieEntry) Clone() MovieEntry {
	out := m
	if m.PosterPath != nil {
		p := *m.PosterPath
		out.PosterPath = &p
	}
	if m.ReleaseDate != nil {
		d := *m.ReleaseDate
		out.ReleaseDate = &d
	}
	return out
}

type movieEntryJSON struct {
	ID          MovieID `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	PosterPath  *string `json:"posterPath"`
	ReleaseDate *string `json:"releaseDate"`
	VoteAverage float64 `json:"voteAverage"`
	AddedBy     string  `json:"addedBy"`
	IsManual    bool    `json:"isManual"`
}

func (m MovieEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(movieEntryJSON{
		ID:          m.ID,
		Title:       m.Title,
		Overview:    m.Overview,
		PosterPath:  m.PosterPath,
		ReleaseDate: m.ReleaseDate,
		VoteAverage: m.VoteAverage,
		AddedBy:     m.AddedBy,
		IsManual:    m.ID.IsManual(),
	})
}

// UnmarshalJSON ignores the derived isManual flag.
func (m *MovieEntry) UnmarshalJSON(b []byte) error {
	var in movieEntryJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	*m = MovieEntry{
		ID:          in.ID,
		Title:       in.Title,
		Overview:    in.Overview,
		PosterPath:  in.PosterPath,
		ReleaseDate: in.ReleaseDate,
		VoteAverage: in.VoteAverage,
		AddedBy:     in.AddedBy,
	}
	return nil
}
