package model

import "time"

// SessionCodeLength is the fixed length of every session code.
const SessionCodeLength = 6

// SessionStatus is the lifecycle state of a session.  Deleted sessions have
// no status because their record is gone.
type SessionStatus string

const (
	SessionActive    SessionStatus = "ACTIVE"
	SessionCompleted SessionStatus = "COMPLETED"
)

// Session is a code-addressed collaborative list of movie candidates.
//
// Fields:
//
//	Code          – 6-char uppercase alphanumeric join code, immutable.
//	Movies        – candidates in insertion order, no duplicate ids.
//	IsActive      – true until a movie has been selected.
//	SelectedMovie – copy of the chosen entry, set exactly once.
//	CreatedAt     – creation timestamp.
//	UpdatedAt     – refreshed on every mutation.
type Session struct {
	Code          string       `json:"sessionCode"`
	Movies        []MovieEntry `json:"movies"`
	IsActive      bool         `json:"isActive"`
	SelectedMovie *MovieEntry  `json:"selectedMovie"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// NewSession returns an empty, active session.
func NewSession(code string, now time.Time) *Session {
	now = now.UTC()
	return &Session{
		Code:      code,
		Movies:    []MovieEntry{},
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Status derives the lifecycle state.
func (s *Session) Status() SessionStatus {
	if s.IsActive {
		return SessionActive
	}
	return SessionCompleted
}

// IndexOf returns the position of the movie with the given id or -1.
func (s *Session) IndexOf(id MovieID) int {
	for i := range s.Movies {
		if s.Movies[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone deep-copies the session so callers never share list storage with a
// store.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Movies = make([]MovieEntry, len(s.Movies))
	for i, m := range s.Movies {
		out.Movies[i] = m.Clone()
	}
	if s.SelectedMovie != nil {
		sel := s.SelectedMovie.Clone()
		out.SelectedMovie = &sel
	}
	return &out
}
