package service

import (
	"errors"
	"fmt"
)

// Kind classifies a service failure so the transport layer can pick a status
// without matching individual errors.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindInvalidState
	KindValidation
	KindExhausted
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindValidation:
		return "validation"
	case KindExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Error is a typed session failure.  The package-level sentinels are
// compared by identity, so errors.Is works through any amount of wrapping.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string { return e.msg }

var (
	ErrSessionNotFound    = &Error{Kind: KindNotFound, msg: "session not found"}
	ErrSessionInactive    = &Error{Kind: KindInvalidState, msg: "session is no longer active"}
	ErrDuplicateMovie     = &Error{Kind: KindConflict, msg: "movie already exists in this session"}
	ErrNoMoviesAvailable  = &Error{Kind: KindInvalidState, msg: "no movies available for selection"}
	ErrCodeSpaceExhausted = &Error{Kind: KindExhausted, msg: "could not allocate a unique session code"}
	ErrInvalidSessionCode = &Error{Kind: KindValidation, msg: "session code must be 6 letters or digits"}
	ErrInvalidMovie       = &Error{Kind: KindValidation, msg: "movie entry is missing an id"}
)

// KindOf returns the kind of the first *Error in err's chain, or
// KindUnknown for infrastructure failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// withCode annotates a sentinel with the session it concerns while keeping
// errors.Is intact.
func withCode(err error, code string) error {
	return fmt.Errorf("%w: %s", err, code)
}
