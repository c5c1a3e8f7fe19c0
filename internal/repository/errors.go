// Package repository holds the SessionStore contract and its storage
// backends.  The sentinel errors below let the service layer tell a missing
// session apart from infrastructure failures without importing any driver.
package repository

import "errors"

// ErrSessionNotFound is returned when no session is stored under a code.
// The service translates it into its own not-found kind.
var ErrSessionNotFound = errors.New("session not found")

// ErrConflict is returned when a write could not be applied because the
// stored record kept changing underneath it, e.g. an optimistic Redis
// transaction that lost every retry.
var ErrConflict = errors.New("conflict")
