package repository

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/pickflick/internal/model"
)

// memoryEntry guards one session.  Mutations of different sessions never
// contend; membership changes go through the store-wide lock.
type memoryEntry struct {
	mu      sync.Mutex
	session *model.Session
	removed bool
}

// MemorySessionStore keeps sessions in process memory.  It lives for the
// lifetime of the process; nothing is written to disk.
type MemorySessionStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

// NewMemorySessionStore returns an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{entries: make(map[string]*memoryEntry)}
}

func (m *MemorySessionStore) InsertIfAbsent(_ context.Context, s *model.Session) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[s.Code]; ok {
		return false, nil
	}
	m.entries[s.Code] = &memoryEntry{session: s.Clone()}
	return true, nil
}

func (m *MemorySessionStore) entry(code string) (*memoryEntry, bool) {
	m.mu.RLock()
	e, ok := m.entries[code]
	m.mu.RUnlock()
	return e, ok
}

func (m *MemorySessionStore) Find(_ context.Context, code string) (*model.Session, error) {
	e, ok := m.entry(code)
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrSessionNotFound
	}
	return e.session.Clone(), nil
}

// Update runs fn on a private copy and swaps it in only when fn succeeds, so
// a failed mutation leaves the stored session untouched.
func (m *MemorySessionStore) Update(_ context.Context, code string, fn Mutator) (*model.Session, error) {
	e, ok := m.entry(code)
	if !ok {
		return nil, ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	// Delete may have won the race between the map lookup and the lock.
	if e.removed {
		return nil, ErrSessionNotFound
	}
	next := e.session.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	e.session = next
	return next.Clone(), nil
}

func (m *MemorySessionStore) Delete(_ context.Context, code string) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[code]
	if ok {
		delete(m.entries, code)
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	return true, nil
}

func (m *MemorySessionStore) Purge(_ context.Context, before time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for code, e := range m.entries {
		e.mu.Lock()
		if e.session.UpdatedAt.Before(before) {
			e.removed = true
			delete(m.entries, code)
			n++
		}
		e.mu.Unlock()
	}
	return n, nil
}

// Len reports the number of stored sessions.
func (m *MemorySessionStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemorySessionStore) Close() error { return nil }
