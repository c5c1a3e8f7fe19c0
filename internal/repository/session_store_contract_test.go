package repository

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/pickflick/internal/model"
)

var errAbort = errors.New("abort")

// testSession builds a session with whole-second timestamps so every
// backend round-trips them exactly.
func testSession(code string, at time.Time) *model.Session {
	return model.NewSession(code, at.Truncate(time.Second))
}

func addEntry(id int64) Mutator {
	return func(s *model.Session) error {
		s.Movies = append(s.Movies, model.MovieEntry{ID: model.CatalogID(id), Title: "m" + strconv.FormatInt(id, 10), AddedBy: "t"})
		return nil
	}
}

// runStoreContract exercises the behaviour every SessionStore must share.
func runStoreContract(t *testing.T, newStore func(t *testing.T) SessionStore) {
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("insert and find", func(t *testing.T) {
		st := newStore(t)
		poster := "/p.jpg"
		s := testSession("AAAAA1", now)
		s.Movies = []model.MovieEntry{{ID: model.ManualID("manual_1"), Title: "Home", PosterPath: &poster, AddedBy: "a"}}

		ok, err := st.InsertIfAbsent(ctx, s)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := st.Find(ctx, "AAAAA1")
		require.NoError(t, err)
		assert.Equal(t, s.Code, got.Code)
		assert.True(t, got.IsActive)
		assert.Nil(t, got.SelectedMovie)
		assert.True(t, s.CreatedAt.Equal(got.CreatedAt))
		require.Len(t, got.Movies, 1)
		assert.True(t, got.Movies[0].IsManual())
		assert.Equal(t, "/p.jpg", *got.Movies[0].PosterPath)
	})

	t.Run("insert collision keeps original", func(t *testing.T) {
		st := newStore(t)
		first := testSession("AAAAA2", now)
		_, err := st.InsertIfAbsent(ctx, first)
		require.NoError(t, err)
		_, err = st.Update(ctx, "AAAAA2", addEntry(1))
		require.NoError(t, err)

		ok, err := st.InsertIfAbsent(ctx, testSession("AAAAA2", now.Add(time.Hour)))
		require.NoError(t, err)
		assert.False(t, ok)

		got, err := st.Find(ctx, "AAAAA2")
		require.NoError(t, err)
		assert.Len(t, got.Movies, 1)
	})

	t.Run("missing session", func(t *testing.T) {
		st := newStore(t)
		_, err := st.Find(ctx, "NOPE00")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = st.Update(ctx, "NOPE00", addEntry(1))
		assert.ErrorIs(t, err, ErrSessionNotFound)
		ok, err := st.Delete(ctx, "NOPE00")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("update persists and aborts cleanly", func(t *testing.T) {
		st := newStore(t)
		_, err := st.InsertIfAbsent(ctx, testSession("AAAAA3", now))
		require.NoError(t, err)

		got, err := st.Update(ctx, "AAAAA3", func(s *model.Session) error {
			s.Movies = append(s.Movies, model.MovieEntry{ID: model.CatalogID(5), Title: "Dune", AddedBy: "a"})
			sel := s.Movies[0]
			s.SelectedMovie = &sel
			s.IsActive = false
			s.UpdatedAt = now.Add(time.Minute)
			return nil
		})
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		_, err = st.Update(ctx, "AAAAA3", func(s *model.Session) error {
			s.Movies = nil
			return errAbort
		})
		assert.ErrorIs(t, err, errAbort)

		stored, err := st.Find(ctx, "AAAAA3")
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
		require.NotNil(t, stored.SelectedMovie)
		assert.Equal(t, model.CatalogID(5), stored.SelectedMovie.ID)
		assert.Len(t, stored.Movies, 1)
		assert.True(t, now.Add(time.Minute).Equal(stored.UpdatedAt))
	})

	t.Run("concurrent updates are serialized", func(t *testing.T) {
		st := newStore(t)
		_, err := st.InsertIfAbsent(ctx, testSession("AAAAA4", now))
		require.NoError(t, err)

		const n = 20
		var wg sync.WaitGroup
		for i := 1; i <= n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, err := st.Update(ctx, "AAAAA4", addEntry(int64(i)))
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		got, err := st.Find(ctx, "AAAAA4")
		require.NoError(t, err)
		assert.Len(t, got.Movies, n)
	})

	t.Run("delete", func(t *testing.T) {
		st := newStore(t)
		_, err := st.InsertIfAbsent(ctx, testSession("AAAAA5", now))
		require.NoError(t, err)
		ok, err := st.Delete(ctx, "AAAAA5")
		require.NoError(t, err)
		assert.True(t, ok)
		_, err = st.Find(ctx, "AAAAA5")
		assert.ErrorIs(t, err, ErrSessionNotFound)

		ok, err = st.InsertIfAbsent(ctx, testSession("AAAAA5", now))
		require.NoError(t, err)
		assert.True(t, ok, "a deleted code may be reused")
	})

	t.Run("purge", func(t *testing.T) {
		st := newStore(t)
		_, err := st.InsertIfAbsent(ctx, testSession("OLD001", now.Add(-48*time.Hour)))
		require.NoError(t, err)
		_, err = st.InsertIfAbsent(ctx, testSession("NEW001", now))
		require.NoError(t, err)

		n, err := st.Purge(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = st.Find(ctx, "OLD001")
		assert.ErrorIs(t, err, ErrSessionNotFound)
		_, err = st.Find(ctx, "NEW001")
		assert.NoError(t, err)
	})
}

func TestMemorySessionStore(t *testing.T) {
	runStoreContract(t, func(t *testing.T) SessionStore { return NewMemorySessionStore() })
}

func TestMemorySessionStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	st := NewMemorySessionStore()
	s := testSession("COPY01", time.Now())
	_, err := st.InsertIfAbsent(ctx, s)
	require.NoError(t, err)

	s.Movies = append(s.Movies, model.MovieEntry{ID: model.CatalogID(1)})
	got, err := st.Find(ctx, "COPY01")
	require.NoError(t, err)
	assert.Empty(t, got.Movies)

	got.IsActive = false
	again, _ := st.Find(ctx, "COPY01")
	assert.True(t, again.IsActive)
}
