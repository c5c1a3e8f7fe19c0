package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iliyamo/pickflick/internal/model"
)

// PGSessionStore persists sessions in PostgreSQL through a pgx pool.  Movies
// are kept in a JSONB column.
type PGSessionStore struct {
	pool *pgxpool.Pool
}

// NewPGSessionStore binds the store to an open pool.
func NewPGSessionStore(pool *pgxpool.Pool) *PGSessionStore { return &PGSessionStore{pool: pool} }

func (r *PGSessionStore) InsertIfAbsent(ctx context.Context, s *model.Session) (bool, error) {
	row, err := toRow(s)
	if err != nil {
		return false, err
	}
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (session_code, movies, is_active, selected_movie, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (session_code) DO NOTHING`,
		row.Code, row.Movies, row.IsActive, nullBytes(row.SelectedMovie), row.CreatedAt, row.UpdatedAt)
	if err != nil {
		return false, fmt.Errorf("insert session: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

const pgSelectSession = `SELECT session_code, movies, is_active, selected_movie, created_at, updated_at
                         FROM sessions WHERE session_code = $1`

func pgScan(row pgx.Row) (*model.Session, error) {
	var r sessionRow
	if err := row.Scan(&r.Code, &r.Movies, &r.IsActive, &r.SelectedMovie, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return r.toSession()
}

func (r *PGSessionStore) Find(ctx context.Context, code string) (*model.Session, error) {
	return pgScan(r.pool.QueryRow(ctx, pgSelectSession, code))
}

func (r *PGSessionStore) Update(ctx context.Context, code string, fn Mutator) (*model.Session, error) {
	var out *model.Session
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		s, err := pgScan(tx.QueryRow(ctx, pgSelectSession+" FOR UPDATE", code))
		if err != nil {
			return err
		}
		if err := fn(s); err != nil {
			return err
		}
		row, err := toRow(s)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx,
			`UPDATE sessions SET movies = $1, is_active = $2, selected_movie = $3, updated_at = $4 WHERE session_code = $5`,
			row.Movies, row.IsActive, nullBytes(row.SelectedMovie), row.UpdatedAt, code); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		out = s
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGSessionStore) Delete(ctx context.Context, code string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE session_code = $1`, code)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PGSessionStore) Purge(ctx context.Context, before time.Time) (int, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE updated_at < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (r *PGSessionStore) Close() error {
	r.pool.Close()
	return nil
}
