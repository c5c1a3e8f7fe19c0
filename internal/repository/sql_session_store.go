package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"

	"github.com/iliyamo/pickflick/internal/model"
)

// Dialect captures what differs between the database/sql backends.
type Dialect struct {
	Name string
	// LockClause is appended to the SELECT that opens an update.
	LockClause string
	// IsDuplicate reports a primary key violation on insert.
	IsDuplicate func(err error) bool
}

// MySQLDialect relies on row locks taken by SELECT ... FOR UPDATE.
var MySQLDialect = Dialect{
	Name:       "mysql",
	LockClause: " FOR UPDATE",
	IsDuplicate: func(err error) bool {
		var me *mysql.MySQLError
		return errors.As(err, &me) && me.Number == 1062
	},
}

// SQLiteDialect has no row locks; the database must be opened with
// _txlock=immediate so every transaction takes the write lock up front.
var SQLiteDialect = Dialect{
	Name: "sqlite3",
	IsDuplicate: func(err error) bool {
		var se sqlite3.Error
		if !errors.As(err, &se) {
			return false
		}
		return se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique
	},
}

// SQLSessionStore persists sessions in a `sessions` table, one row per
// session.  See internal/database/migrations for the schema.
type SQLSessionStore struct {
	db      *sql.DB
	dialect Dialect
}

// NewSQLSessionStore binds the store to an open database.
func NewSQLSessionStore(db *sql.DB, dialect Dialect) *SQLSessionStore {
	return &SQLSessionStore{db: db, dialect: dialect}
}

// DB exposes the underlying handle, mainly for migrations and tests.
func (r *SQLSessionStore) DB() *sql.DB { return r.db }

func (r *SQLSessionStore) InsertIfAbsent(ctx context.Context, s *model.Session) (bool, error) {
	row, err := toRow(s)
	if err != nil {
		return false, err
	}
	const q = `INSERT INTO sessions (session_code, movies, is_active, selected_movie, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q, row.Code, row.Movies, row.IsActive, nullBytes(row.SelectedMovie), row.CreatedAt, row.UpdatedAt)
	if err != nil {
		if r.dialect.IsDuplicate(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert session: %w", err)
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(sc rowScanner) (*model.Session, error) {
	var (
		row      sessionRow
		selected []byte
	)
	if err := sc.Scan(&row.Code, &row.Movies, &row.IsActive, &selected, &row.CreatedAt, &row.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	row.SelectedMovie = selected
	return row.toSession()
}

const selectSession = `SELECT session_code, movies, is_active, selected_movie, created_at, updated_at
                       FROM sessions WHERE session_code = ?`

func (r *SQLSessionStore) Find(ctx context.Context, code string) (*model.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx, selectSession, code))
}

// Update reads, mutates and rewrites the row inside one transaction.  The
// lock taken by the initial read keeps concurrent updates of the same code
// strictly ordered.
func (r *SQLSessionStore) Update(ctx context.Context, code string, fn Mutator) (*model.Session, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	s, err := scanSession(tx.QueryRowContext(ctx, selectSession+r.dialect.LockClause, code))
	if err != nil {
		return nil, err
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	row, err := toRow(s)
	if err != nil {
		return nil, err
	}
	const q = `UPDATE sessions SET movies = ?, is_active = ?, selected_movie = ?, updated_at = ? WHERE session_code = ?`
	if _, err := tx.ExecContext(ctx, q, row.Movies, row.IsActive, nullBytes(row.SelectedMovie), row.UpdatedAt, code); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return s, nil
}

func (r *SQLSessionStore) Delete(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_code = ?`, code)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *SQLSessionStore) Purge(ctx context.Context, before time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (r *SQLSessionStore) Close() error { return r.db.Close() }

// nullBytes stores an absent JSON document as SQL NULL.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}
