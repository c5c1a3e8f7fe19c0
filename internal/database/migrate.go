package database

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrations embed.FS

// migrationDir maps a golang-migrate URL scheme to its embedded directory.
func migrationDir(databaseURL string) (string, error) {
	scheme, _, ok := strings.Cut(databaseURL, "://")
	if !ok {
		return "", fmt.Errorf("migrate: malformed database url")
	}
	switch scheme {
	case "mysql":
		return "migrations/mysql", nil
	case "pgx5":
		return "migrations/postgres", nil
	case "sqlite3":
		return "migrations/sqlite", nil
	}
	return "", fmt.Errorf("migrate: unsupported scheme %q", scheme)
}

// Migrate applies all pending migrations for the database behind
// databaseURL.  It reports whether anything changed.
func Migrate(databaseURL string) (bool, error) {
	dir, err := migrationDir(databaseURL)
	if err != nil {
		return false, err
	}
	src, err := iofs.New(migrations, dir)
	if err != nil {
		return false, fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return false, fmt.Errorf("migrate new: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return false, nil
		}
		return false, fmt.Errorf("migrate up: %w", err)
	}
	return true, nil
}
