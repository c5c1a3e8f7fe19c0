package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "PORT", "STORE_DRIVER", "SESSION_RETENTION", "RATE_LIMIT_CAPACITY", "RATE_LIMIT_BURST", "CACHE_METHODS", "REDIS_HOST", "REDIS_PORT"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 100, cfg.Session.MaxCodeAttempts)
	assert.Zero(t, cfg.Session.Retention, "retention is off unless configured")
	assert.Equal(t, 60, cfg.RateLimit.Capacity)
	assert.True(t, cfg.Cache.Methods["GET"])
	assert.Equal(t, "session.completed", cfg.Queue.Name)
	require.NoError(t, cfg.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/pf.db")
	t.Setenv("SESSION_RETENTION", "72h")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "1m")
	t.Setenv("RATE_LIMIT_TTL", "1s")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("REDIS_PORT", "6380")

	cfg := Load()
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, 72*time.Hour, cfg.Session.Retention)
	assert.Equal(t, 5, cfg.RateLimit.Capacity)
	assert.Equal(t, 5*time.Minute, cfg.RateLimit.TTL, "ttl is raised to five refill intervals")
	assert.Equal(t, map[string]bool{"GET": true, "HEAD": true}, cfg.Cache.Methods)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)

	url, err := cfg.MigrationURL()
	require.NoError(t, err)
	assert.Equal(t, "sqlite3:///tmp/pf.db", url)
}

func TestValidate(t *testing.T) {
	base := Config{Port: "8080", Store: StoreConfig{Driver: DriverMemory}, Session: SessionConfig{MaxCodeAttempts: 1}}
	require.NoError(t, base.Validate())

	cases := map[string]func(c *Config){
		"unknown driver":   func(c *Config) { c.Store.Driver = "mongo" },
		"mysql needs host": func(c *Config) { c.Store = StoreConfig{Driver: DriverMySQL, DBUser: "u", DBPort: "3306", DBName: "d"} },
		"postgres url":     func(c *Config) { c.Store.Driver = DriverPostgres },
		"attempts":         func(c *Config) { c.Session.MaxCodeAttempts = 0 },
		"negative ttl":     func(c *Config) { c.Session.Retention = -time.Second },
		"admin secret":     func(c *Config) { c.Admin.PasswordHash = "$2a$..." },
	}
	for name, mutate := range cases {
		c := base
		mutate(&c)
		assert.Error(t, c.Validate(), name)
	}
}

func TestMigrationURLs(t *testing.T) {
	c := Config{Store: StoreConfig{Driver: DriverMySQL, DBUser: "u", DBPass: "p", DBHost: "db", DBPort: "3306", DBName: "pf"}}
	url, err := c.MigrationURL()
	require.NoError(t, err)
	assert.Equal(t, "mysql://u:p@tcp(db:3306)/pf?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=true", url)

	c.Store = StoreConfig{Driver: DriverPostgres, DatabaseURL: "postgresql://u:p@db:5432/pf?sslmode=disable"}
	url, err = c.MigrationURL()
	require.NoError(t, err)
	assert.Equal(t, "pgx5://u:p@db:5432/pf?sslmode=disable", url)

	c.Store = StoreConfig{Driver: DriverPostgres, DatabaseURL: "mysql://x"}
	_, err = c.MigrationURL()
	assert.Error(t, err)

	c.Store = StoreConfig{Driver: DriverRedis}
	_, err = c.MigrationURL()
	assert.Error(t, err)
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	log, err := NewLogger("prod", "verbose")
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(0))
	assert.False(t, log.Core().Enabled(-1))
}

func TestNewRedisClientUnreachable(t *testing.T) {
	assert.Nil(t, NewRedisClient(RedisConfig{Addr: "127.0.0.1:1"}))
}
