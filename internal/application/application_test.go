package application

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/config"
	"github.com/iliyamo/pickflick/internal/model"
	"github.com/iliyamo/pickflick/internal/utils"
)

func testConfig() config.Config {
	return config.Config{
		Env:       "test",
		Port:      "0",
		Store:     config.StoreConfig{Driver: config.DriverMemory},
		Session:   config.SessionConfig{MaxCodeAttempts: 10},
		Catalog:   config.CatalogConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		Redis:     config.RedisConfig{Addr: "127.0.0.1:1"},
		RateLimit: config.RateLimitConfig{Enabled: true, Capacity: 1},
		Cache:     config.CacheConfig{Enabled: true},
		Admin:     config.AdminConfig{JWTSecret: "secret", AccessTTLMin: 5},
	}
}

func serve(h http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestAPIRoutes(t *testing.T) {
	api, err := NewAPI(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(api.close)
	h := api.Handler()

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/api/health", "", "").Code)

	// Without Redis the limiter is off, so repeated calls all pass.
	for i := 0; i < 3; i++ {
		rec := serve(h, http.MethodPost, "/api/sessions", "", "")
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	}

	assert.Equal(t, http.StatusUnauthorized, serve(h, http.MethodPost, "/api/admin/sessions/purge?olderThan=1h", "", "").Code)
	tok, err := utils.NewAccessToken("secret", "ops", utils.RoleAdmin, time.Minute)
	require.NoError(t, err)
	rec := serve(h, http.MethodPost, "/api/admin/sessions/purge?olderThan=1h", "", tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"purged":0`)

	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodPost, "/api/admin/login", `{"password":"x"}`, "").Code)
	assert.Equal(t, http.StatusBadGateway, serve(h, http.MethodGet, "/api/movies/popular", "", "").Code)
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := testConfig()
	cfg.Store = config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "pf.db")}

	store, err := OpenStore(context.Background(), cfg, nil, zap.NewNop())
	require.NoError(t, err)
	defer store.Close()

	ok, err := store.InsertIfAbsent(context.Background(), model.NewSession("AB12CD", time.Now()))
	require.NoError(t, err)
	assert.True(t, ok)

	// A second open finds the schema in place.
	require.NoError(t, MigrateUp(cfg, zap.NewNop()))
}

func TestOpenStoreRedisNeedsClient(t *testing.T) {
	cfg := testConfig()
	cfg.Store.Driver = config.DriverRedis
	_, err := OpenStore(context.Background(), cfg, nil, zap.NewNop())
	assert.Error(t, err)
}
