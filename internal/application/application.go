package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/pickflick/internal/catalog"
	"github.com/iliyamo/pickflick/internal/config"
	"github.com/iliyamo/pickflick/internal/database"
	"github.com/iliyamo/pickflick/internal/handler"
	"github.com/iliyamo/pickflick/internal/middleware"
	"github.com/iliyamo/pickflick/internal/queue"
	"github.com/iliyamo/pickflick/internal/repository"
	"github.com/iliyamo/pickflick/internal/router"
	"github.com/iliyamo/pickflick/internal/service"
)

// OpenStore opens the session store selected by cfg.Store.Driver and, for
// SQL backends, applies pending migrations first.  rdb is only used by the
// redis driver.
func OpenStore(ctx context.Context, cfg config.Config, rdb *redis.Client, log *zap.Logger) (repository.SessionStore, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		return repository.NewMemorySessionStore(), nil
	case config.DriverRedis:
		if rdb == nil {
			return nil, fmt.Errorf("redis store: %s is unreachable", cfg.Redis.Addr)
		}
		return repository.NewRedisSessionStore(rdb, cfg.Store.RedisPrefix, cfg.Session.Retention), nil
	}

	if err := MigrateUp(cfg, log); err != nil {
		return nil, err
	}
	switch cfg.Store.Driver {
	case config.DriverMySQL:
		db, err := database.OpenMySQL(cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql: %w", err)
		}
		return repository.NewSQLSessionStore(db, repository.MySQLDialect), nil
	case config.DriverSQLite:
		db, err := database.OpenSQLite(cfg.Store.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("sqlite: %w", err)
		}
		return repository.NewSQLSessionStore(db, repository.SQLiteDialect), nil
	case config.DriverPostgres:
		pool, err := database.OpenPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres: %w", err)
		}
		return repository.NewPGSessionStore(pool), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}

// MigrateUp applies the embedded migrations for SQL drivers.
func MigrateUp(cfg config.Config, log *zap.Logger) error {
	url, err := cfg.MigrationURL()
	if err != nil {
		return err
	}
	changed, err := database.Migrate(url)
	if err != nil {
		return err
	}
	if changed {
		log.Info("migrations applied", zap.String("driver", cfg.Store.Driver))
	}
	return nil
}

// NewSessionService builds the service with the notifier cfg asks for.
func NewSessionService(cfg config.Config, store repository.SessionStore, log *zap.Logger) *service.SessionService {
	opts := []service.Option{service.WithMaxCodeAttempts(cfg.Session.MaxCodeAttempts)}
	if cfg.Queue.Enabled {
		opts = append(opts, service.WithNotifier(queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Name, log)))
	}
	return service.NewSessionService(store, log, opts...)
}

// API is the HTTP application.
type API struct {
	cfg      config.Config
	log      *zap.Logger
	echo     *echo.Echo
	store    repository.SessionStore
	rdb      *redis.Client
	sessions *service.SessionService
}

// NewAPI validates cfg, opens Redis and the store, and builds the router.
func NewAPI(ctx context.Context, cfg config.Config, log *zap.Logger) (*API, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		log.Warn("redis unavailable; rate limit and cache disabled", zap.String("addr", cfg.Redis.Addr))
	}

	store, err := OpenStore(ctx, cfg, rdb, log)
	if err != nil {
		if rdb != nil {
			_ = rdb.Close()
		}
		return nil, err
	}
	sessions := NewSessionService(cfg, store, log)

	e := NewEcho(log)
	router.RegisterRoutes(e)
	api := router.API(e, middleware.NewTokenBucket(cfg.RateLimit, rdb))
	router.RegisterSessions(api, handler.NewSessionHandler(sessions, log))
	cat := catalog.New(cfg.Catalog.BaseURL, cfg.Catalog.APIKey, cfg.Catalog.Language, cfg.Catalog.Timeout)
	router.RegisterMovies(api, handler.NewMovieHandler(cat, log), middleware.NewRedisCache(cfg.Cache, rdb))
	router.RegisterAdmin(api, handler.NewAdminHandler(sessions, cfg.Admin, log), cfg.Admin.JWTSecret)

	return &API{cfg: cfg, log: log, echo: e, store: store, rdb: rdb, sessions: sessions}, nil
}

// NewEcho returns an echo instance with the shared middleware stack: panic
// recovery, CORS, request ids and zap request logging.
func NewEcho(log *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				log.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}))
	return e
}

// Handler exposes the router, mainly for tests.
func (a *API) Handler() http.Handler { return a.echo }

// Run serves until ctx is cancelled, then shuts down gracefully.  The
// retention janitor runs alongside when SESSION_RETENTION is set.
func (a *API) Run(ctx context.Context) error {
	defer a.close()

	go a.sessions.RunJanitor(ctx, a.cfg.Session.Retention, a.cfg.Session.JanitorInterval)

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", ":"+a.cfg.Port), zap.String("env", a.cfg.Env),
			zap.String("store", a.cfg.Store.Driver))
		if err := a.echo.Start(":" + a.cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *API) close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("close store", zap.Error(err))
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}
