package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/migrantcare/healthtrack/internal/config"
	"github.com/migrantcare/healthtrack/internal/domain/appointment"
	"github.com/migrantcare/healthtrack/internal/domain/healthrecord"
	"github.com/migrantcare/healthtrack/internal/domain/notification"
	"github.com/migrantcare/healthtrack/internal/domain/profile"
	"github.com/migrantcare/healthtrack/internal/platform/apperror"
	"github.com/migrantcare/healthtrack/internal/platform/auth"
	"github.com/migrantcare/healthtrack/internal/platform/cache"
	"github.com/migrantcare/healthtrack/internal/platform/clock"
	"github.com/migrantcare/healthtrack/internal/platform/db"
	"github.com/migrantcare/healthtrack/internal/platform/docstore"
	"github.com/migrantcare/healthtrack/internal/platform/middleware"
)

const (
	shutdownTimeout = 10 * time.Second
	janitorInterval = time.Minute
	limiterMaxIdle  = 3 * time.Minute
)

// routeRegistrar is implemented by every domain handler.
type routeRegistrar interface {
	RegisterRoutes(api *echo.Group)
}

// routes is everything newRouter mounts besides the middleware stack.
type routes struct {
	handlers []routeRegistrar
	dbHealth echo.HandlerFunc
	limiter  *middleware.RateLimiter
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func runServer() error {
	logger := newLogger(os.Getenv("ENV"))

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid config")
	}
	loc, _ := cfg.Location()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	profileRepo, closeCache, err := profileRepository(ctx, cfg, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up profile cache")
	}
	defer closeCache()

	records, closeRecords, err := recordReader(ctx, cfg, pool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to set up health record store")
	}
	defer closeRecords()

	clk := clock.System()
	resolver := profile.NewResolver(profileRepo)
	apptSvc := appointment.NewService(appointment.NewRepoPG(pool), resolver, clk, loc,
		logger.With().Str("component", "appointment").Logger())
	agg := notification.NewAggregator(resolver, apptSvc, records, clk,
		logger.With().Str("component", "notification").Logger())

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})
	go limiter.RunJanitor(ctx, janitorInterval, limiterMaxIdle)

	e := newRouter(cfg, logger, routes{
		handlers: []routeRegistrar{
			profile.NewHandler(resolver),
			appointment.NewHandler(apptSvc),
			notification.NewHandler(agg),
		},
		dbHealth: db.HealthHandler(pool),
		limiter:  limiter,
	})

	errCh := make(chan error, 1)
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown failed")
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func newRouter(cfg *config.Config, logger zerolog.Logger, r routes) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperror.HTTPErrorHandler(logger)

	allowHeaders := []string{echo.HeaderAuthorization, echo.HeaderContentType,
		middleware.RequestIDHeader, auth.LegacyTokenHeader}
	if cfg.IsDev() {
		allowHeaders = append(allowHeaders, auth.DevUserHeader, auth.DevRoleHeader)
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: allowHeaders,
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if r.dbHealth != nil {
		e.GET("/health/db", r.dbHealth)
	}

	jwtCfg := auth.JWTConfig{
		Issuer:     cfg.AuthIssuer,
		Audience:   cfg.AuthAudience,
		SigningKey: []byte(cfg.JWTSecret),
		Skipper:    auth.AuthSkipper,
	}
	authMW := auth.JWTMiddleware(jwtCfg)
	if cfg.IsDev() {
		authMW = auth.DevAuthMiddleware(jwtCfg)
	}

	api := e.Group("/api", authMW)
	if r.limiter != nil {
		api.Use(r.limiter.Middleware())
	}
	api.Use(middleware.Audit(logger))

	for _, h := range r.handlers {
		h.RegisterRoutes(api)
	}
	return e
}

// profileRepository wraps the PostgreSQL profile repository in a read-through
// cache: Redis when REDIS_URL is set, in-process otherwise. A zero TTL
// disables caching.
func profileRepository(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (profile.Repository, func(), error) {
	repo := profile.NewRepoPG(pool)
	if cfg.ProfileCacheTTL <= 0 {
		return repo, func() {}, nil
	}

	cacheLogger := logger.With().Str("component", "profile_cache").Logger()
	if cfg.RedisURL == "" {
		logger.Info().Dur("ttl", cfg.ProfileCacheTTL).Msg("using in-process profile cache")
		return profile.NewCachedRepository(repo, cache.NewMemoryStore(), cfg.ProfileCacheTTL, cacheLogger), func() {}, nil
	}

	rdb, err := cache.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Dur("ttl", cfg.ProfileCacheTTL).Msg("connected to redis")
	closeFn := func() {
		if err := rdb.Close(); err != nil {
			logger.Warn().Err(err).Msg("redis close failed")
		}
	}
	return profile.NewCachedRepository(repo, cache.NewRedisStore(rdb), cfg.ProfileCacheTTL, cacheLogger), closeFn, nil
}

func recordReader(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, logger zerolog.Logger) (healthrecord.Reader, func(), error) {
	switch cfg.HealthRecordBackend {
	case config.HealthRecordBackendMongo:
		mdb, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("database", cfg.MongoDatabase).Msg("connected to mongodb")
		closeFn := func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mdb.Client().Disconnect(dctx); err != nil {
				logger.Warn().Err(err).Msg("mongodb disconnect failed")
			}
		}
		return healthrecord.NewReaderMongo(mdb), closeFn, nil
	case config.HealthRecordBackendPostgres:
		return healthrecord.NewReaderPG(pool), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown health record backend %q", cfg.HealthRecordBackend)
	}
}
