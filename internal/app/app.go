// Package app wires configuration, stores and HTTP routes into one App
// value built at startup. Handlers receive their dependencies from it; no
// store handle lives in a package-level variable.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/Bilal-32/movie-api/internal/config"
	"github.com/Bilal-32/movie-api/internal/database"
	"github.com/Bilal-32/movie-api/internal/handler"
	"github.com/Bilal-32/movie-api/internal/logging"
	"github.com/Bilal-32/movie-api/internal/middleware"
	"github.com/Bilal-32/movie-api/internal/queue"
	"github.com/Bilal-32/movie-api/internal/repository"
	"github.com/Bilal-32/movie-api/internal/router"
)

// Stores are the backends the HTTP layer depends on. Revoker and Revocations
// may be nil when no denylist is configured.
type Stores struct {
	Users       handler.UserStore
	Movies      handler.MovieStore
	Revoker     handler.TokenRevoker
	Revocations middleware.RevocationChecker
	Events      handler.EventPublisher
}

// App is the running application.
type App struct {
	Cfg   config.Config
	Echo  *echo.Echo
	Mongo *mongo.Client
	Redis *redis.Client

	accessLog *os.File
}

// New connects to MongoDB (required) and Redis (optional), opens the access
// log and registers every route.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Cfg: cfg}

	client, err := database.Open(cfg.ConnectionURI)
	if err != nil {
		return nil, err
	}
	a.Mongo = client
	db := client.Database(cfg.DBName)
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	if dir := filepath.Dir(cfg.AccessLogPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			_ = a.Close(ctx)
			return nil, fmt.Errorf("access log dir: %w", err)
		}
	}
	f, err := os.OpenFile(cfg.AccessLogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("open access log: %w", err)
	}
	a.accessLog = f

	stores := Stores{
		Users:  repository.NewUserRepo(db),
		Movies: repository.NewMovieRepo(db),
		Events: queue.NewPublisher(cfg.AMQPURL),
	}
	if a.Redis = config.NewRedisClient(cfg); a.Redis != nil {
		tokens := repository.NewTokenRepo(a.Redis)
		stores.Revoker, stores.Revocations = tokens, tokens
	} else {
		logging.Warn().Msg("redis unavailable: logout and token revocation disabled")
	}

	a.Echo = NewServer(cfg, stores, io.MultiWriter(os.Stdout, f))
	return a, nil
}

// NewServer builds the Echo instance with all middleware and routes.
func NewServer(cfg config.Config, s Stores, accessLog io.Writer) *echo.Echo {
	e := echo.New()
	router.Setup(e, cfg, accessLog)

	auth := middleware.JWTAuth(cfg.JWTSecret, s.Users, s.Revocations)
	site := handler.NewSiteHandler(cfg.StaticDir)

	router.RegisterRoutes(e, site)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, s.Users, s.Revoker), auth)
	router.RegisterUsers(e, handler.NewUserHandler(cfg, s.Users, s.Events), auth)
	router.RegisterMovies(e, handler.NewMovieHandler(s.Movies), auth, cfg.PublicMovieList)
	router.RegisterFallback(e, site)
	return e
}

// Start listens on all interfaces at the configured port. It returns nil
// after a graceful Shutdown.
func (a *App) Start() error {
	addr := "0.0.0.0:" + a.Cfg.Port
	logging.Info().Str("addr", addr).Str("env", a.Cfg.Env).Msg("listening")
	if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close stops the server and releases every connection.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.Echo != nil {
		errs = append(errs, a.Echo.Shutdown(ctx))
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	if a.Mongo != nil {
		errs = append(errs, a.Mongo.Disconnect(ctx))
	}
	if a.accessLog != nil {
		errs = append(errs, a.accessLog.Close())
	}
	return errors.Join(errs...)
}
