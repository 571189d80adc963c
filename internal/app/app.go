// Package app wires configuration, storage, integrations and services into
// a runnable HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/AndersonGC/dryfit/internal/api"
	"github.com/AndersonGC/dryfit/internal/auth"
	"github.com/AndersonGC/dryfit/internal/config"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/mailer"
	"github.com/AndersonGC/dryfit/internal/ratelimit"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/AndersonGC/dryfit/internal/repository/memory"
	"github.com/AndersonGC/dryfit/internal/repository/mongo"
	"github.com/AndersonGC/dryfit/internal/repository/postgres"
	"github.com/AndersonGC/dryfit/internal/search"
	"github.com/AndersonGC/dryfit/internal/service"
	"github.com/AndersonGC/dryfit/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// App owns every long-lived resource of the server.
type App struct {
	cfg      config.Config
	log      logging.Logger
	store    repository.Store
	redis    *redis.Client
	tokens   *auth.TokenManager
	services api.Services
	router   *gin.Engine
}

// New connects to the configured backends and builds the router.
// On error, everything opened so far is closed again.
func New(ctx context.Context, cfg config.Config, log logging.Logger) (_ *App, err error) {
	a := &App{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			_ = a.Close(context.Background())
		}
	}()

	a.store, err = OpenStore(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}

	if cfg.Redis.URL != "" {
		a.redis, err = ratelimit.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "redis connected")
	} else {
		log.Warn(ctx, "redis not configured, verification resend cooldown disabled")
	}

	var index search.StudentIndex
	if cfg.Search.Host != "" {
		index = search.NewMeiliStudentIndex(cfg.Search.Host, cfg.Search.APIKey, log)
		log.Info(ctx, "student search enabled", "host", cfg.Search.Host)
	}

	var files storage.FileStorage
	if cfg.S3.Enabled() {
		files, err = storage.NewS3Storage(ctx, cfg.S3, log)
		if err != nil {
			return nil, err
		}
		log.Info(ctx, "avatar storage enabled", "bucket", cfg.S3.BucketName)
	}

	mail, err := NewMailer(cfg.SMTP, log)
	if err != nil {
		return nil, err
	}

	a.tokens, err = auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.VerificationExpiration)
	if err != nil {
		return nil, err
	}

	a.services = NewServices(a.store, a.tokens, mail, ratelimit.NewRedisLimiter(a.redis), index, files, cfg, log)

	if cfg.Database.SeedCategories {
		if err = a.services.Categories.EnsureDefaults(ctx); err != nil {
			return nil, fmt.Errorf("seed categories: %w", err)
		}
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	a.router = api.NewRouter(cfg.Server.AllowedOrigins, a.tokens, a.services, a.store, log)
	return a, nil
}

// OpenStore opens the backend selected by cfg.Driver and prepares its schema.
func OpenStore(ctx context.Context, cfg config.DatabaseConfig, log logging.Logger) (repository.Store, error) {
	switch cfg.Driver {
	case "postgres":
		store, err := postgres.Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		if cfg.MigrateOnStart {
			if err := store.Migrate(ctx); err != nil {
				_ = store.Close(ctx)
				return nil, err
			}
			log.Info(ctx, "database migrations applied")
		}
		log.Info(ctx, "postgres connected")
		return store, nil

	case "mongo":
		store, err := mongo.Open(ctx, cfg.URI, cfg.Name)
		if err != nil {
			return nil, fmt.Errorf("connect mongo: %w", err)
		}
		indexCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if err := store.EnsureIndexes(indexCtx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		log.Info(ctx, "mongo connected", "database", cfg.Name)
		return store, nil

	case "memory":
		log.Warn(ctx, "using in-memory store, data is lost on restart")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// NewMailer returns an SMTP mailer when a host is configured and a mailer
// that only logs otherwise.
func NewMailer(cfg config.SMTPConfig, log logging.Logger) (mailer.Mailer, error) {
	if cfg.Host == "" {
		log.Warn(context.Background(), "smtp not configured, verification codes will only be logged")
		return mailer.NewLogMailer(log), nil
	}
	smtp, err := mailer.NewSMTPMailer(mailer.SMTPConfig{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
		Password: cfg.Password,
		From:     cfg.From,
	})
	if err != nil {
		return nil, err
	}
	return smtp, nil
}

// NewServices builds the service layer. index and files may be nil.
func NewServices(
	store repository.Store,
	tokens *auth.TokenManager,
	mail mailer.Mailer,
	limiter ratelimit.Limiter,
	index search.StudentIndex,
	files storage.FileStorage,
	cfg config.Config,
	log logging.Logger,
) api.Services {
	return api.Services{
		Auth: service.NewAuthService(store, tokens, mail, limiter, index, log, service.AuthOptions{
			BcryptCost:               cfg.Auth.BcryptCost,
			CodeTTL:                  cfg.Auth.VerificationCodeTTL,
			ResendCooldown:           cfg.Auth.ResendCooldown,
			RequireEmailVerification: cfg.Auth.RequireEmailVerification,
		}),
		Invites:    service.NewInviteService(store, log),
		Workouts:   service.NewWorkoutService(store, log),
		Categories: service.NewCategoryService(store, log),
		Profiles:   service.NewProfileService(store, files, index, cfg.S3.URLExpiry, log),
	}
}

// Services exposes the service layer, e.g. for the admin CLI.
func (a *App) Services() api.Services {
	return a.services
}

// Handler returns the HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:         a.cfg.Server.Address,
		Handler:      a.router,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info(ctx, "server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.log.Info(context.Background(), "shutting down server")
	timeout := a.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

// Close releases the store and redis connections.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close(ctx))
	}
	return errors.Join(errs...)
}
