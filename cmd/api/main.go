// @title                       Content Service API
// @version                     1.0
// @description                 Article service with cookie/bearer sessions and role-based administration.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/articlehub/content-service/internal/api"
	"github.com/articlehub/content-service/internal/api/handler"
	"github.com/articlehub/content-service/internal/api/session"
	"github.com/articlehub/content-service/internal/core/auth"
	"github.com/articlehub/content-service/internal/core/ports"
	"github.com/articlehub/content-service/internal/core/service"
	"github.com/articlehub/content-service/internal/infrastructure/config"
	mongostore "github.com/articlehub/content-service/internal/infrastructure/db/mongo"
	pgstore "github.com/articlehub/content-service/internal/infrastructure/db/postgres"
	redisstore "github.com/articlehub/content-service/internal/infrastructure/db/redis"
	"github.com/articlehub/content-service/internal/infrastructure/queue"
	"github.com/articlehub/content-service/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

// stores bundles the repositories of the selected driver.
type stores struct {
	users    ports.UserRepository
	articles ports.ArticleRepository
	audit    ports.AuditRepository
	ping     handler.Pinger
	close    func(context.Context) error
}

func main() {
	// A missing .env is fine; the environment wins either way.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.Env == "development",
		Service: "content-service",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := st.close(closeCtx); err != nil {
			log.Error().Err(err).Msg("closing store")
		}
	}()

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, login throttle fails open")
	}
	defer rdb.Close()

	hasher, err := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	codec, err := auth.NewTokenCodec(cfg.Auth.SecretKey, cfg.Auth.Algorithm, nil)
	if err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(cfg.Audit.Workers, st.audit, logger.Component("audit"))
	// Workers outlive the signal context so Shutdown can drain them.
	dispatcher.Start(context.WithoutCancel(ctx))
	defer dispatcher.Shutdown()

	throttle := redisstore.NewLoginThrottle(rdb, cfg.Throttle.MaxAttempts, cfg.Throttle.Window)
	authService := service.NewAuthService(
		st.users,
		hasher,
		codec,
		service.TokenTTL{Access: cfg.Auth.AccessTTL(), Refresh: cfg.Auth.RefreshTTL()},
		throttle,
		dispatcher,
		logger.Component("auth"),
	)
	userService := service.NewUserService(st.users, hasher, dispatcher, logger.Component("users"))
	articleService := service.NewArticleService(st.articles, logger.Component("articles"))

	e := api.NewRouter(api.Deps{
		Auth:     authService,
		Users:    userService,
		Articles: articleService,
		Session:  session.Config{Secure: cfg.Cookie.Secure, Domain: cfg.Cookie.Domain},
		Health: map[string]handler.Pinger{
			cfg.StoreDriver: st.ping,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
		Log: logger.Component("http"),
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.StoreDriver).Msg("listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*stores, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
		})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		return &stores{
			users:    mongostore.NewUserRepository(db),
			articles: mongostore.NewArticleRepository(db),
			audit:    mongostore.NewAuditRepository(db),
			ping: func(ctx context.Context) error {
				return client.Ping(ctx, nil)
			},
			close: client.Disconnect,
		}, nil

	default:
		dsn := cfg.Postgres.DSN()
		if cfg.Postgres.Migrations {
			if err := pgstore.Migrate(dsn, logger.Component("migrate")); err != nil {
				return nil, err
			}
		}
		db, err := pgstore.Connect(ctx, pgstore.Config{DSN: dsn})
		if err != nil {
			return nil, err
		}
		log.Debug().Msg("postgres pool ready")
		return &stores{
			users:    pgstore.NewUserRepository(db),
			articles: pgstore.NewArticleRepository(db),
			audit:    pgstore.NewAuditRepository(db),
			ping:     db.PingContext,
			close: func(context.Context) error {
				return db.Close()
			},
		}, nil
	}
}
