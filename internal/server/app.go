// Package server initializes and runs the application: it opens the
// database and cache connections, runs migrations, wires the services and
// starts the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/mkravets/contactdesk/internal/logging"
	"github.com/mkravets/contactdesk/internal/server/avatar"
	"github.com/mkravets/contactdesk/internal/server/cache"
	"github.com/mkravets/contactdesk/internal/server/config"
	httpserver "github.com/mkravets/contactdesk/internal/server/http"
	"github.com/mkravets/contactdesk/internal/server/mail"
	"github.com/mkravets/contactdesk/internal/server/repositories/repomanager"
	"github.com/mkravets/contactdesk/internal/server/services"
	"github.com/mkravets/contactdesk/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	redis  *redis.Client
	server *httpserver.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	userCache := cache.NewUserCache(cache.NewRedisKV(redisClient), cfg.UserCacheTTL, logger)

	mailer, err := mail.NewSMTPDispatcher(cfg)
	if err != nil {
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	authService := services.NewAuthService(db, rm, userCache, mailer,
		avatar.NewGravatarResolver(), storage.NewS3Uploader(cfg), logger, cfg)
	contactService := services.NewContactService(db, rm)

	srv := httpserver.NewServer(cfg.EndpointAddrHTTP, logger, authService, contactService, db)

	return &App{config: cfg, logger: logger, db: db, redis: redisClient, server: srv}, nil
}

// closeResources releases the database and cache connections.
func (app *App) closeResources(ctx context.Context) {
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}
	if err := app.redis.Close(); err != nil {
		app.logger.Error(ctx, "error closing redis client", "error", err)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	app.closeResources(ctx)
}
