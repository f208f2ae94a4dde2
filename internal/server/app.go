// Package server wires the application together: configuration, logging,
// the database and its migrations, object storage, redis, the service
// layer, and the HTTP endpoint with graceful shutdown.
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

	"github.com/cinecircle/cinecircle/internal/logging"
	"github.com/cinecircle/cinecircle/internal/server/blob"
	"github.com/cinecircle/cinecircle/internal/server/config"
	"github.com/cinecircle/cinecircle/internal/server/httpapi"
	"github.com/cinecircle/cinecircle/internal/server/repositories/repomanager"
	"github.com/cinecircle/cinecircle/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	redis       *redis.Client
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	return &App{
		config:      cfg,
		logger:      logger,
		db:          db,
		repomanager: repomanager.NewPostgresRepositoryManager(),
		redis:       rdb,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	blobs := blob.NewS3Store(blob.S3Config{
		User:         app.config.S3User,
		Password:     app.config.S3Password,
		Bucket:       app.config.S3Bucket,
		Region:       app.config.S3Region,
		BaseEndpoint: app.config.S3BaseEndpoint,
		SignedURLTTL: app.config.SignedURLTTL,
	})

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Config:    app.config,
		Redis:     app.redis,
		Identity:  services.NewIdentityService(app.db, app.repomanager, blobs, app.logger),
		Social:    services.NewSocialService(app.db, app.repomanager, app.logger),
		Profile:   services.NewProfileService(app.db, app.repomanager, blobs, app.logger),
		Tokens:    services.NewTokenService(app.db, app.repomanager, app.config),
		Watchlist: services.NewWatchlistService(app.db, app.repomanager, app.logger),
	})

	s := httpapi.NewServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		app.logger.Error(ctx, "migration error", "error", err)
		cancelFunc()
		return
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}
