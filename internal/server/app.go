// Package server initializes and runs the databoard application server:
// configuration, storage backend, schema migrations, and the HTTP API
// with graceful shutdown.
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

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/apetrovs/databoard/internal/logging"
	"github.com/apetrovs/databoard/internal/server/config"
	"github.com/apetrovs/databoard/internal/server/httpapi"
	"github.com/apetrovs/databoard/internal/server/migrations"
	"github.com/apetrovs/databoard/internal/server/users"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	httpServer *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	slogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(slogger)

	repo, err := openRepository(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	service := users.NewService(repo, cfg)
	httpServer := httpapi.NewServer(cfg.EndpointAddr, logger, service)

	return &App{config: cfg, logger: logger, httpServer: httpServer}, nil
}

// openRepository selects the storage backend: Postgres when a DSN is
// configured (migrations are applied first), the in-memory store
// otherwise.
func openRepository(ctx context.Context, cfg *config.Config, logger logging.Logger) (users.Repository, error) {

	if cfg.DatabaseDSN == "" {
		logger.Warn(ctx, "no database DSN configured, using in-memory storage")
		return users.NewInMemoryRepository(), nil
	}

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return users.NewPostgresRepository(db)
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
	if err := app.httpServer.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
