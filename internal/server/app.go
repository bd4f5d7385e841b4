// Package server wires configuration, storage, services and the HTTP API
// together and runs them until an OS signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/milktracker/internal/logging"
	"github.com/dmitrijs2005/milktracker/internal/server/config"
	"github.com/dmitrijs2005/milktracker/internal/server/export"
	"github.com/dmitrijs2005/milktracker/internal/server/httpapi"
	"github.com/dmitrijs2005/milktracker/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/milktracker/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

// openPostgres is a seam over repomanager.OpenPostgres for tests.
var openPostgres = repomanager.OpenPostgres

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(os.Stdout, "json", c.LogLevel)

	var (
		db *sql.DB
		rm repomanager.RepositoryManager
	)

	switch c.Storage {
	case config.StorageMemory:
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		rm = repomanager.NewMemoryRepositoryManager()
	case config.StoragePostgres:
		var err error
		db, err = openPostgres(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		rm = repomanager.NewPostgresRepositoryManager()
	default:
		return nil, fmt.Errorf("unknown storage %q", c.Storage)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("migrations: %w", err)
	}

	var exporter export.Uploader
	if c.ExportEnabled() {
		exporter = export.NewS3Exporter(c)
	}

	srv := httpapi.NewServer(c, logger,
		services.NewUserService(db, rm, c),
		services.NewHerdService(db, rm),
		services.NewMilkService(db, rm, exporter),
	)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
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
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a shutdown signal arrives or the server fails.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage, "export", app.config.ExportEnabled())

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "close db", "error", err)
		}
	}
	app.logger.Info(ctx, "Stopped")
}
