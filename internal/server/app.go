// Package server initializes and runs the pageclean application server.
// It opens the database, applies migrations, wires the services and serves
// them over gRPC until the process is asked to stop.
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

	"github.com/dmitrijs2005/pageclean/internal/logging"
	"github.com/dmitrijs2005/pageclean/internal/server/config"
	"github.com/dmitrijs2005/pageclean/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/pageclean/internal/server/services"
	"github.com/juju/clock"

	gs "github.com/dmitrijs2005/pageclean/internal/server/grpc"
)

// Services groups the application services built on one database handle.
type Services struct {
	Leases      *services.LeaseService
	Revisions   *services.RevisionService
	Scores      *services.ScoreService
	Collections *services.CollectionService
	Importer    *services.ImportService
}

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	services    *Services
}

// NewApp opens the configured database, brings its schema up to date and
// wires the services.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return NewAppWithClock(ctx, c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo), clock.WallClock)
}

// NewAppWithClock is NewApp with an explicit logger and time source.
func NewAppWithClock(ctx context.Context, c *config.Config, logger logging.Logger, clk clock.Clock) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	rm, err := repomanager.NewSQLRepositoryManager(c.DatabaseDriver)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDriver, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	svc := &Services{
		Leases:      services.NewLeaseService(db, rm, clk, c.LeaseDuration, logger.With("module", "leases")),
		Revisions:   services.NewRevisionService(db, rm, clk, logger.With("module", "revisions")),
		Scores:      services.NewScoreService(db, rm, logger.With("module", "scores")),
		Collections: services.NewCollectionService(db, rm),
		Importer:    services.NewImportService(db, rm, logger.With("module", "import")),
	}

	return &App{config: c, logger: logger, db: db, repomanager: rm, services: svc}, nil
}

func (app *App) Services() *Services {
	return app.services
}

func (app *App) Logger() logging.Logger {
	return app.logger
}

// Exporter builds an export service backed by the configured S3 bucket.
func (app *App) Exporter(ctx context.Context) (*services.ExportService, error) {
	client, err := services.NewS3Uploader(ctx, app.config)
	if err != nil {
		return nil, fmt.Errorf("s3 init error: %w", err)
	}
	return services.NewExportService(app.db, app.repomanager, client, app.config.S3Bucket, app.logger.With("module", "export")), nil
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s, err := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.services.Leases, app.services.Revisions, app.services.Collections, app.config.SecretKey)

	if err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	} else {

		if err := s.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}
}

// Run serves until ctx is cancelled or the process receives SIGINT, SIGTERM
// or SIGQUIT, then closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
