package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nortenlab/invoicedraft/internal/domain/allocation"
	"github.com/nortenlab/invoicedraft/internal/domain/feedback"
	"github.com/nortenlab/invoicedraft/internal/domain/pricehistory"
	"github.com/nortenlab/invoicedraft/internal/pipeline"
	"github.com/nortenlab/invoicedraft/pkg/config"
	"github.com/nortenlab/invoicedraft/pkg/cron"
	"github.com/nortenlab/invoicedraft/pkg/db"
	"github.com/nortenlab/invoicedraft/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	FeedbackRepo *feedback.Repository
	PolicyStore  *allocation.PolicyStore
	HistoryRepo  *pricehistory.Repository

	// Services
	Pipeline  *pipeline.Service
	History   *pricehistory.Service
	Scheduler *cron.Scheduler

	// Archive is nil when ARCHIVE_DIR is unset.
	Archive storage.Archive
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(); err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	deps.initRepositories()
	deps.initServices()

	if cfg.Archive.Dir != "" {
		archive, err := storage.NewLocalArchive(cfg.Archive.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to init document archive: %w", err)
		}
		deps.Archive = archive
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase initializes the database connection and runs migrations
func (d *Dependencies) initDatabase() error {
	database, err := db.New(db.Config{
		DSN:             d.Config.Database.DSN(),
		MaxConns:        25,
		MinConns:        5,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 10 * time.Minute,
	}, d.Logger)
	if err != nil {
		return err
	}

	d.DB = database

	if err := d.DB.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	d.Logger.Info("database connected and migrations completed successfully")
	return nil
}

func (d *Dependencies) initRepositories() {
	d.FeedbackRepo = feedback.NewRepository(d.DB.Pool)
	d.PolicyStore = allocation.NewPolicyStore(d.DB.Pool)
	d.HistoryRepo = pricehistory.NewRepository(d.DB.Pool)
}

func (d *Dependencies) initServices() {
	d.Pipeline = pipeline.NewService(d.Logger, d.FeedbackRepo)
	d.History = pricehistory.NewService(d.Logger, d.HistoryRepo)
	d.Scheduler = cron.NewScheduler(d.HistoryRepo,
		d.Config.Jobs.OutlierScanSchedule,
		d.Config.Parser.OutlierThreshold,
		d.Logger)
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
