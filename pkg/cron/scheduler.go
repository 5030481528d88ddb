// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/nortenlab/invoicedraft/internal/domain/pricehistory"
)

// Scheduler manages background scheduled jobs using robfig/cron.
type Scheduler struct {
	cron      *cron.Cron
	repo      *pricehistory.Repository
	schedule  string
	threshold float64
	logger    *slog.Logger
}

// NewScheduler creates a new job scheduler.
func NewScheduler(repo *pricehistory.Repository, schedule string, threshold float64, logger *slog.Logger) *Scheduler {
	// Create cron with seconds disabled (standard 5-field format)
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:      c,
		repo:      repo,
		schedule:  schedule,
		threshold: threshold,
		logger:    logger,
	}
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.scanPriceSeries)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.Int("jobs", len(s.cron.Entries())),
		slog.String("schedule", s.schedule),
	)
	return nil
}

// Stop gracefully stops all scheduled jobs.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// RunNow manually triggers the price series scan (for testing/admin).
func (s *Scheduler) RunNow() {
	go s.scanPriceSeries()
}

// ScanOnce runs the price series scan synchronously, for one-shot CLI use.
func (s *Scheduler) ScanOnce() {
	s.scanPriceSeries()
}

// scanPriceSeries walks every product's price history and logs series that
// contain statistical outliers. The stored rows are left untouched, fixes go
// through the explicit correction endpoint.
func (s *Scheduler) scanPriceSeries() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	s.logger.Info("starting nightly price series scan")

	productIDs, err := s.repo.ListProducts(ctx)
	if err != nil {
		s.logger.Error("failed to list products", slog.Any("error", err))
		return
	}

	scanned := 0
	suspicious := 0

	for _, productID := range productIDs {
		series, err := s.repo.ListForProduct(ctx, productID)
		if err != nil {
			s.logger.Warn("failed to load price series",
				slog.String("product_id", productID.String()),
				slog.Any("error", err),
			)
			continue
		}

		_, repaired := pricehistory.CorrectOutliers(series, s.threshold)
		if repaired > 0 {
			s.logger.Warn("price series contains outliers",
				slog.String("product_id", productID.String()),
				slog.Int("outliers", repaired),
				slog.Int("points", len(series)),
			)
			suspicious++
		}
		scanned++
	}

	s.logger.Info("nightly price series scan completed",
		slog.Int("products_scanned", scanned),
		slog.Int("products_suspicious", suspicious),
	)
}
