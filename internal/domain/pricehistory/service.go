package pricehistory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/nortenlab/invoicedraft/internal/domain/allocation"
	"github.com/nortenlab/invoicedraft/internal/observability"
)

// Service exposes price-history reads with outlier correction applied and the
// explicit correction endpoint for confirmed price fixes.
type Service struct {
	logger *slog.Logger
	repo   *Repository
}

// NewService creates a price-history service.
func NewService(logger *slog.Logger, repo *Repository) *Service {
	return &Service{logger: logger, repo: repo}
}

// CorrectedSeries returns the product's price series with statistical
// outliers repaired for display. The stored rows are never modified.
func (s *Service) CorrectedSeries(ctx context.Context, productID uuid.UUID, threshold float64) ([]PricePoint, error) {
	ctx, span := observability.Tracer().Start(ctx, "pricehistory.CorrectedSeries")
	defer span.End()

	series, err := s.repo.ListForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	corrected, repaired := CorrectOutliers(series, threshold)
	if repaired > 0 {
		observability.OutlierRepairs.Add(float64(repaired))
		s.logger.Info("repaired price outliers",
			slog.String("product_id", productID.String()),
			slog.Int("repaired", repaired),
			slog.Int("points", len(series)))
	}
	span.SetAttributes(
		attribute.Int("pricehistory.points", len(series)),
		attribute.Int("pricehistory.repaired", repaired),
	)
	return corrected, nil
}

// CorrectPrice persists a user-confirmed price fix for one historical record.
// Unlike document parsing this endpoint rejects invalid arguments outright.
func (s *Service) CorrectPrice(ctx context.Context, recordID int64, price decimal.Decimal) error {
	if recordID <= 0 {
		return fmt.Errorf("record id must be positive, got %d", recordID)
	}
	if price.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("corrected price must be positive, got %s", price)
	}

	if err := s.repo.UpdatePrice(ctx, recordID, price); err != nil {
		return err
	}
	s.logger.Info("price record corrected",
		slog.Int64("record_id", recordID),
		slog.String("price", price.String()))
	return nil
}

// RecordAllocatedPrices writes one price-history row per convertible line of
// a processed document. Lines without a valid base quantity are skipped, the
// rest of the document is unaffected.
func (s *Service) RecordAllocatedPrices(ctx context.Context, supplier, sourceDocument string, recordedOn time.Time, items []allocation.PreparedItem, shares []allocation.Share) (int, error) {
	ctx, span := observability.Tracer().Start(ctx, "pricehistory.RecordAllocatedPrices")
	defer span.End()

	written := 0
	for i, it := range items {
		if it.QtyBase.LessThanOrEqual(decimal.Zero) {
			continue
		}
		price := it.BasePricePerUnit
		if i < len(shares) {
			price = allocation.FinalUnitPrice(it, shares[i])
		}
		_, err := s.repo.Insert(ctx, Record{
			ProductID:      it.ProductID,
			Supplier:       supplier,
			RecordedOn:     recordedOn,
			PricePerBase:   price,
			QtyBase:        it.QtyBase,
			SourceDocument: sourceDocument,
		})
		if err != nil {
			return written, err
		}
		written++
	}
	span.SetAttributes(attribute.Int("pricehistory.written", written))
	return written, nil
}
