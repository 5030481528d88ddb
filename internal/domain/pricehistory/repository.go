package pricehistory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// DB is the subset of pgxpool.Pool the repository needs; satisfied by pgxmock
// in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Record is one persisted price-history row.
type Record struct {
	ID             int64
	ProductID      uuid.UUID
	Supplier       string
	RecordedOn     time.Time
	PricePerBase   decimal.Decimal
	QtyBase        decimal.Decimal
	SourceDocument string
}

// Repository reads and writes price-history rows.
type Repository struct {
	db DB
}

// NewRepository creates a price-history repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// ListForProduct returns the product's price series in chronological order.
func (r *Repository) ListForProduct(ctx context.Context, productID uuid.UUID) ([]PricePoint, error) {
	query := `
		SELECT id, recorded_on, price_per_base
		FROM price_history
		WHERE product_id = $1
		ORDER BY recorded_on ASC, id ASC
	`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("listing price history: %w", err)
	}
	defer rows.Close()

	var points []PricePoint
	for rows.Next() {
		var p PricePoint
		if err := rows.Scan(&p.RecordID, &p.Date, &p.Price); err != nil {
			return nil, fmt.Errorf("scanning price point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

// ListProducts returns the distinct product ids with recorded prices.
func (r *Repository) ListProducts(ctx context.Context) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT product_id FROM price_history ORDER BY product_id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Insert persists one price observation and returns its id.
func (r *Repository) Insert(ctx context.Context, rec Record) (int64, error) {
	query := `
		INSERT INTO price_history (product_id, supplier, recorded_on, price_per_base, qty_base, source_document)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		rec.ProductID, rec.Supplier, rec.RecordedOn, rec.PricePerBase, rec.QtyBase, rec.SourceDocument,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting price record: %w", err)
	}
	return id, nil
}

// UpdatePrice overwrites the stored price of one record.
func (r *Repository) UpdatePrice(ctx context.Context, recordID int64, price decimal.Decimal) error {
	query := `UPDATE price_history SET price_per_base = $2, corrected_at = NOW() WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, recordID, price)
	if err != nil {
		return fmt.Errorf("updating price record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("price record %d not found", recordID)
	}
	return nil
}
