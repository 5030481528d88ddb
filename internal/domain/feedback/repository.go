package feedback

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repository needs; satisfied by
// pgxmock in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository reads feedback snapshots. The parsing core never writes this
// table; confirmations arrive through the review application.
type Repository struct {
	db DB
}

// NewRepository creates a feedback repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// ListForSupplier returns the full feedback snapshot for one supplier,
// most recently updated first.
func (r *Repository) ListForSupplier(ctx context.Context, supplier string) ([]Entry, error) {
	query := `
		SELECT id, supplier, detected_description, detected_sku,
			assigned_product_id, assigned_product_sku, assigned_product_name,
			assigned_uom, updated_at
		FROM parser_feedback
		WHERE supplier = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(ctx, query, supplier)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var detectedSKU, assignedSKU, assignedName, assignedUOM *string
		if err := rows.Scan(
			&e.ID,
			&e.Supplier,
			&e.DetectedDescription,
			&detectedSKU,
			&e.AssignedProductID,
			&assignedSKU,
			&assignedName,
			&assignedUOM,
			&e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if detectedSKU != nil {
			e.DetectedSKU = *detectedSKU
		}
		if assignedSKU != nil {
			e.AssignedProductSKU = *assignedSKU
		}
		if assignedName != nil {
			e.AssignedProductName = *assignedName
		}
		if assignedUOM != nil {
			e.AssignedUOM = *assignedUOM
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
