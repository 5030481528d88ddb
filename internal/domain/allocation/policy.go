package allocation

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the policy store needs; satisfied by
// pgxmock in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Policy is one supplier-scoped allocation policy, effective from a date.
type Policy struct {
	Supplier      string
	Mode          Mode
	EffectiveFrom time.Time
}

// PolicyStore looks up cost-allocation policies. Read-only: the table is
// maintained by the surrounding application.
type PolicyStore struct {
	db DB
}

// NewPolicyStore creates a policy store.
func NewPolicyStore(db DB) *PolicyStore {
	return &PolicyStore{db: db}
}

// ModeFor returns the most recently effective policy for the supplier as of
// the invoice date. With no configured policy it falls back to ModeNone.
func (s *PolicyStore) ModeFor(ctx context.Context, supplier string, invoiceDate time.Time) (Mode, error) {
	query := `
		SELECT mode
		FROM allocation_policies
		WHERE supplier = $1 AND effective_from <= $2
		ORDER BY effective_from DESC
		LIMIT 1
	`

	var mode string
	err := s.db.QueryRow(ctx, query, supplier, invoiceDate).Scan(&mode)
	if errors.Is(err, pgx.ErrNoRows) {
		return ModeNone, nil
	}
	if err != nil {
		return ModeNone, err
	}
	return Mode(mode), nil
}

// ResolveMode returns the caller's explicit mode when given, otherwise the
// supplier's configured policy.
func (s *PolicyStore) ResolveMode(ctx context.Context, explicit *Mode, supplier string, invoiceDate time.Time) (Mode, error) {
	if explicit != nil {
		return *explicit, nil
	}
	return s.ModeFor(ctx, supplier, invoiceDate)
}
