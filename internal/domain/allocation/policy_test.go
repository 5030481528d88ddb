package allocation

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyStoreModeFor(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	invoiceDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT mode`).
		WithArgs("Hartmann", invoiceDate).
		WillReturnRows(pgxmock.NewRows([]string{"mode"}).AddRow("per_kg"))

	store := NewPolicyStore(mock)
	mode, err := store.ModeFor(context.Background(), "Hartmann", invoiceDate)
	require.NoError(t, err)
	assert.Equal(t, ModePerKg, mode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyStoreModeForNoPolicy(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	invoiceDate := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT mode`).
		WithArgs("Unbekannt", invoiceDate).
		WillReturnRows(pgxmock.NewRows([]string{"mode"}))

	store := NewPolicyStore(mock)
	mode, err := store.ModeFor(context.Background(), "Unbekannt", invoiceDate)
	require.NoError(t, err)
	assert.Equal(t, ModeNone, mode)
}

func TestPolicyStoreResolveModeExplicitWins(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	explicit := ModePerPiece
	store := NewPolicyStore(mock)
	mode, err := store.ResolveMode(context.Background(), &explicit, "Hartmann", time.Now())
	require.NoError(t, err)
	assert.Equal(t, ModePerPiece, mode)
	// No query must have been issued.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPolicyStoreResolveModeFallsBackToStore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	invoiceDate := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT mode`).
		WithArgs("Hartmann", invoiceDate).
		WillReturnRows(pgxmock.NewRows([]string{"mode"}).AddRow("per_piece"))

	store := NewPolicyStore(mock)
	mode, err := store.ResolveMode(context.Background(), nil, "Hartmann", invoiceDate)
	require.NoError(t, err)
	assert.Equal(t, ModePerPiece, mode)
}
