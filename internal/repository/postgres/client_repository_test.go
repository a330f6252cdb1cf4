package postgres

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

func TestClientRepository_GetByCIN(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)
		id := uuid.New()

		mock.ExpectQuery(`FROM clients\s+WHERE cin = \$1`).
			WithArgs("12345678").
			WillReturnRows(sqlmock.NewRows([]string{"id", "cin", "rental_count", "fidelity_tier", "blacklisted"}).
				AddRow(id.String(), "12345678", 4, "DISCOUNT_10", false))

		c, err := repo.GetByCIN(ctx, "12345678")
		require.NoError(t, err)
		assert.Equal(t, id, c.ID)
		assert.Equal(t, 4, c.RentalCount)
		assert.Equal(t, model.FidelityTierDiscount10, c.FidelityTier)
	})

	t.Run("Not Found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewClientRepository(db)

		mock.ExpectQuery(`FROM clients`).
			WithArgs("00000000").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.GetByCIN(ctx, "00000000")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestClientRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)

	mock.ExpectQuery(`INSERT INTO clients`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "uq_clients_cin"})

	err := repo.Create(context.Background(), &model.Client{CIN: "12345678"})

	var dup *repository.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "cin", dup.Field)
}

func TestClientRepository_UpdateFidelity(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE clients\s+SET rental_count = \$1, fidelity_tier = \$2`).
		WithArgs(7, model.FidelityTierDiscount20, id).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateFidelity(context.Background(), id, 7, model.FidelityTierDiscount20))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClientRepository_GetByCINForUpdate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClientRepository(db)
	id := uuid.New()

	mock.ExpectQuery(`FROM clients\s+WHERE cin = \$1\s+LIMIT 1 FOR UPDATE`).
		WithArgs("12345678").
		WillReturnRows(sqlmock.NewRows([]string{"id", "cin", "rental_count"}).
			AddRow(id.String(), "12345678", 5))

	c, err := repo.GetByCINForUpdate(context.Background(), "12345678")
	require.NoError(t, err)
	assert.Equal(t, 5, c.RentalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
