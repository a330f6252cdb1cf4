package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/repository"
)

const uniqueViolation = "23505"

// constraintFields maps unique constraints to the API field they protect.
var constraintFields = map[string]string{
	"uq_vehicles_license_plate": "licensePlate",
	"uq_clients_cin":            "cin",
	"uq_users_email":            "email",
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Repositories() repository.Repositories {
	return newRepositories(s.db)
}

func (s *Store) WithinTx(ctx context.Context, fn func(repos repository.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(db *gorm.DB) repository.Repositories {
	return repository.Repositories{
		Vehicles:      NewVehicleRepository(db),
		Clients:       NewClientRepository(db),
		Locations:     NewLocationRepository(db),
		Maintenance:   NewMaintenanceRepository(db),
		Calendar:      NewCalendarRepository(db),
		Notifications: NewNotificationRepository(db),
		Users:         NewUserRepository(db),
		Documents:     NewDocumentRepository(db),
	}
}

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return repository.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		field, ok := constraintFields[pgErr.ConstraintName]
		if !ok {
			field = strings.TrimPrefix(pgErr.ConstraintName, "uq_")
		}
		return &repository.DuplicateError{Field: field}
	}
	return err
}

// expectRows turns a write that touched nothing into the given sentinel.
func expectRows(result *gorm.DB, none error) error {
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return none
	}
	return nil
}

func likePattern(search string) string {
	return "%" + strings.TrimSpace(search) + "%"
}
