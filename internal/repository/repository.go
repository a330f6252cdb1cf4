package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a conditional update matched no row.
	ErrConflict = errors.New("state conflict")
)

// DuplicateError names the field whose uniqueness was violated.
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return "duplicate " + e.Field
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

type VehicleFilter struct {
	Status *model.VehicleStatus
	Search string
}

// VehicleState is the status and odometer an update expects to find.
type VehicleState struct {
	Status   model.VehicleStatus
	Odometer int64
}

type VehicleRepository interface {
	Create(ctx context.Context, v *model.Vehicle) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error)
	List(ctx context.Context, filter VehicleFilter) ([]model.Vehicle, error)
	// Update writes v only while the row still matches expected; ErrConflict otherwise.
	Update(ctx context.Context, v *model.Vehicle, expected VehicleState) error
	Delete(ctx context.Context, id uuid.UUID) error
	// TransitionStatus sets status to `to` only if it currently equals `from`.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.VehicleStatus) error
	// RecordReturn makes the vehicle available again; the odometer never decreases.
	RecordReturn(ctx context.Context, id uuid.UUID, odometer int64, oilChanged bool) error
	// RecordService raises the odometer to a service reading without touching status.
	RecordService(ctx context.Context, id uuid.UUID, odometer int64, oilChanged bool) error
	ListInsuranceExpiring(ctx context.Context, before time.Time) ([]model.Vehicle, error)
}

type ClientFilter struct {
	Search      string
	Blacklisted *bool
}

type ClientRepository interface {
	Create(ctx context.Context, c *model.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	GetByCIN(ctx context.Context, cin string) (*model.Client, error)
	// GetByCINForUpdate locks the row so concurrent rentals count in turn.
	GetByCINForUpdate(ctx context.Context, cin string) (*model.Client, error)
	List(ctx context.Context, filter ClientFilter) ([]model.Client, error)
	Update(ctx context.Context, c *model.Client) error
	UpdateFidelity(ctx context.Context, id uuid.UUID, rentalCount int, tier model.FidelityTier) error
	SetBlacklist(ctx context.Context, id uuid.UUID, blacklisted bool, reason *string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type LocationFilter struct {
	Status    *model.LocationStatus
	VehicleID *uuid.UUID
	ClientID  *uuid.UUID
	// StartsBefore and EndsAfter select contracts overlapping a period.
	StartsBefore *time.Time
	EndsAfter    *time.Time
}

type LocationRepository interface {
	Create(ctx context.Context, l *model.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error)
	List(ctx context.Context, filter LocationFilter) ([]model.Location, error)
	// Complete moves an active contract to completed; ErrConflict otherwise.
	Complete(ctx context.Context, id uuid.UUID, completion model.LocationCompletion) error
	ListOverdue(ctx context.Context, now time.Time) ([]model.Location, error)
}

type MaintenanceRepository interface {
	Create(ctx context.Context, m *model.MaintenanceRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error)
	List(ctx context.Context, vehicleID *uuid.UUID) ([]model.MaintenanceRecord, error)
	Complete(ctx context.Context, id uuid.UUID, completedAt time.Time, odometer *int64, cost float64) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type CalendarRepository interface {
	Create(ctx context.Context, e *model.CalendarEvent) error
	List(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error)
	DeleteByLocation(ctx context.Context, locationID uuid.UUID) error
	DeleteByMaintenance(ctx context.Context, maintenanceID uuid.UUID) error
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, unseenOnly bool, limit int) ([]model.Notification, error)
	MarkSeen(ctx context.Context, id uuid.UUID) error
	MarkAllSeen(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type DocumentRepository interface {
	Create(ctx context.Context, d *model.ContractDocument) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.ContractDocument, error)
	ListByLocation(ctx context.Context, locationID uuid.UUID) ([]model.ContractDocument, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repositories bundles every entity repository bound to the same connection
// or transaction.
type Repositories struct {
	Vehicles      VehicleRepository
	Clients       ClientRepository
	Locations     LocationRepository
	Maintenance   MaintenanceRepository
	Calendar      CalendarRepository
	Notifications NotificationRepository
	Users         UserRepository
	Documents     DocumentRepository
}

// UnitOfWork runs fn against repositories that commit together or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
