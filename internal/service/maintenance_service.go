package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-rental/internal/events"
	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const maintenanceSlot = 24 * time.Hour

type ScheduleMaintenanceInput struct {
	VehicleID   uuid.UUID             `json:"vehiculeId" validate:"required"`
	Type        model.MaintenanceType `json:"type" validate:"required,oneof=OIL_CHANGE TIRES BRAKES INSPECTION REPAIR OTHER"`
	ScheduledAt time.Time             `json:"scheduledAt" validate:"required"`
	Cost        float64               `json:"cost" validate:"gte=0"`
	Notes       string                `json:"notes" validate:"max=2000"`
}

type CompleteMaintenanceInput struct {
	CompletedAt *time.Time `json:"completedAt"`
	Odometer    *int64     `json:"odometer" validate:"omitempty,gte=0"`
	Cost        *float64   `json:"cost" validate:"omitempty,gte=0"`
}

type MaintenanceService struct {
	sideEffects
	repos repository.Repositories
	uow   repository.UnitOfWork
	now   func() time.Time
}

func NewMaintenanceService(repos repository.Repositories, uow repository.UnitOfWork, publisher events.Publisher, log zerolog.Logger) *MaintenanceService {
	return &MaintenanceService{
		sideEffects: newSideEffects(repos.Notifications, publisher, log),
		repos:       repos,
		uow:         uow,
		now:         time.Now,
	}
}

// Schedule books a service slot. An available vehicle is taken out of the
// rentable pool right away.
func (s *MaintenanceService) Schedule(ctx context.Context, input ScheduleMaintenanceInput) (*model.MaintenanceRecord, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var record model.MaintenanceRecord
	err := s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		vehicle, err := repos.Vehicles.GetByID(ctx, input.VehicleID)
		if err != nil {
			return storeError(err, "vehicle")
		}
		switch vehicle.Status {
		case model.VehicleStatusRented:
			return fmt.Errorf("%w: vehicle is rented", ErrVehicleBusy)
		case model.VehicleStatusWrecked:
			return newValidationError("vehiculeId", "vehicle is wrecked")
		case model.VehicleStatusAvailable:
			if err := repos.Vehicles.TransitionStatus(ctx, vehicle.ID, model.VehicleStatusAvailable, model.VehicleStatusInMaintenance); err != nil {
				if errors.Is(err, repository.ErrConflict) {
					return fmt.Errorf("%w: vehicle status changed concurrently", ErrVehicleBusy)
				}
				return err
			}
		}

		record = model.MaintenanceRecord{
			VehicleID:   vehicle.ID,
			Type:        input.Type,
			ScheduledAt: input.ScheduledAt.UTC(),
			Cost:        input.Cost,
			Notes:       input.Notes,
		}
		if err := repos.Maintenance.Create(ctx, &record); err != nil {
			return storeError(err, "vehicle")
		}

		maintenanceID := record.ID
		return repos.Calendar.Create(ctx, &model.CalendarEvent{
			Title:         fmt.Sprintf("%s %s %s (%s)", record.Type, vehicle.Make, vehicle.Model, vehicle.LicensePlate),
			StartAt:       record.ScheduledAt,
			EndAt:         record.ScheduledAt.Add(maintenanceSlot),
			Category:      model.EventCategoryMaintenance,
			MaintenanceID: &maintenanceID,
		})
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.KeyMaintenanceScheduled, events.MaintenanceScheduled{
		MaintenanceID: record.ID,
		VehicleID:     record.VehicleID,
		Type:          string(record.Type),
		ScheduledAt:   record.ScheduledAt,
		OccurredAt:    s.now().UTC(),
	})
	return &record, nil
}

func (s *MaintenanceService) Complete(ctx context.Context, id uuid.UUID, input CompleteMaintenanceInput) (*model.MaintenanceRecord, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	var record *model.MaintenanceRecord
	err := s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		record, err = repos.Maintenance.GetByID(ctx, id)
		if err != nil {
			return storeError(err, "maintenance")
		}
		if record.Completed() {
			return newValidationError("id", "maintenance already completed")
		}
		vehicle, err := repos.Vehicles.GetByID(ctx, record.VehicleID)
		if err != nil {
			return storeError(err, "vehicle")
		}

		completedAt := s.now().UTC()
		if input.CompletedAt != nil {
			completedAt = input.CompletedAt.UTC()
		}
		cost := record.Cost
		if input.Cost != nil {
			cost = *input.Cost
		}
		reading := vehicle.Odometer
		if input.Odometer != nil {
			reading = *input.Odometer
		}

		err = repos.Maintenance.Complete(ctx, id, completedAt, &reading, cost)
		if errors.Is(err, repository.ErrConflict) {
			return newValidationError("id", "maintenance already completed")
		}
		if err != nil {
			return err
		}
		oilChanged := record.Type == model.MaintenanceTypeOilChange
		if err := repos.Vehicles.RecordService(ctx, vehicle.ID, reading, oilChanged); err != nil {
			return storeError(err, "vehicle")
		}
		if err := s.releaseVehicle(ctx, repos, vehicle.ID, id); err != nil {
			return err
		}
		if err := repos.Calendar.DeleteByMaintenance(ctx, id); err != nil {
			return err
		}

		record.CompletedAt = &completedAt
		record.Odometer = &reading
		record.Cost = cost
		return nil
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *MaintenanceService) Get(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error) {
	record, err := s.repos.Maintenance.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "maintenance")
	}
	return record, nil
}

func (s *MaintenanceService) List(ctx context.Context, vehicleID *uuid.UUID) ([]model.MaintenanceRecord, error) {
	return s.repos.Maintenance.List(ctx, vehicleID)
}

func (s *MaintenanceService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		record, err := repos.Maintenance.GetByID(ctx, id)
		if err != nil {
			return storeError(err, "maintenance")
		}
		if err := repos.Calendar.DeleteByMaintenance(ctx, id); err != nil {
			return err
		}
		if err := repos.Maintenance.Delete(ctx, id); err != nil {
			return storeError(err, "maintenance")
		}
		if record.Completed() {
			return nil
		}
		return s.releaseVehicle(ctx, repos, record.VehicleID, id)
	})
}

// releaseVehicle returns a vehicle to the pool once no other open
// maintenance holds it.
func (s *MaintenanceService) releaseVehicle(ctx context.Context, repos repository.Repositories, vehicleID, closing uuid.UUID) error {
	records, err := repos.Maintenance.List(ctx, &vehicleID)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.ID != closing && !r.Completed() {
			return nil
		}
	}
	err = repos.Vehicles.TransitionStatus(ctx, vehicleID, model.VehicleStatusInMaintenance, model.VehicleStatusAvailable)
	if errors.Is(err, repository.ErrConflict) {
		return nil
	}
	return err
}
