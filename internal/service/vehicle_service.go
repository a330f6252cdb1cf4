package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const (
	minVehicleYear       = 2010
	insuranceGracePeriod = 30 * 24 * time.Hour
)

type VehicleInput struct {
	Make               string              `json:"make" validate:"required,max=64"`
	Model              string              `json:"model" validate:"required,max=64"`
	LicensePlate       string              `json:"licensePlate" validate:"required,max=32"`
	Year               int                 `json:"year" validate:"required,gte=2010"`
	Odometer           int64               `json:"odometer" validate:"gte=0"`
	LastOilChangeKm    int64               `json:"lastOilChangeKm" validate:"gte=0"`
	Status             model.VehicleStatus `json:"status" validate:"omitempty,oneof=AVAILABLE RENTED IN_MAINTENANCE BROKEN WRECKED"`
	FuelType           model.FuelType      `json:"fuelType" validate:"required,oneof=ESSENCE DIESEL HYBRID ELECTRIC"`
	InsuranceExpiresAt time.Time           `json:"insuranceExpiresAt" validate:"required"`
	DailyPrice         float64             `json:"dailyPrice" validate:"required,gt=0"`
	FaultReason        *string             `json:"faultReason"`
	RepairDate         *time.Time          `json:"repairDate"`
}

type VehicleService struct {
	repos repository.Repositories
	now   func() time.Time
}

func NewVehicleService(repos repository.Repositories) *VehicleService {
	return &VehicleService{repos: repos, now: time.Now}
}

func (s *VehicleService) Create(ctx context.Context, input VehicleInput) (*model.Vehicle, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	if input.InsuranceExpiresAt.Before(s.now().Add(-insuranceGracePeriod)) {
		return nil, newValidationError("insuranceExpiresAt", "must not be more than 30 days in the past")
	}
	if input.Status == "" {
		input.Status = model.VehicleStatusAvailable
	}
	if input.Status == model.VehicleStatusRented {
		return nil, newValidationError("status", "RENTED is set by the rental workflow only")
	}

	vehicle := applyVehicleInput(model.Vehicle{}, input)
	if err := s.repos.Vehicles.Create(ctx, &vehicle); err != nil {
		return nil, storeError(err, "vehicle")
	}
	return &vehicle, nil
}

func (s *VehicleService) Get(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	vehicle, err := s.repos.Vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "vehicle")
	}
	return vehicle, nil
}

func (s *VehicleService) List(ctx context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	if filter.Status != nil && !filter.Status.Valid() {
		return nil, newValidationError("status", "unknown vehicle status")
	}
	return s.repos.Vehicles.List(ctx, filter)
}

func (s *VehicleService) Update(ctx context.Context, id uuid.UUID, input VehicleInput) (*model.Vehicle, error) {
	if err := s.check(input); err != nil {
		return nil, err
	}
	current, err := s.repos.Vehicles.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "vehicle")
	}
	if input.Status == "" {
		input.Status = current.Status
	}
	if input.Status != current.Status &&
		(input.Status == model.VehicleStatusRented || current.Status == model.VehicleStatusRented) {
		return nil, fmt.Errorf("%w: status of a rented vehicle changes through its rental", ErrVehicleBusy)
	}

	vehicle := applyVehicleInput(*current, input)
	expected := repository.VehicleState{Status: current.Status, Odometer: current.Odometer}
	err = s.repos.Vehicles.Update(ctx, &vehicle, expected)
	if errors.Is(err, repository.ErrConflict) {
		return nil, fmt.Errorf("%w: vehicle changed while being edited", ErrVehicleBusy)
	}
	if err != nil {
		return nil, storeError(err, "vehicle")
	}
	return &vehicle, nil
}

func (s *VehicleService) Delete(ctx context.Context, id uuid.UUID) error {
	vehicle, err := s.repos.Vehicles.GetByID(ctx, id)
	if err != nil {
		return storeError(err, "vehicle")
	}
	if vehicle.Status == model.VehicleStatusRented {
		return fmt.Errorf("%w: vehicle is rented", ErrVehicleBusy)
	}
	history, err := s.repos.Locations.List(ctx, repository.LocationFilter{VehicleID: &id})
	if err != nil {
		return err
	}
	if len(history) > 0 {
		return newValidationError("id", "vehicle has rental history")
	}
	return storeError(s.repos.Vehicles.Delete(ctx, id), "vehicle")
}

// ListLocations returns the rental history of a vehicle, newest first.
func (s *VehicleService) ListLocations(ctx context.Context, id uuid.UUID) ([]model.Location, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.repos.Locations.List(ctx, repository.LocationFilter{VehicleID: &id})
}

func (s *VehicleService) check(input VehicleInput) error {
	if err := validateStruct(input); err != nil {
		return err
	}
	if input.Year > s.now().Year() {
		return newValidationError("year", fmt.Sprintf("must be between %d and %d", minVehicleYear, s.now().Year()))
	}
	if input.LastOilChangeKm > input.Odometer {
		return newValidationError("lastOilChangeKm", "must not exceed odometer")
	}
	if input.FaultReason != nil && strings.TrimSpace(*input.FaultReason) != "" && input.RepairDate == nil {
		return newValidationError("repairDate", "is required when faultReason is set")
	}
	return nil
}

func applyVehicleInput(v model.Vehicle, input VehicleInput) model.Vehicle {
	v.Make = strings.TrimSpace(input.Make)
	v.Model = strings.TrimSpace(input.Model)
	v.LicensePlate = strings.ToUpper(strings.TrimSpace(input.LicensePlate))
	v.Year = input.Year
	v.Odometer = input.Odometer
	v.LastOilChangeKm = input.LastOilChangeKm
	v.Status = input.Status
	v.FuelType = input.FuelType
	v.InsuranceExpiresAt = input.InsuranceExpiresAt.UTC()
	v.DailyPrice = input.DailyPrice
	v.FaultReason = nil
	if input.FaultReason != nil && strings.TrimSpace(*input.FaultReason) != "" {
		reason := strings.TrimSpace(*input.FaultReason)
		v.FaultReason = &reason
	}
	v.RepairDate = input.RepairDate
	return v
}
