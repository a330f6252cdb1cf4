package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-rental/internal/events"
	"github.com/nurpe/fleet-rental/internal/fidelity"
	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/pricing"
	"github.com/nurpe/fleet-rental/internal/repository"
)

// RentalPolicy holds the business constants of the rental workflow.
type RentalPolicy struct {
	TaxRate           float64
	ServiceIntervalKm int64
	Fidelity          *fidelity.Policy
}

func DefaultRentalPolicy() RentalPolicy {
	return RentalPolicy{
		TaxRate:           0.19,
		ServiceIntervalKm: 10000,
		Fidelity:          fidelity.DefaultPolicy(),
	}
}

type ClientIdentity struct {
	CIN   string `json:"CIN" validate:"required,len=8,numeric"`
	Name  string `json:"name" validate:"max=255"`
	Phone string `json:"phone" validate:"max=32"`
	City  string `json:"city" validate:"max=128"`
}

type CreateLocationInput struct {
	VehicleID         uuid.UUID      `json:"vehiculeId" validate:"required"`
	StartDate         time.Time      `json:"startDate" validate:"required"`
	EndDate           time.Time      `json:"endDate" validate:"required"`
	Client            ClientIdentity `json:"client"`
	InitialOdometer   *int64         `json:"kilometrageDebut" validate:"omitempty,gte=0"`
	Guarantee         float64        `json:"guarantee" validate:"gte=0"`
	OverrideBlacklist bool           `json:"overrideBlacklist"`
}

type TerminateLocationInput struct {
	LocationID    uuid.UUID `json:"id" validate:"required"`
	FinalOdometer *int64    `json:"kilometrageFinal" validate:"required,gte=0"`
}

type TerminationResult struct {
	DistanceTraveled int64           `json:"distanceParcourue"`
	ServiceDue       bool            `json:"vidangeNecessaire"`
	Location         *model.Location `json:"location"`
}

type RentalService struct {
	sideEffects
	repos  repository.Repositories
	uow    repository.UnitOfWork
	policy RentalPolicy
	now    func() time.Time
}

func NewRentalService(
	repos repository.Repositories,
	uow repository.UnitOfWork,
	publisher events.Publisher,
	policy RentalPolicy,
	log zerolog.Logger,
) *RentalService {
	if policy.Fidelity == nil {
		policy.Fidelity = fidelity.DefaultPolicy()
	}
	return &RentalService{
		sideEffects: newSideEffects(repos.Notifications, publisher, log),
		repos:       repos,
		uow:         uow,
		policy:      policy,
		now:         time.Now,
	}
}

// WithClock overrides the time source used for effective dates.
func (s *RentalService) WithClock(now func() time.Time) *RentalService {
	s.now = now
	return s
}

func (s *RentalService) CreateLocation(ctx context.Context, input CreateLocationInput) (*model.Location, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, fmt.Errorf("%w: endDate must be after startDate", ErrInvalidDateRange)
	}

	var (
		location model.Location
		vehicle  *model.Vehicle
		client   *model.Client
	)
	err := s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		var err error
		vehicle, err = repos.Vehicles.GetByID(ctx, input.VehicleID)
		if err != nil {
			return storeError(err, "vehicle")
		}
		if vehicle.Status != model.VehicleStatusAvailable {
			return fmt.Errorf("%w: vehicle is %s", ErrVehicleUnavailable, vehicle.Status)
		}

		var discount float64
		client, discount, err = s.resolveClient(ctx, repos, input)
		if err != nil {
			return err
		}

		days := pricing.DurationDays(input.StartDate, input.EndDate)
		quote := pricing.Compute(vehicle.DailyPrice, days, discount, s.policy.TaxRate)

		initialOdometer := vehicle.Odometer
		if input.InitialOdometer != nil {
			initialOdometer = *input.InitialOdometer
		}

		location = model.Location{
			VehicleID:          vehicle.ID,
			ClientID:           client.ID,
			StartDate:          input.StartDate.UTC(),
			EndDate:            input.EndDate.UTC(),
			EffectiveStartDate: s.now().UTC(),
			DurationDays:       quote.DurationDays,
			DailyPrice:         vehicle.DailyPrice,
			DiscountRate:       discount,
			PriceTTC:           quote.TotalFloat(),
			Guarantee:          input.Guarantee,
			Status:             model.LocationStatusActive,
			InitialOdometer:    initialOdometer,
		}
		if err := repos.Locations.Create(ctx, &location); err != nil {
			return storeError(err, "location")
		}

		// The availability flip is the last guard against a concurrent booking.
		err = repos.Vehicles.TransitionStatus(ctx, vehicle.ID, model.VehicleStatusAvailable, model.VehicleStatusRented)
		if errors.Is(err, repository.ErrConflict) {
			return fmt.Errorf("%w: vehicle was booked concurrently", ErrVehicleUnavailable)
		}
		if err != nil {
			return err
		}

		locationID := location.ID
		event := model.CalendarEvent{
			Title:      fmt.Sprintf("Rental %s %s (%s)", vehicle.Make, vehicle.Model, vehicle.LicensePlate),
			StartAt:    location.StartDate,
			EndAt:      location.EndDate,
			Category:   model.EventCategoryRental,
			LocationID: &locationID,
		}
		return repos.Calendar.Create(ctx, &event)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, model.Notification{
		Message: fmt.Sprintf("New rental of %s %s (%s) for client %s from %s to %s, total %.2f",
			vehicle.Make, vehicle.Model, vehicle.LicensePlate, client.CIN,
			location.StartDate.Format("2006-01-02"), location.EndDate.Format("2006-01-02"), location.PriceTTC),
		Category:   model.NotificationCategoryRental,
		LocationID: &location.ID,
		VehicleID:  &vehicle.ID,
	})
	s.publish(ctx, events.KeyRentalCreated, events.RentalCreated{
		LocationID:   location.ID,
		VehicleID:    vehicle.ID,
		ClientID:     client.ID,
		StartDate:    location.StartDate,
		EndDate:      location.EndDate,
		PriceTTC:     location.PriceTTC,
		DiscountRate: location.DiscountRate,
		OccurredAt:   s.now().UTC(),
	})

	return &location, nil
}

// resolveClient finds or creates the renting client and returns the discount
// earned before this rental is counted.
func (s *RentalService) resolveClient(ctx context.Context, repos repository.Repositories, input CreateLocationInput) (*model.Client, float64, error) {
	existing, err := repos.Clients.GetByCINForUpdate(ctx, input.Client.CIN)
	if errors.Is(err, repository.ErrNotFound) {
		client := model.Client{
			CIN:          input.Client.CIN,
			Name:         input.Client.Name,
			Phone:        input.Client.Phone,
			City:         input.Client.City,
			RentalCount:  1,
			FidelityTier: s.policy.Fidelity.Tier(1),
		}
		if err := repos.Clients.Create(ctx, &client); err != nil {
			return nil, 0, storeError(err, "client")
		}
		return &client, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	if existing.Blacklisted && !input.OverrideBlacklist {
		return nil, 0, fmt.Errorf("%w: client %s", ErrClientBlacklisted, existing.CIN)
	}

	discount := s.policy.Fidelity.Discount(s.policy.Fidelity.Tier(existing.RentalCount))
	existing.RentalCount++
	existing.FidelityTier = s.policy.Fidelity.Tier(existing.RentalCount)
	if err := repos.Clients.UpdateFidelity(ctx, existing.ID, existing.RentalCount, existing.FidelityTier); err != nil {
		return nil, 0, storeError(err, "client")
	}

	if contactChanged(existing, input.Client) {
		if input.Client.Name != "" {
			existing.Name = input.Client.Name
		}
		if input.Client.Phone != "" {
			existing.Phone = input.Client.Phone
		}
		if input.Client.City != "" {
			existing.City = input.Client.City
		}
		if err := repos.Clients.Update(ctx, existing); err != nil {
			return nil, 0, storeError(err, "client")
		}
	}
	return existing, discount, nil
}

func contactChanged(c *model.Client, id ClientIdentity) bool {
	return (id.Name != "" && id.Name != c.Name) ||
		(id.Phone != "" && id.Phone != c.Phone) ||
		(id.City != "" && id.City != c.City)
}

func (s *RentalService) TerminateLocation(ctx context.Context, input TerminateLocationInput) (*TerminationResult, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	finalOdometer := *input.FinalOdometer

	var (
		result  TerminationResult
		vehicle *model.Vehicle
	)
	err := s.uow.WithinTx(ctx, func(repos repository.Repositories) error {
		location, err := repos.Locations.GetByID(ctx, input.LocationID)
		if err != nil {
			return storeError(err, "location")
		}
		if location.Status != model.LocationStatusActive {
			return ErrAlreadyCompleted
		}
		if finalOdometer < location.InitialOdometer {
			return fmt.Errorf("%w: kilometrageFinal %d is below kilometrageDebut %d",
				ErrInvalidOdometer, finalOdometer, location.InitialOdometer)
		}

		vehicle, err = repos.Vehicles.GetByID(ctx, location.VehicleID)
		if err != nil {
			return storeError(err, "vehicle")
		}

		distance := finalOdometer - location.InitialOdometer
		serviceDue := distance >= s.policy.ServiceIntervalKm
		now := s.now().UTC()

		if err := repos.Vehicles.RecordReturn(ctx, vehicle.ID, finalOdometer, serviceDue); err != nil {
			return storeError(err, "vehicle")
		}

		var alertID *uuid.UUID
		if serviceDue {
			record := model.MaintenanceRecord{
				VehicleID:   vehicle.ID,
				Type:        model.MaintenanceTypeOilChange,
				ScheduledAt: now,
				Odometer:    &finalOdometer,
				Notes:       fmt.Sprintf("Oil change due after %d km rental", distance),
			}
			if err := repos.Maintenance.Create(ctx, &record); err != nil {
				return err
			}
			alertID = &record.ID
		}

		completion := model.LocationCompletion{
			FinalOdometer:      finalOdometer,
			DistanceTraveled:   distance,
			EffectiveEndDate:   now,
			MaintenanceAlertID: alertID,
		}
		err = repos.Locations.Complete(ctx, location.ID, completion)
		if errors.Is(err, repository.ErrConflict) {
			return ErrAlreadyCompleted
		}
		if err != nil {
			return err
		}
		if err := repos.Calendar.DeleteByLocation(ctx, location.ID); err != nil {
			return err
		}

		location.Status = model.LocationStatusCompleted
		location.FinalOdometer = &completion.FinalOdometer
		location.DistanceTraveled = &completion.DistanceTraveled
		location.EffectiveEndDate = &completion.EffectiveEndDate
		location.MaintenanceAlertID = alertID

		result = TerminationResult{
			DistanceTraveled: distance,
			ServiceDue:       serviceDue,
			Location:         location,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notification := model.Notification{
		Message: fmt.Sprintf("Rental of %s %s (%s) returned after %d km",
			vehicle.Make, vehicle.Model, vehicle.LicensePlate, result.DistanceTraveled),
		Category:   model.NotificationCategoryReturn,
		LocationID: &result.Location.ID,
		VehicleID:  &vehicle.ID,
	}
	if result.ServiceDue {
		notification.Message += ": oil change required"
		notification.Category = model.NotificationCategoryServiceAlert
		notification.Alert = true
	}
	s.notify(ctx, notification)
	s.publish(ctx, events.KeyRentalCompleted, events.RentalCompleted{
		LocationID:       result.Location.ID,
		VehicleID:        vehicle.ID,
		DistanceTraveled: result.DistanceTraveled,
		ServiceDue:       result.ServiceDue,
		OccurredAt:       s.now().UTC(),
	})

	return &result, nil
}

func (s *RentalService) GetLocation(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	location, err := s.repos.Locations.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "location")
	}
	return location, nil
}

func (s *RentalService) ListLocations(ctx context.Context, filter repository.LocationFilter) ([]model.Location, error) {
	if filter.Status != nil && *filter.Status != model.LocationStatusActive && *filter.Status != model.LocationStatusCompleted {
		return nil, newValidationError("status", "must be one of active completed")
	}
	return s.repos.Locations.List(ctx, filter)
}
