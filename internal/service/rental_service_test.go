package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/fleet-rental/internal/events"
	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
	"github.com/nurpe/fleet-rental/internal/repository/memory"
)

var fixedNow = time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

type rentalFixture struct {
	store     *memory.Store
	repos     repository.Repositories
	publisher *events.Recorder
	svc       *RentalService
}

func newRentalFixture(t *testing.T) *rentalFixture {
	t.Helper()
	store := memory.NewStore()
	publisher := &events.Recorder{}
	svc := NewRentalService(store.Repositories(), store, publisher, DefaultRentalPolicy(), zerolog.Nop()).
		WithClock(func() time.Time { return fixedNow })
	return &rentalFixture{store: store, repos: store.Repositories(), publisher: publisher, svc: svc}
}

func (f *rentalFixture) vehicle(t *testing.T, price float64, status model.VehicleStatus) *model.Vehicle {
	t.Helper()
	v := &model.Vehicle{
		Make:               "Peugeot",
		Model:              "208",
		LicensePlate:       uuid.NewString()[:8],
		Year:               2022,
		Odometer:           50000,
		LastOilChangeKm:    45000,
		Status:             status,
		FuelType:           model.FuelTypeEssence,
		InsuranceExpiresAt: fixedNow.AddDate(1, 0, 0),
		DailyPrice:         price,
	}
	require.NoError(t, f.repos.Vehicles.Create(context.Background(), v))
	return v
}

func (f *rentalFixture) client(t *testing.T, cin string, rentals int, blacklisted bool) *model.Client {
	t.Helper()
	ctx := context.Background()
	c := &model.Client{
		CIN:          cin,
		Name:         "Amine",
		RentalCount:  rentals,
		FidelityTier: DefaultRentalPolicy().Fidelity.Tier(rentals),
	}
	require.NoError(t, f.repos.Clients.Create(ctx, c))
	if blacklisted {
		reason := "unpaid damages"
		require.NoError(t, f.repos.Clients.SetBlacklist(ctx, c.ID, true, &reason))
	}
	return c
}

func twoDayRental(vehicleID uuid.UUID, cin string) CreateLocationInput {
	start := time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC)
	return CreateLocationInput{
		VehicleID: vehicleID,
		StartDate: start,
		EndDate:   start.Add(48 * time.Hour),
		Client:    ClientIdentity{CIN: cin, Name: "Amine"},
	}
}

func TestRentalService_CreateLocation(t *testing.T) {
	ctx := context.Background()

	t.Run("New Client", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)

		loc, err := f.svc.CreateLocation(ctx, twoDayRental(v.ID, "12345678"))
		require.NoError(t, err)

		assert.Equal(t, model.LocationStatusActive, loc.Status)
		assert.Equal(t, 2, loc.DurationDays)
		assert.InDelta(t, 119.00, loc.PriceTTC, 1e-9)
		assert.Zero(t, loc.DiscountRate)
		assert.Equal(t, int64(50000), loc.InitialOdometer)
		assert.Equal(t, fixedNow, loc.EffectiveStartDate)

		client, err := f.repos.Clients.GetByCIN(ctx, "12345678")
		require.NoError(t, err)
		assert.Equal(t, 1, client.RentalCount)
		assert.Equal(t, model.FidelityTierNone, client.FidelityTier)
		assert.Equal(t, client.ID, loc.ClientID)

		vehicle, err := f.repos.Vehicles.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, model.VehicleStatusRented, vehicle.Status)

		cal, err := f.repos.Calendar.List(ctx, loc.StartDate.Add(-time.Hour), loc.EndDate.Add(time.Hour))
		require.NoError(t, err)
		require.Len(t, cal, 1)
		assert.Equal(t, model.EventCategoryRental, cal[0].Category)
		assert.Equal(t, loc.ID, *cal[0].LocationID)

		notes, err := f.repos.Notifications.List(ctx, false, 10)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, model.NotificationCategoryRental, notes[0].Category)

		published := f.publisher.Events()
		require.Len(t, published, 1)
		assert.Equal(t, events.KeyRentalCreated, published[0].Key)
	})

	t.Run("Discount From Tier Before Increment", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 100, model.VehicleStatusAvailable)
		f.client(t, "11112222", 6, false)

		input := twoDayRental(v.ID, "11112222")
		input.EndDate = input.StartDate.Add(72 * time.Hour)

		loc, err := f.svc.CreateLocation(ctx, input)
		require.NoError(t, err)

		// six rentals is the 10% tier; the seventh reaches 20% only for the next one
		assert.InDelta(t, 0.10, loc.DiscountRate, 1e-9)
		assert.InDelta(t, 321.30, loc.PriceTTC, 1e-9)

		client, err := f.repos.Clients.GetByCIN(ctx, "11112222")
		require.NoError(t, err)
		assert.Equal(t, 7, client.RentalCount)
		assert.Equal(t, model.FidelityTierDiscount20, client.FidelityTier)
	})

	t.Run("Initial Odometer Override", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 40, model.VehicleStatusAvailable)

		input := twoDayRental(v.ID, "22223333")
		override := int64(50120)
		input.InitialOdometer = &override

		loc, err := f.svc.CreateLocation(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, override, loc.InitialOdometer)
	})

	t.Run("Partial Day Rounds Up", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)

		input := twoDayRental(v.ID, "33334444")
		input.EndDate = input.StartDate.Add(49 * time.Hour)

		loc, err := f.svc.CreateLocation(ctx, input)
		require.NoError(t, err)
		assert.Equal(t, 3, loc.DurationDays)
		assert.InDelta(t, 178.50, loc.PriceTTC, 1e-9)
	})

	t.Run("Invalid Date Range", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)

		input := twoDayRental(v.ID, "12345678")
		input.EndDate = input.StartDate

		_, err := f.svc.CreateLocation(ctx, input)
		assert.ErrorIs(t, err, ErrInvalidDateRange)
	})

	t.Run("Malformed CIN", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)

		_, err := f.svc.CreateLocation(ctx, twoDayRental(v.ID, "12AB"))

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "client.CIN")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("Vehicle Not Found", func(t *testing.T) {
		f := newRentalFixture(t)

		_, err := f.svc.CreateLocation(ctx, twoDayRental(uuid.New(), "12345678"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Vehicle Already Rented", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 50, model.VehicleStatusRented)
		existing := f.client(t, "44445555", 2, false)

		_, err := f.svc.CreateLocation(ctx, twoDayRental(v.ID, "44445555"))
		assert.ErrorIs(t, err, ErrVehicleUnavailable)

		client, err := f.repos.Clients.GetByID(ctx, existing.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, client.RentalCount)

		locations, err := f.repos.Locations.List(ctx, repository.LocationFilter{})
		require.NoError(t, err)
		assert.Empty(t, locations)
		assert.Empty(t, f.publisher.Events())
	})

	t.Run("Blacklisted Client", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)
		f.client(t, "55556666", 3, true)

		input := twoDayRental(v.ID, "55556666")
		_, err := f.svc.CreateLocation(ctx, input)
		assert.ErrorIs(t, err, ErrClientBlacklisted)

		vehicle, err := f.repos.Vehicles.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, model.VehicleStatusAvailable, vehicle.Status)
		client, err := f.repos.Clients.GetByCIN(ctx, "55556666")
		require.NoError(t, err)
		assert.Equal(t, 3, client.RentalCount)

		input.OverrideBlacklist = true
		loc, err := f.svc.CreateLocation(ctx, input)
		require.NoError(t, err)
		assert.InDelta(t, 0.10, loc.DiscountRate, 1e-9)
	})

	t.Run("Publisher Failure Does Not Fail Rental", func(t *testing.T) {
		f := newRentalFixture(t)
		f.publisher.Err = errors.New("broker down")
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)

		_, err := f.svc.CreateLocation(ctx, twoDayRental(v.ID, "66667777"))
		assert.NoError(t, err)
	})

	t.Run("Concurrent Bookings", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)

		cins := []string{"70000001", "70000002", "70000003", "70000004", "70000005"}
		errs := make([]error, len(cins))
		var wg sync.WaitGroup
		for i, cin := range cins {
			wg.Add(1)
			go func(i int, cin string) {
				defer wg.Done()
				_, errs[i] = f.svc.CreateLocation(ctx, twoDayRental(v.ID, cin))
			}(i, cin)
		}
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			assert.ErrorIs(t, err, ErrVehicleUnavailable)
		}
		assert.Equal(t, 1, succeeded)

		locations, err := f.repos.Locations.List(ctx, repository.LocationFilter{VehicleID: &v.ID})
		require.NoError(t, err)
		assert.Len(t, locations, 1)
	})
}

func TestRentalService_TerminateLocation(t *testing.T) {
	ctx := context.Background()

	rent := func(t *testing.T, f *rentalFixture) (*model.Vehicle, *model.Location) {
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)
		loc, err := f.svc.CreateLocation(ctx, twoDayRental(v.ID, "12345678"))
		require.NoError(t, err)
		return v, loc
	}
	odometer := func(v int64) *int64 { return &v }

	t.Run("Service Due", func(t *testing.T) {
		f := newRentalFixture(t)
		v, loc := rent(t, f)

		res, err := f.svc.TerminateLocation(ctx, TerminateLocationInput{
			LocationID:    loc.ID,
			FinalOdometer: odometer(loc.InitialOdometer + 12000),
		})
		require.NoError(t, err)

		assert.Equal(t, int64(12000), res.DistanceTraveled)
		assert.True(t, res.ServiceDue)
		assert.Equal(t, model.LocationStatusCompleted, res.Location.Status)
		require.NotNil(t, res.Location.MaintenanceAlertID)

		vehicle, err := f.repos.Vehicles.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, model.VehicleStatusAvailable, vehicle.Status)
		assert.Equal(t, int64(62000), vehicle.Odometer)
		assert.Equal(t, int64(62000), vehicle.LastOilChangeKm)

		stored, err := f.repos.Locations.GetByID(ctx, loc.ID)
		require.NoError(t, err)
		assert.Equal(t, model.LocationStatusCompleted, stored.Status)
		assert.Equal(t, int64(62000), *stored.FinalOdometer)
		assert.Equal(t, fixedNow, *stored.EffectiveEndDate)

		alert, err := f.repos.Maintenance.GetByID(ctx, *res.Location.MaintenanceAlertID)
		require.NoError(t, err)
		assert.Equal(t, model.MaintenanceTypeOilChange, alert.Type)

		cal, err := f.repos.Calendar.List(ctx, loc.StartDate.Add(-time.Hour), loc.EndDate.Add(time.Hour))
		require.NoError(t, err)
		assert.Empty(t, cal)

		notes, err := f.repos.Notifications.List(ctx, false, 10)
		require.NoError(t, err)
		require.Len(t, notes, 2)
		var alerted bool
		for _, n := range notes {
			if n.Category == model.NotificationCategoryServiceAlert {
				alerted = n.Alert
			}
		}
		assert.True(t, alerted)

		published := f.publisher.Events()
		require.Len(t, published, 2)
		assert.Equal(t, events.KeyRentalCompleted, published[1].Key)
	})

	t.Run("No Service Below Interval", func(t *testing.T) {
		f := newRentalFixture(t)
		v, loc := rent(t, f)

		res, err := f.svc.TerminateLocation(ctx, TerminateLocationInput{
			LocationID:    loc.ID,
			FinalOdometer: odometer(loc.InitialOdometer + 9999),
		})
		require.NoError(t, err)
		assert.False(t, res.ServiceDue)
		assert.Nil(t, res.Location.MaintenanceAlertID)

		vehicle, err := f.repos.Vehicles.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(59999), vehicle.Odometer)
		assert.Equal(t, int64(45000), vehicle.LastOilChangeKm)
	})

	t.Run("Low Start Override Keeps Vehicle Odometer", func(t *testing.T) {
		f := newRentalFixture(t)
		v := f.vehicle(t, 50, model.VehicleStatusAvailable)
		input := twoDayRental(v.ID, "12345678")
		input.InitialOdometer = odometer(40000)
		loc, err := f.svc.CreateLocation(ctx, input)
		require.NoError(t, err)

		res, err := f.svc.TerminateLocation(ctx, TerminateLocationInput{
			LocationID:    loc.ID,
			FinalOdometer: odometer(45000),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5000), res.DistanceTraveled)

		vehicle, err := f.repos.Vehicles.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(50000), vehicle.Odometer)
		assert.Equal(t, model.VehicleStatusAvailable, vehicle.Status)
	})

	t.Run("Odometer Below Start", func(t *testing.T) {
		f := newRentalFixture(t)
		v, loc := rent(t, f)

		_, err := f.svc.TerminateLocation(ctx, TerminateLocationInput{
			LocationID:    loc.ID,
			FinalOdometer: odometer(loc.InitialOdometer - 1),
		})
		assert.ErrorIs(t, err, ErrInvalidOdometer)

		vehicle, err := f.repos.Vehicles.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, model.VehicleStatusRented, vehicle.Status)
	})

	t.Run("Second Termination", func(t *testing.T) {
		f := newRentalFixture(t)
		v, loc := rent(t, f)

		_, err := f.svc.TerminateLocation(ctx, TerminateLocationInput{LocationID: loc.ID, FinalOdometer: odometer(loc.InitialOdometer + 100)})
		require.NoError(t, err)

		_, err = f.svc.TerminateLocation(ctx, TerminateLocationInput{LocationID: loc.ID, FinalOdometer: odometer(loc.InitialOdometer + 20000)})
		assert.ErrorIs(t, err, ErrAlreadyCompleted)

		vehicle, err := f.repos.Vehicles.GetByID(ctx, v.ID)
		require.NoError(t, err)
		assert.Equal(t, loc.InitialOdometer+100, vehicle.Odometer)
	})

	t.Run("Unknown Location", func(t *testing.T) {
		f := newRentalFixture(t)

		_, err := f.svc.TerminateLocation(ctx, TerminateLocationInput{LocationID: uuid.New(), FinalOdometer: odometer(1)})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Missing Final Odometer", func(t *testing.T) {
		f := newRentalFixture(t)

		_, err := f.svc.TerminateLocation(ctx, TerminateLocationInput{LocationID: uuid.New()})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "kilometrageFinal")
	})
}
