package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const jobTimeout = 2 * time.Minute

// AlertRunner raises notifications for conditions that only time reveals.
type AlertRunner struct {
	repos           repository.Repositories
	insuranceWindow time.Duration
	log             zerolog.Logger
	now             func() time.Time
}

func NewAlertRunner(repos repository.Repositories, insuranceWindowDays int, log zerolog.Logger) *AlertRunner {
	return &AlertRunner{
		repos:           repos,
		insuranceWindow: time.Duration(insuranceWindowDays) * 24 * time.Hour,
		log:             log.With().Str("component", "alerts").Logger(),
		now:             time.Now,
	}
}

func (r *AlertRunner) WithClock(now func() time.Time) *AlertRunner {
	r.now = now
	return r
}

// CheckInsuranceExpiry flags every vehicle whose insurance lapses within the window.
func (r *AlertRunner) CheckInsuranceExpiry(ctx context.Context) (int, error) {
	now := r.now().UTC()
	vehicles, err := r.repos.Vehicles.ListInsuranceExpiring(ctx, now.Add(r.insuranceWindow))
	if err != nil {
		return 0, fmt.Errorf("list expiring insurance: %w", err)
	}

	created := 0
	for _, v := range vehicles {
		vehicleID := v.ID
		msg := fmt.Sprintf("Insurance of %s %s (%s) expires on %s",
			v.Make, v.Model, v.LicensePlate, v.InsuranceExpiresAt.Format("2006-01-02"))
		if v.InsuranceExpiresAt.Before(now) {
			msg = fmt.Sprintf("Insurance of %s %s (%s) expired on %s",
				v.Make, v.Model, v.LicensePlate, v.InsuranceExpiresAt.Format("2006-01-02"))
		}
		n := model.Notification{
			Message:   msg,
			Category:  model.NotificationCategoryInsuranceAlert,
			Alert:     true,
			VehicleID: &vehicleID,
		}
		if err := r.repos.Notifications.Create(ctx, &n); err != nil {
			r.log.Warn().Err(err).Str("vehicle_id", v.ID.String()).Msg("failed to create insurance alert")
			continue
		}
		created++
	}
	return created, nil
}

// CheckOverdueRentals flags active rentals whose end date has passed.
func (r *AlertRunner) CheckOverdueRentals(ctx context.Context) (int, error) {
	now := r.now().UTC()
	locations, err := r.repos.Locations.ListOverdue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list overdue rentals: %w", err)
	}

	created := 0
	for _, l := range locations {
		locationID, vehicleID := l.ID, l.VehicleID
		late := int(now.Sub(l.EndDate).Hours() / 24)
		n := model.Notification{
			Message: fmt.Sprintf("Rental %s is overdue since %s (%d days late)",
				l.ID, l.EndDate.Format("2006-01-02"), late),
			Category:   model.NotificationCategoryOverdueAlert,
			Alert:      true,
			LocationID: &locationID,
			VehicleID:  &vehicleID,
		}
		if err := r.repos.Notifications.Create(ctx, &n); err != nil {
			r.log.Warn().Err(err).Str("location_id", l.ID.String()).Msg("failed to create overdue alert")
			continue
		}
		created++
	}
	return created, nil
}

// run adapts a check to a cron callback.
func (r *AlertRunner) run(name string, check func(context.Context) (int, error)) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		started := time.Now()
		created, err := check(ctx)
		if err != nil {
			r.log.Error().Err(err).Str("job", name).Msg("alert job failed")
			return
		}
		r.log.Info().
			Str("job", name).
			Int("alerts", created).
			Dur("took", time.Since(started)).
			Msg("alert job finished")
	}
}
