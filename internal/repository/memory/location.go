package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type LocationRepository struct {
	handle
}

func (r *LocationRepository) Create(ctx context.Context, l *model.Location) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.vehicles[l.VehicleID]; !ok {
			return repository.ErrNotFound
		}
		if _, ok := t.clients[l.ClientID]; !ok {
			return repository.ErrNotFound
		}
		now := r.now()
		l.ID = uuid.New()
		l.CreatedAt = now
		l.UpdatedAt = now
		t.locations[l.ID] = *l
		return nil
	})
}

func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var out model.Location
	err := r.read(ctx, func(t *tables) error {
		l, ok := t.locations[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *LocationRepository) List(ctx context.Context, filter repository.LocationFilter) ([]model.Location, error) {
	var rows []model.Location
	err := r.read(ctx, func(t *tables) error {
		for _, l := range t.locations {
			if filter.Status != nil && l.Status != *filter.Status {
				continue
			}
			if filter.VehicleID != nil && l.VehicleID != *filter.VehicleID {
				continue
			}
			if filter.ClientID != nil && l.ClientID != *filter.ClientID {
				continue
			}
			if filter.StartsBefore != nil && !l.StartDate.Before(*filter.StartsBefore) {
				continue
			}
			if filter.EndsAfter != nil && !l.EndDate.After(*filter.EndsAfter) {
				continue
			}
			rows = append(rows, l)
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartDate.After(rows[j].StartDate) })
	return rows, err
}

func (r *LocationRepository) Complete(ctx context.Context, id uuid.UUID, completion model.LocationCompletion) error {
	return r.write(ctx, func(t *tables) error {
		l, ok := t.locations[id]
		if !ok || l.Status != model.LocationStatusActive {
			return repository.ErrConflict
		}
		final := completion.FinalOdometer
		distance := completion.DistanceTraveled
		end := completion.EffectiveEndDate
		l.Status = model.LocationStatusCompleted
		l.FinalOdometer = &final
		l.DistanceTraveled = &distance
		l.EffectiveEndDate = &end
		l.MaintenanceAlertID = completion.MaintenanceAlertID
		l.UpdatedAt = r.now()
		t.locations[id] = l
		return nil
	})
}

func (r *LocationRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.Location, error) {
	var rows []model.Location
	err := r.read(ctx, func(t *tables) error {
		for _, l := range t.locations {
			if l.Status == model.LocationStatusActive && l.EndDate.Before(now) {
				rows = append(rows, l)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].EndDate.Before(rows[j].EndDate) })
	return rows, err
}
