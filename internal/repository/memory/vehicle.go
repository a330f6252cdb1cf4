package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type VehicleRepository struct {
	handle
}

func (r *VehicleRepository) Create(ctx context.Context, v *model.Vehicle) error {
	return r.write(ctx, func(t *tables) error {
		if err := plateTaken(t, v.LicensePlate, uuid.Nil); err != nil {
			return err
		}
		now := r.now()
		v.ID = uuid.New()
		v.CreatedAt = now
		v.UpdatedAt = now
		t.vehicles[v.ID] = *v
		return nil
	})
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var out model.Vehicle
	err := r.read(ctx, func(t *tables) error {
		v, ok := t.vehicles[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *VehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	var rows []model.Vehicle
	err := r.read(ctx, func(t *tables) error {
		for _, v := range t.vehicles {
			if filter.Status != nil && v.Status != *filter.Status {
				continue
			}
			if filter.Search != "" && !containsFold(v.Make, filter.Search) &&
				!containsFold(v.Model, filter.Search) && !containsFold(v.LicensePlate, filter.Search) {
				continue
			}
			rows = append(rows, v)
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Make != rows[j].Make {
			return rows[i].Make < rows[j].Make
		}
		if rows[i].Model != rows[j].Model {
			return rows[i].Model < rows[j].Model
		}
		return rows[i].LicensePlate < rows[j].LicensePlate
	})
	return rows, err
}

func (r *VehicleRepository) Update(ctx context.Context, v *model.Vehicle, expected repository.VehicleState) error {
	return r.write(ctx, func(t *tables) error {
		existing, ok := t.vehicles[v.ID]
		if !ok || existing.Status != expected.Status || existing.Odometer != expected.Odometer {
			return repository.ErrConflict
		}
		if err := plateTaken(t, v.LicensePlate, v.ID); err != nil {
			return err
		}
		v.CreatedAt = existing.CreatedAt
		v.UpdatedAt = r.now()
		t.vehicles[v.ID] = *v
		return nil
	})
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.vehicles[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.vehicles, id)
		return nil
	})
}

func (r *VehicleRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.VehicleStatus) error {
	return r.write(ctx, func(t *tables) error {
		v, ok := t.vehicles[id]
		if !ok || v.Status != from {
			return repository.ErrConflict
		}
		v.Status = to
		v.UpdatedAt = r.now()
		t.vehicles[id] = v
		return nil
	})
}

func (r *VehicleRepository) RecordReturn(ctx context.Context, id uuid.UUID, odometer int64, oilChanged bool) error {
	return r.write(ctx, func(t *tables) error {
		v, ok := t.vehicles[id]
		if !ok {
			return repository.ErrNotFound
		}
		v.Status = model.VehicleStatusAvailable
		if odometer > v.Odometer {
			v.Odometer = odometer
		}
		if oilChanged {
			v.LastOilChangeKm = odometer
		}
		v.UpdatedAt = r.now()
		t.vehicles[id] = v
		return nil
	})
}

func (r *VehicleRepository) RecordService(ctx context.Context, id uuid.UUID, odometer int64, oilChanged bool) error {
	return r.write(ctx, func(t *tables) error {
		v, ok := t.vehicles[id]
		if !ok {
			return repository.ErrNotFound
		}
		if odometer > v.Odometer {
			v.Odometer = odometer
		}
		if oilChanged {
			v.LastOilChangeKm = odometer
		}
		v.UpdatedAt = r.now()
		t.vehicles[id] = v
		return nil
	})
}

func (r *VehicleRepository) ListInsuranceExpiring(ctx context.Context, before time.Time) ([]model.Vehicle, error) {
	var rows []model.Vehicle
	err := r.read(ctx, func(t *tables) error {
		for _, v := range t.vehicles {
			if v.InsuranceExpiresAt.Before(before) && v.Status != model.VehicleStatusWrecked {
				rows = append(rows, v)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].InsuranceExpiresAt.Before(rows[j].InsuranceExpiresAt)
	})
	return rows, err
}

func plateTaken(t *tables, plate string, self uuid.UUID) error {
	for id, v := range t.vehicles {
		if id != self && v.LicensePlate == plate {
			return &repository.DuplicateError{Field: "licensePlate"}
		}
	}
	return nil
}
