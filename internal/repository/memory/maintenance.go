package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type MaintenanceRepository struct {
	handle
}

func (r *MaintenanceRepository) Create(ctx context.Context, m *model.MaintenanceRecord) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.vehicles[m.VehicleID]; !ok {
			return repository.ErrNotFound
		}
		m.ID = uuid.New()
		m.CreatedAt = r.now()
		t.maintenance[m.ID] = *m
		return nil
	})
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error) {
	var out model.MaintenanceRecord
	err := r.read(ctx, func(t *tables) error {
		m, ok := t.maintenance[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *MaintenanceRepository) List(ctx context.Context, vehicleID *uuid.UUID) ([]model.MaintenanceRecord, error) {
	var rows []model.MaintenanceRecord
	err := r.read(ctx, func(t *tables) error {
		for _, m := range t.maintenance {
			if vehicleID == nil || m.VehicleID == *vehicleID {
				rows = append(rows, m)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].ScheduledAt.After(rows[j].ScheduledAt) })
	return rows, err
}

func (r *MaintenanceRepository) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time, odometer *int64, cost float64) error {
	return r.write(ctx, func(t *tables) error {
		m, ok := t.maintenance[id]
		if !ok || m.CompletedAt != nil {
			return repository.ErrConflict
		}
		m.CompletedAt = &completedAt
		m.Odometer = odometer
		m.Cost = cost
		t.maintenance[id] = m
		return nil
	})
}

func (r *MaintenanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.maintenance[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.maintenance, id)
		return nil
	})
}
