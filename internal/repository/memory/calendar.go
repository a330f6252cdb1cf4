package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
)

type CalendarRepository struct {
	handle
}

func (r *CalendarRepository) Create(ctx context.Context, e *model.CalendarEvent) error {
	return r.write(ctx, func(t *tables) error {
		e.ID = uuid.New()
		e.CreatedAt = r.now()
		t.calendar[e.ID] = *e
		return nil
	})
}

func (r *CalendarRepository) List(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	var rows []model.CalendarEvent
	err := r.read(ctx, func(t *tables) error {
		for _, e := range t.calendar {
			if e.StartAt.Before(to) && e.EndAt.After(from) {
				rows = append(rows, e)
			}
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].StartAt.Before(rows[j].StartAt) })
	return rows, err
}

func (r *CalendarRepository) DeleteByLocation(ctx context.Context, locationID uuid.UUID) error {
	return r.deleteWhere(ctx, func(e model.CalendarEvent) bool {
		return e.LocationID != nil && *e.LocationID == locationID
	})
}

func (r *CalendarRepository) DeleteByMaintenance(ctx context.Context, maintenanceID uuid.UUID) error {
	return r.deleteWhere(ctx, func(e model.CalendarEvent) bool {
		return e.MaintenanceID != nil && *e.MaintenanceID == maintenanceID
	})
}

func (r *CalendarRepository) deleteWhere(ctx context.Context, match func(model.CalendarEvent) bool) error {
	return r.write(ctx, func(t *tables) error {
		for id, e := range t.calendar {
			if match(e) {
				delete(t.calendar, id)
			}
		}
		return nil
	})
}
