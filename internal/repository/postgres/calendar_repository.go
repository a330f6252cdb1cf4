package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/model"
)

type CalendarRepository struct {
	db *gorm.DB
}

func NewCalendarRepository(db *gorm.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) Create(ctx context.Context, e *model.CalendarEvent) error {
	var saved model.CalendarEvent
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO calendar_events (title, start_at, end_at, category, location_id, maintenance_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, title, start_at, end_at, category, location_id, maintenance_id, created_at
	`, e.Title, e.StartAt, e.EndAt, e.Category, e.LocationID, e.MaintenanceID).Scan(&saved).Error
	if err != nil {
		return translateError(err)
	}
	*e = saved
	return nil
}

// List returns events overlapping [from, to).
func (r *CalendarRepository) List(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	var rows []model.CalendarEvent
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, title, start_at, end_at, category, location_id, maintenance_id, created_at
		FROM calendar_events
		WHERE start_at < ? AND end_at > ?
		ORDER BY start_at ASC
	`, to, from).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

func (r *CalendarRepository) DeleteByLocation(ctx context.Context, locationID uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Exec(`DELETE FROM calendar_events WHERE location_id = ?`, locationID).Error)
}

func (r *CalendarRepository) DeleteByMaintenance(ctx context.Context, maintenanceID uuid.UUID) error {
	return translateError(r.db.WithContext(ctx).Exec(`DELETE FROM calendar_events WHERE maintenance_id = ?`, maintenanceID).Error)
}
