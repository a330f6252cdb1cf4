package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const locationColumns = `
	id,
	vehicle_id,
	client_id,
	start_date,
	end_date,
	effective_start_date,
	effective_end_date,
	duration_days,
	daily_price,
	discount_rate,
	price_ttc,
	guarantee,
	status,
	initial_odometer,
	final_odometer,
	distance_traveled,
	maintenance_alert_id,
	created_at,
	updated_at
`

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func (r *LocationRepository) Create(ctx context.Context, l *model.Location) error {
	var saved model.Location
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO locations (
			vehicle_id,
			client_id,
			start_date,
			end_date,
			effective_start_date,
			duration_days,
			daily_price,
			discount_rate,
			price_ttc,
			guarantee,
			status,
			initial_odometer
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING`+locationColumns,
		l.VehicleID,
		l.ClientID,
		l.StartDate,
		l.EndDate,
		l.EffectiveStartDate,
		l.DurationDays,
		l.DailyPrice,
		l.DiscountRate,
		l.PriceTTC,
		l.Guarantee,
		l.Status,
		l.InitialOdometer,
	).Scan(&saved).Error
	if err != nil {
		return translateError(err)
	}
	*l = saved
	return nil
}

func (r *LocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Location, error) {
	var l model.Location
	if err := r.db.WithContext(ctx).Raw(`
		SELECT`+locationColumns+`
		FROM locations
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&l).Error; err != nil {
		return nil, translateError(err)
	}
	if l.ID == uuid.Nil {
		return nil, repository.ErrNotFound
	}
	return &l, nil
}

func (r *LocationRepository) List(ctx context.Context, filter repository.LocationFilter) ([]model.Location, error) {
	query := `SELECT` + locationColumns + `FROM locations WHERE 1 = 1`
	var args []interface{}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, *filter.Status)
	}
	if filter.VehicleID != nil {
		query += " AND vehicle_id = ?"
		args = append(args, *filter.VehicleID)
	}
	if filter.ClientID != nil {
		query += " AND client_id = ?"
		args = append(args, *filter.ClientID)
	}
	if filter.StartsBefore != nil {
		query += " AND start_date < ?"
		args = append(args, *filter.StartsBefore)
	}
	if filter.EndsAfter != nil {
		query += " AND end_date > ?"
		args = append(args, *filter.EndsAfter)
	}
	query += " ORDER BY start_date DESC"

	var rows []model.Location
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

func (r *LocationRepository) Complete(ctx context.Context, id uuid.UUID, completion model.LocationCompletion) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE locations
		SET
			status = ?,
			final_odometer = ?,
			distance_traveled = ?,
			effective_end_date = ?,
			maintenance_alert_id = ?,
			updated_at = NOW()
		WHERE id = ? AND status = ?
	`,
		model.LocationStatusCompleted,
		completion.FinalOdometer,
		completion.DistanceTraveled,
		completion.EffectiveEndDate,
		completion.MaintenanceAlertID,
		id,
		model.LocationStatusActive,
	)
	return expectRows(result, repository.ErrConflict)
}

func (r *LocationRepository) ListOverdue(ctx context.Context, now time.Time) ([]model.Location, error) {
	var rows []model.Location
	if err := r.db.WithContext(ctx).Raw(`
		SELECT`+locationColumns+`
		FROM locations
		WHERE status = ?
			AND end_date < ?
		ORDER BY end_date ASC
	`, model.LocationStatusActive, now).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}
