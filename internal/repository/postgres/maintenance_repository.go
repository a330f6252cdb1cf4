package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const maintenanceColumns = `
	id,
	vehicle_id,
	type,
	scheduled_at,
	completed_at,
	cost,
	odometer,
	notes,
	created_at
`

type MaintenanceRepository struct {
	db *gorm.DB
}

func NewMaintenanceRepository(db *gorm.DB) *MaintenanceRepository {
	return &MaintenanceRepository{db: db}
}

func (r *MaintenanceRepository) Create(ctx context.Context, m *model.MaintenanceRecord) error {
	var saved model.MaintenanceRecord
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO maintenance_records (
			vehicle_id,
			type,
			scheduled_at,
			completed_at,
			cost,
			odometer,
			notes
		) VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING`+maintenanceColumns,
		m.VehicleID,
		m.Type,
		m.ScheduledAt,
		m.CompletedAt,
		m.Cost,
		m.Odometer,
		m.Notes,
	).Scan(&saved).Error
	if err != nil {
		return translateError(err)
	}
	*m = saved
	return nil
}

func (r *MaintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.MaintenanceRecord, error) {
	var m model.MaintenanceRecord
	if err := r.db.WithContext(ctx).Raw(`
		SELECT`+maintenanceColumns+`
		FROM maintenance_records
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&m).Error; err != nil {
		return nil, translateError(err)
	}
	if m.ID == uuid.Nil {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (r *MaintenanceRepository) List(ctx context.Context, vehicleID *uuid.UUID) ([]model.MaintenanceRecord, error) {
	query := `SELECT` + maintenanceColumns + `FROM maintenance_records`
	var args []interface{}
	if vehicleID != nil {
		query += " WHERE vehicle_id = ?"
		args = append(args, *vehicleID)
	}
	query += " ORDER BY scheduled_at DESC"

	var rows []model.MaintenanceRecord
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

func (r *MaintenanceRepository) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time, odometer *int64, cost float64) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE maintenance_records
		SET completed_at = ?, odometer = ?, cost = ?
		WHERE id = ? AND completed_at IS NULL
	`, completedAt, odometer, cost, id)
	return expectRows(result, repository.ErrConflict)
}

func (r *MaintenanceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM maintenance_records WHERE id = ?`, id)
	return expectRows(result, repository.ErrNotFound)
}
