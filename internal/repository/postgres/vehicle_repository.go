package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const vehicleColumns = `
	id,
	make,
	model,
	license_plate,
	year,
	odometer,
	last_oil_change_km,
	status,
	fuel_type,
	insurance_expires_at,
	daily_price,
	fault_reason,
	repair_date,
	created_at,
	updated_at
`

type VehicleRepository struct {
	db *gorm.DB
}

func NewVehicleRepository(db *gorm.DB) *VehicleRepository {
	return &VehicleRepository{db: db}
}

func (r *VehicleRepository) Create(ctx context.Context, v *model.Vehicle) error {
	var saved model.Vehicle
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO vehicles (
			make,
			model,
			license_plate,
			year,
			odometer,
			last_oil_change_km,
			status,
			fuel_type,
			insurance_expires_at,
			daily_price,
			fault_reason,
			repair_date
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING`+vehicleColumns,
		v.Make,
		v.Model,
		v.LicensePlate,
		v.Year,
		v.Odometer,
		v.LastOilChangeKm,
		v.Status,
		v.FuelType,
		v.InsuranceExpiresAt,
		v.DailyPrice,
		v.FaultReason,
		v.RepairDate,
	).Scan(&saved).Error
	if err != nil {
		return translateError(err)
	}
	*v = saved
	return nil
}

func (r *VehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := r.db.WithContext(ctx).Raw(`
		SELECT`+vehicleColumns+`
		FROM vehicles
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&v).Error; err != nil {
		return nil, translateError(err)
	}
	if v.ID == uuid.Nil {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *VehicleRepository) List(ctx context.Context, filter repository.VehicleFilter) ([]model.Vehicle, error) {
	query := `SELECT` + vehicleColumns + `FROM vehicles WHERE 1 = 1`
	var args []interface{}
	if filter.Status != nil {
		query += " AND status = ?"
		args = append(args, *filter.Status)
	}
	if filter.Search != "" {
		query += " AND (make ILIKE ? OR model ILIKE ? OR license_plate ILIKE ?)"
		pattern := likePattern(filter.Search)
		args = append(args, pattern, pattern, pattern)
	}
	query += " ORDER BY make ASC, model ASC, license_plate ASC"

	var rows []model.Vehicle
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

func (r *VehicleRepository) Update(ctx context.Context, v *model.Vehicle, expected repository.VehicleState) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE vehicles
		SET
			make = ?,
			model = ?,
			license_plate = ?,
			year = ?,
			odometer = ?,
			last_oil_change_km = ?,
			status = ?,
			fuel_type = ?,
			insurance_expires_at = ?,
			daily_price = ?,
			fault_reason = ?,
			repair_date = ?,
			updated_at = NOW()
		WHERE id = ? AND status = ? AND odometer = ?
	`,
		v.Make,
		v.Model,
		v.LicensePlate,
		v.Year,
		v.Odometer,
		v.LastOilChangeKm,
		v.Status,
		v.FuelType,
		v.InsuranceExpiresAt,
		v.DailyPrice,
		v.FaultReason,
		v.RepairDate,
		v.ID,
		expected.Status,
		expected.Odometer,
	)
	return expectRows(result, repository.ErrConflict)
}

func (r *VehicleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM vehicles WHERE id = ?`, id)
	return expectRows(result, repository.ErrNotFound)
}

func (r *VehicleRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.VehicleStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE vehicles
		SET status = ?, updated_at = NOW()
		WHERE id = ? AND status = ?
	`, to, id, from)
	return expectRows(result, repository.ErrConflict)
}

func (r *VehicleRepository) RecordReturn(ctx context.Context, id uuid.UUID, odometer int64, oilChanged bool) error {
	query := `
		UPDATE vehicles
		SET status = ?, odometer = GREATEST(odometer, ?), updated_at = NOW()
		WHERE id = ?
	`
	args := []interface{}{model.VehicleStatusAvailable, odometer, id}
	if oilChanged {
		query = `
			UPDATE vehicles
			SET status = ?, odometer = GREATEST(odometer, ?), last_oil_change_km = ?, updated_at = NOW()
			WHERE id = ?
		`
		args = []interface{}{model.VehicleStatusAvailable, odometer, odometer, id}
	}
	result := r.db.WithContext(ctx).Exec(query, args...)
	return expectRows(result, repository.ErrNotFound)
}

func (r *VehicleRepository) RecordService(ctx context.Context, id uuid.UUID, odometer int64, oilChanged bool) error {
	query := `
		UPDATE vehicles
		SET odometer = GREATEST(odometer, ?), updated_at = NOW()
		WHERE id = ?
	`
	args := []interface{}{odometer, id}
	if oilChanged {
		query = `
			UPDATE vehicles
			SET odometer = GREATEST(odometer, ?), last_oil_change_km = ?, updated_at = NOW()
			WHERE id = ?
		`
		args = []interface{}{odometer, odometer, id}
	}
	result := r.db.WithContext(ctx).Exec(query, args...)
	return expectRows(result, repository.ErrNotFound)
}

func (r *VehicleRepository) ListInsuranceExpiring(ctx context.Context, before time.Time) ([]model.Vehicle, error) {
	var rows []model.Vehicle
	if err := r.db.WithContext(ctx).Raw(`
		SELECT`+vehicleColumns+`
		FROM vehicles
		WHERE insurance_expires_at < ?
			AND status <> ?
		ORDER BY insurance_expires_at ASC
	`, before, model.VehicleStatusWrecked).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}
