package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	var saved model.Notification
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO notifications (message, category, alert, seen, location_id, vehicle_id)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, message, category, alert, seen, location_id, vehicle_id, created_at
	`, n.Message, n.Category, n.Alert, n.Seen, n.LocationID, n.VehicleID).Scan(&saved).Error
	if err != nil {
		return translateError(err)
	}
	*n = saved
	return nil
}

func (r *NotificationRepository) List(ctx context.Context, unseenOnly bool, limit int) ([]model.Notification, error) {
	query := `
		SELECT id, message, category, alert, seen, location_id, vehicle_id, created_at
		FROM notifications
	`
	if unseenOnly {
		query += " WHERE seen = FALSE"
	}
	query += " ORDER BY created_at DESC LIMIT ?"

	var rows []model.Notification
	if err := r.db.WithContext(ctx).Raw(query, limit).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

func (r *NotificationRepository) MarkSeen(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`UPDATE notifications SET seen = TRUE WHERE id = ?`, id)
	return expectRows(result, repository.ErrNotFound)
}

func (r *NotificationRepository) MarkAllSeen(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`UPDATE notifications SET seen = TRUE WHERE seen = FALSE`)
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM notifications WHERE id = ?`, id)
	return expectRows(result, repository.ErrNotFound)
}
