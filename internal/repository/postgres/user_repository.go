package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, email, name, role, created_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&u).Error; err != nil {
		return nil, translateError(err)
	}
	if u.ID == uuid.Nil {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var rows []model.User
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, email, name, role, created_at
		FROM users
		ORDER BY email ASC
	`).Scan(&rows).Error; err != nil {
		return nil, translateError(err)
	}
	return rows, nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	result := r.db.WithContext(ctx).Exec(`UPDATE users SET role = ? WHERE id = ?`, role, id)
	return expectRows(result, repository.ErrNotFound)
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM users WHERE id = ?`, id)
	return expectRows(result, repository.ErrNotFound)
}
