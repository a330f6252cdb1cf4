package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type UserRepository struct {
	handle
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var out model.User
	err := r.read(ctx, func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	var rows []model.User
	err := r.read(ctx, func(t *tables) error {
		for _, u := range t.users {
			rows = append(rows, u)
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].Email < rows[j].Email })
	return rows, err
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role model.Role) error {
	return r.write(ctx, func(t *tables) error {
		u, ok := t.users[id]
		if !ok {
			return repository.ErrNotFound
		}
		u.Role = role
		t.users[id] = u
		return nil
	})
}

func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.users[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.users, id)
		return nil
	})
}
