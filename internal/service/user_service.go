package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type UpdateRoleInput struct {
	Role model.Role `json:"role" validate:"required,oneof=user admin"`
}

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repos repository.Repositories) *UserService {
	return &UserService{repo: repos.Users}
}

// Me returns the caller's profile. Accounts not yet mirrored locally are
// described from the token alone.
func (s *UserService) Me(ctx context.Context, principal model.Principal) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, principal.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return &model.User{ID: principal.UserID, Email: principal.Email, Role: principal.Role}, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) UpdateRole(ctx context.Context, principal model.Principal, id uuid.UUID, input UpdateRoleInput) (*model.User, error) {
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if principal.UserID == id {
		return nil, fmt.Errorf("%w: cannot change own role", ErrPermissionDenied)
	}
	if err := s.repo.UpdateRole(ctx, id, input.Role); err != nil {
		return nil, storeError(err, "user")
	}
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "user")
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if principal.UserID == id {
		return fmt.Errorf("%w: cannot delete own account", ErrPermissionDenied)
	}
	return storeError(s.repo.Delete(ctx, id), "user")
}
