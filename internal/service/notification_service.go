package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repos repository.Repositories) *NotificationService {
	return &NotificationService{repo: repos.Notifications}
}

func (s *NotificationService) List(ctx context.Context, unseenOnly bool, limit int) ([]model.Notification, error) {
	switch {
	case limit <= 0:
		limit = defaultNotificationLimit
	case limit > maxNotificationLimit:
		limit = maxNotificationLimit
	}
	return s.repo.List(ctx, unseenOnly, limit)
}

func (s *NotificationService) MarkSeen(ctx context.Context, id uuid.UUID) error {
	return storeError(s.repo.MarkSeen(ctx, id), "notification")
}

func (s *NotificationService) MarkAllSeen(ctx context.Context) (int64, error) {
	return s.repo.MarkAllSeen(ctx)
}

func (s *NotificationService) Delete(ctx context.Context, id uuid.UUID) error {
	return storeError(s.repo.Delete(ctx, id), "notification")
}
