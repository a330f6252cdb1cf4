package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

type NotificationRepository struct {
	handle
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.write(ctx, func(t *tables) error {
		n.ID = uuid.New()
		n.CreatedAt = r.now()
		t.notifications[n.ID] = *n
		return nil
	})
}

func (r *NotificationRepository) List(ctx context.Context, unseenOnly bool, limit int) ([]model.Notification, error) {
	var rows []model.Notification
	err := r.read(ctx, func(t *tables) error {
		for _, n := range t.notifications {
			if unseenOnly && n.Seen {
				continue
			}
			rows = append(rows, n)
		}
		return nil
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.After(rows[j].CreatedAt) })
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, err
}

func (r *NotificationRepository) MarkSeen(ctx context.Context, id uuid.UUID) error {
	return r.write(ctx, func(t *tables) error {
		n, ok := t.notifications[id]
		if !ok {
			return repository.ErrNotFound
		}
		n.Seen = true
		t.notifications[id] = n
		return nil
	})
}

func (r *NotificationRepository) MarkAllSeen(ctx context.Context) (int64, error) {
	var count int64
	err := r.write(ctx, func(t *tables) error {
		for id, n := range t.notifications {
			if !n.Seen {
				n.Seen = true
				t.notifications[id] = n
				count++
			}
		}
		return nil
	})
	return count, err
}

func (r *NotificationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.write(ctx, func(t *tables) error {
		if _, ok := t.notifications[id]; !ok {
			return repository.ErrNotFound
		}
		delete(t.notifications, id)
		return nil
	})
}
