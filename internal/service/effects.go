package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/nurpe/fleet-rental/internal/events"
	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

// sideEffects emits notifications and events once the owning write has
// committed. Failures are logged and never fail the caller.
type sideEffects struct {
	notifications repository.NotificationRepository
	publisher     events.Publisher
	log           zerolog.Logger
}

func newSideEffects(notifications repository.NotificationRepository, publisher events.Publisher, log zerolog.Logger) sideEffects {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return sideEffects{notifications: notifications, publisher: publisher, log: log}
}

func (e sideEffects) notify(ctx context.Context, n model.Notification) {
	if err := e.notifications.Create(ctx, &n); err != nil {
		e.log.Warn().Err(err).Str("category", string(n.Category)).Msg("failed to create notification")
	}
}

func (e sideEffects) publish(ctx context.Context, key string, v any) {
	if err := e.publisher.Publish(ctx, key, v); err != nil {
		e.log.Warn().Err(err).Str("event", key).Msg("failed to publish event")
	}
}
