package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/fleet-rental/internal/model"
	"github.com/nurpe/fleet-rental/internal/repository"
)

const maxCalendarSpan = 366 * 24 * time.Hour

type CalendarService struct {
	repo repository.CalendarRepository
}

func NewCalendarService(repos repository.Repositories) *CalendarService {
	return &CalendarService{repo: repos.Calendar}
}

// List returns events overlapping [from, to).
func (s *CalendarService) List(ctx context.Context, from, to time.Time) ([]model.CalendarEvent, error) {
	if !to.After(from) {
		return nil, fmt.Errorf("%w: to must be after from", ErrInvalidDateRange)
	}
	if to.Sub(from) > maxCalendarSpan {
		return nil, fmt.Errorf("%w: range must not exceed one year", ErrInvalidDateRange)
	}
	return s.repo.List(ctx, from.UTC(), to.UTC())
}
