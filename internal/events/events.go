package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Routing keys.
const (
	KeyRentalCreated        = "rental.created"
	KeyRentalCompleted      = "rental.completed"
	KeyMaintenanceScheduled = "maintenance.scheduled"
)

// Publisher delivers domain events to whatever broker the deployment runs.
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
	Close() error
}

type RentalCreated struct {
	LocationID   uuid.UUID `json:"locationId"`
	VehicleID    uuid.UUID `json:"vehiculeId"`
	ClientID     uuid.UUID `json:"clientId"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	PriceTTC     float64   `json:"priceTTC"`
	DiscountRate float64   `json:"discountRate"`
	OccurredAt   time.Time `json:"occurredAt"`
}

type RentalCompleted struct {
	LocationID       uuid.UUID `json:"locationId"`
	VehicleID        uuid.UUID `json:"vehiculeId"`
	DistanceTraveled int64     `json:"distanceParcourue"`
	ServiceDue       bool      `json:"vidangeNecessaire"`
	OccurredAt       time.Time `json:"occurredAt"`
}

type MaintenanceScheduled struct {
	MaintenanceID uuid.UUID `json:"maintenanceId"`
	VehicleID     uuid.UUID `json:"vehiculeId"`
	Type          string    `json:"type"`
	ScheduledAt   time.Time `json:"scheduledAt"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Noop drops every event. Used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() error                               { return nil }

type Published struct {
	Key   string
	Value any
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (r *Recorder) Publish(_ context.Context, key string, v any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.events = append(r.events, Published{Key: key, Value: v})
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.events))
	copy(out, r.events)
	return out
}
