package model

import (
	"time"

	"github.com/google/uuid"
)

type EventCategory string

const (
	EventCategoryRental      EventCategory = "rental"
	EventCategoryMaintenance EventCategory = "maintenance"
)

type CalendarEvent struct {
	ID            uuid.UUID     `json:"id"`
	Title         string        `json:"title"`
	StartAt       time.Time     `json:"start"`
	EndAt         time.Time     `json:"end"`
	Category      EventCategory `json:"category"`
	LocationID    *uuid.UUID    `json:"locationId,omitempty"`
	MaintenanceID *uuid.UUID    `json:"maintenanceId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
}
