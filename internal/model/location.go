package model

import (
	"time"

	"github.com/google/uuid"
)

type LocationStatus string

const (
	LocationStatusActive    LocationStatus = "active"
	LocationStatusCompleted LocationStatus = "completed"
)

// Location is a rental contract binding one vehicle to one client.
type Location struct {
	ID                 uuid.UUID      `json:"id"`
	VehicleID          uuid.UUID      `json:"vehiculeId"`
	ClientID           uuid.UUID      `json:"clientId"`
	StartDate          time.Time      `json:"startDate"`
	EndDate            time.Time      `json:"endDate"`
	EffectiveStartDate time.Time      `json:"effectiveStartDate"`
	EffectiveEndDate   *time.Time     `json:"effectiveEndDate,omitempty"`
	DurationDays       int            `json:"durationDays"`
	DailyPrice         float64        `json:"dailyPrice"`
	DiscountRate       float64        `json:"discountRate"`
	PriceTTC           float64        `json:"priceTTC"`
	Guarantee          float64        `json:"guarantee"`
	Status             LocationStatus `json:"status"`
	InitialOdometer    int64          `json:"kilometrageDebut"`
	FinalOdometer      *int64         `json:"kilometrageFinal,omitempty"`
	DistanceTraveled   *int64         `json:"distanceParcourue,omitempty"`
	MaintenanceAlertID *uuid.UUID     `json:"maintenanceAlertId,omitempty"`
	CreatedAt          time.Time      `json:"createdAt"`
	UpdatedAt          time.Time      `json:"updatedAt"`
}

type LocationCompletion struct {
	FinalOdometer      int64
	DistanceTraveled   int64
	EffectiveEndDate   time.Time
	MaintenanceAlertID *uuid.UUID
}
