package model

import (
	"time"

	"github.com/google/uuid"
)

type MaintenanceType string

const (
	MaintenanceTypeOilChange  MaintenanceType = "OIL_CHANGE"
	MaintenanceTypeTires      MaintenanceType = "TIRES"
	MaintenanceTypeBrakes     MaintenanceType = "BRAKES"
	MaintenanceTypeInspection MaintenanceType = "INSPECTION"
	MaintenanceTypeRepair     MaintenanceType = "REPAIR"
	MaintenanceTypeOther      MaintenanceType = "OTHER"
)

type MaintenanceRecord struct {
	ID          uuid.UUID       `json:"id"`
	VehicleID   uuid.UUID       `json:"vehiculeId"`
	Type        MaintenanceType `json:"type"`
	ScheduledAt time.Time       `json:"scheduledAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Cost        float64         `json:"cost"`
	Odometer    *int64          `json:"odometer,omitempty"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (m MaintenanceRecord) Completed() bool {
	return m.CompletedAt != nil
}
