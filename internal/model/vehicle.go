package model

import (
	"time"

	"github.com/google/uuid"
)

type VehicleStatus string

const (
	VehicleStatusAvailable     VehicleStatus = "AVAILABLE"
	VehicleStatusRented        VehicleStatus = "RENTED"
	VehicleStatusInMaintenance VehicleStatus = "IN_MAINTENANCE"
	VehicleStatusBroken        VehicleStatus = "BROKEN"
	VehicleStatusWrecked       VehicleStatus = "WRECKED"
)

func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleStatusAvailable, VehicleStatusRented, VehicleStatusInMaintenance,
		VehicleStatusBroken, VehicleStatusWrecked:
		return true
	}
	return false
}

type FuelType string

const (
	FuelTypeEssence  FuelType = "ESSENCE"
	FuelTypeDiesel   FuelType = "DIESEL"
	FuelTypeHybrid   FuelType = "HYBRID"
	FuelTypeElectric FuelType = "ELECTRIC"
)

type Vehicle struct {
	ID                 uuid.UUID     `json:"id"`
	Make               string        `json:"make"`
	Model              string        `json:"model"`
	LicensePlate       string        `json:"licensePlate"`
	Year               int           `json:"year"`
	Odometer           int64         `json:"odometer"`
	LastOilChangeKm    int64         `json:"lastOilChangeKm"`
	Status             VehicleStatus `json:"status"`
	FuelType           FuelType      `json:"fuelType"`
	InsuranceExpiresAt time.Time     `json:"insuranceExpiresAt"`
	DailyPrice         float64       `json:"dailyPrice"`
	FaultReason        *string       `json:"faultReason,omitempty"`
	RepairDate         *time.Time    `json:"repairDate,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          time.Time     `json:"updatedAt"`
}
