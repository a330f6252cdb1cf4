package model

import (
	"time"

	"github.com/google/uuid"
)

type FidelityTier string

const (
	FidelityTierNone       FidelityTier = "NONE"
	FidelityTierDiscount10 FidelityTier = "DISCOUNT_10"
	FidelityTierDiscount20 FidelityTier = "DISCOUNT_20"
	FidelityTierVIP        FidelityTier = "VIP"
)

// Client is keyed naturally by CIN, the national identity number.
type Client struct {
	ID              uuid.UUID    `json:"id"`
	CIN             string       `json:"cin"`
	Name            string       `json:"name"`
	Phone           string       `json:"phone"`
	City            string       `json:"city"`
	RentalCount     int          `json:"rentalCount"`
	FidelityTier    FidelityTier `json:"fidelityTier"`
	Blacklisted     bool         `json:"blacklisted"`
	BlacklistReason *string      `json:"blacklistReason,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}
