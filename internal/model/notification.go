package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationCategory string

const (
	NotificationCategoryRental         NotificationCategory = "RENTAL"
	NotificationCategoryReturn         NotificationCategory = "RETURN"
	NotificationCategoryServiceAlert   NotificationCategory = "SERVICE_ALERT"
	NotificationCategoryInsuranceAlert NotificationCategory = "INSURANCE_ALERT"
	NotificationCategoryOverdueAlert   NotificationCategory = "OVERDUE_ALERT"
	NotificationCategoryFinanceAlert   NotificationCategory = "FINANCE_ALERT"
)

type Notification struct {
	ID         uuid.UUID            `json:"id"`
	Message    string               `json:"message"`
	Category   NotificationCategory `json:"category"`
	Alert      bool                 `json:"alert"`
	Seen       bool                 `json:"seen"`
	LocationID *uuid.UUID           `json:"locationId,omitempty"`
	VehicleID  *uuid.UUID           `json:"vehiculeId,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}
