package model

import (
	"time"

	"github.com/google/uuid"
)

// ContractDocument references a signed contract file kept in object storage.
type ContractDocument struct {
	ID         uuid.UUID `json:"id"`
	LocationID uuid.UUID `json:"locationId"`
	FileName   string    `json:"fileName"`
	URL        string    `json:"url"`
	StorageKey string    `json:"storageKey"`
	UploadedBy uuid.UUID `json:"uploadedBy"`
	CreatedAt  time.Time `json:"createdAt"`
}
