package models

import "github.com/google/uuid"

// Image is a gallery entry.
type Image struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title" validate:"required"`
	Path          string    `json:"path" validate:"required"`
	TotalExposure float64   `json:"total_exposure" validate:"gte=0"`
}
