package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category is a user-defined grouping for transactions. A user cannot own two
// categories with the same (name, type) pair.
type Category struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Icon      string    `json:"icon,omitempty"`
	Color     string    `json:"color,omitempty"`
	IsDefault bool      `json:"isDefault"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CategoryInput is the DTO for category create and update requests.
type CategoryInput struct {
	Name      *string `json:"name"`
	Type      *string `json:"type"`
	Icon      *string `json:"icon"`
	Color     *string `json:"color"`
	IsDefault *bool   `json:"isDefault"`
}
