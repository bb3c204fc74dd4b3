package domain

import "time"

// Timestamps holds the standard created/updated pair stored on mutable rows.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
