package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile is the public face of a user. Its ID equals the user ID.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:pr"`

	ID        uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	FirstName *string   `bun:"first_name" json:"first_name"`
	LastName  *string   `bun:"last_name" json:"last_name"`
	Email     *string   `bun:"email" json:"email"`
	Phone     *string   `bun:"phone" json:"phone"`
	Bio       *string   `bun:"bio" json:"bio"`
	AvatarURL *string   `bun:"avatar_url" json:"avatar_url"`
	Latitude  *float64  `bun:"latitude" json:"latitude"`
	Longitude *float64  `bun:"longitude" json:"longitude"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// UpdateProfileRequest carries only the fields the client wants to change.
type UpdateProfileRequest struct {
	FirstName *string  `json:"first_name"`
	LastName  *string  `json:"last_name"`
	Phone     *string  `json:"phone"`
	Bio       *string  `json:"bio"`
	AvatarURL *string  `json:"avatar_url"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// ClearLocation removes the stored coordinates.
	ClearLocation bool `json:"clear_location"`
}
