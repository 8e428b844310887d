package models

import (
	"encoding/json"
	"time"

	"reachmesh-bknd/internal/geo"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type BusinessType struct {
	bun.BaseModel `bun:"table:business_types,alias:bt"`

	ID   uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Name string    `bun:"name,notnull" json:"name"`
	Icon *string   `bun:"icon" json:"icon"`
}

type ProfessionType struct {
	bun.BaseModel `bun:"table:profession_types,alias:pt"`

	ID   uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Name string    `bun:"name,notnull" json:"name"`
	Icon *string   `bun:"icon" json:"icon"`
}

// Business is a listed local business.
type Business struct {
	bun.BaseModel `bun:"table:businesses,alias:b"`

	ID           uuid.UUID       `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	UserID       uuid.UUID       `bun:"user_id,type:uuid" json:"user_id"`
	TypeID       *uuid.UUID      `bun:"type_id,type:uuid" json:"type_id"`
	Name         string          `bun:"name,notnull" json:"name"`
	Description  *string         `bun:"description" json:"description"`
	Image        *string         `bun:"image" json:"image"`
	Rating       *float64        `bun:"rating" json:"rating"`
	Reviews      int             `bun:"reviews,notnull,default:0" json:"reviews"`
	IsOpen       bool            `bun:"is_open,notnull,default:true" json:"is_open"`
	ContactInfo  json.RawMessage `bun:"contact_info,type:jsonb,nullzero" json:"contact_info,omitempty"`
	WorkingHours json.RawMessage `bun:"working_hours,type:jsonb,nullzero" json:"working_hours,omitempty"`
	Latitude     *float64        `bun:"latitude" json:"latitude"`
	Longitude    *float64        `bun:"longitude" json:"longitude"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Type *BusinessType `bun:"rel:belongs-to,join:type_id=id" json:"type,omitempty"`
}

func (b *Business) Location() *geo.Point { return geo.PointFrom(b.Latitude, b.Longitude) }

// Professional is a listed individual offering a service.
type Professional struct {
	bun.BaseModel `bun:"table:professionals,alias:p"`

	ID           uuid.UUID       `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	UserID       uuid.UUID       `bun:"user_id,type:uuid" json:"user_id"`
	TypeID       *uuid.UUID      `bun:"type_id,type:uuid" json:"type_id"`
	Name         string          `bun:"name,notnull" json:"name"`
	Title        string          `bun:"title,notnull" json:"title"`
	Bio          *string         `bun:"bio" json:"bio"`
	Image        *string         `bun:"image" json:"image"`
	Rating       *float64        `bun:"rating" json:"rating"`
	Reviews      int             `bun:"reviews,notnull,default:0" json:"reviews"`
	Likes        int             `bun:"likes,notnull,default:0" json:"likes"`
	Online       bool            `bun:"online,notnull,default:false" json:"online"`
	Verified     bool            `bun:"verified,notnull,default:false" json:"verified"`
	WorkingHours json.RawMessage `bun:"working_hours,type:jsonb,nullzero" json:"working_hours,omitempty"`
	Latitude     *float64        `bun:"latitude" json:"latitude"`
	Longitude    *float64        `bun:"longitude" json:"longitude"`
	CreatedAt    time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt    time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Type *ProfessionType `bun:"rel:belongs-to,join:type_id=id" json:"type,omitempty"`
}

func (p *Professional) Location() *geo.Point { return geo.PointFrom(p.Latitude, p.Longitude) }

// BusinessListing is a business as seen by one viewer.
type BusinessListing struct {
	*Business
	DistanceKM *float64 `json:"distance"`
}

func (l BusinessListing) Distance() *float64 { return l.DistanceKM }

// ProfessionalListing is a professional as seen by one viewer.
type ProfessionalListing struct {
	*Professional
	DistanceKM *float64 `json:"distance"`
}

func (l ProfessionalListing) Distance() *float64 { return l.DistanceKM }

// ListingQueryParams filters businesses and professionals.
type ListingQueryParams struct {
	Query   string // name/title substring
	TypeIDs []uuid.UUID
	UserID  *uuid.UUID // owner
	Limit   int
	Offset  int
}

// ListingRequest adds the viewer-relative parts of a listing query.
type ListingRequest struct {
	ListingQueryParams
	Mode   geo.Mode   // empty means no distance filtering
	Viewer *geo.Point // nil when the viewer location is unknown
}

type BusinessRequest struct {
	TypeID       *uuid.UUID      `json:"type_id"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Image        *string         `json:"image"`
	IsOpen       *bool           `json:"is_open"`
	ContactInfo  json.RawMessage `json:"contact_info"`
	WorkingHours json.RawMessage `json:"working_hours"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
}

type ProfessionalRequest struct {
	TypeID       *uuid.UUID      `json:"type_id"`
	Name         string          `json:"name"`
	Title        string          `json:"title"`
	Bio          *string         `json:"bio"`
	Image        *string         `json:"image"`
	Online       *bool           `json:"online"`
	WorkingHours json.RawMessage `json:"working_hours"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
}
