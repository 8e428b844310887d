package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Message is a direct message. Replies point at the thread root via ParentID.
type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	SenderID    uuid.UUID  `bun:"sender_id,type:uuid,notnull" json:"sender_id"`
	RecipientID uuid.UUID  `bun:"recipient_id,type:uuid,notnull" json:"recipient_id"`
	ParentID    *uuid.UUID `bun:"parent_id,type:uuid" json:"parent_id,omitempty"`
	Body        string     `bun:"body,notnull" json:"body"`
	ReadAt      *time.Time `bun:"read_at" json:"read_at"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Replies []*Message `bun:"rel:has-many,join:id=parent_id" json:"replies,omitempty"`
}

type SendMessageRequest struct {
	RecipientID uuid.UUID  `json:"recipient_id"`
	ParentID    *uuid.UUID `json:"parent_id,omitempty"`
	Body        string     `json:"body"`
}

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	UserID    uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	Kind      string    `bun:"kind,notnull" json:"kind"` // like | save | message | system
	Title     string    `bun:"title,notnull" json:"title"`
	Body      *string   `bun:"body" json:"body"`
	Read      bool      `bun:"read,notnull,default:false" json:"read"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

const (
	NotificationLike    = "like"
	NotificationSave    = "save"
	NotificationMessage = "message"
	NotificationSystem  = "system"
)

type Plan struct {
	bun.BaseModel `bun:"table:plans,alias:plan"`

	ID          uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Description *string   `bun:"description" json:"description"`
	Price       float64   `bun:"price,notnull" json:"price"`
	Interval    string    `bun:"interval,notnull,default:'month'" json:"interval"`
	Features    []string  `bun:"features,array" json:"features"`
	IsActive    bool      `bun:"is_active,notnull,default:true" json:"is_active"`
}
