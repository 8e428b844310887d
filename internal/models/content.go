package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ProductCategory struct {
	bun.BaseModel `bun:"table:product_categories,alias:pc"`

	ID         uuid.UUID `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	BusinessID uuid.UUID `bun:"business_id,type:uuid,notnull" json:"business_id"`
	Name       string    `bun:"name,notnull" json:"name"`
}

type Product struct {
	bun.BaseModel `bun:"table:products,alias:pd"`

	ID          uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	BusinessID  uuid.UUID  `bun:"business_id,type:uuid,notnull" json:"business_id"`
	CategoryID  *uuid.UUID `bun:"category_id,type:uuid" json:"category_id"`
	Name        string     `bun:"name,notnull" json:"name"`
	Description *string    `bun:"description" json:"description"`
	Price       float64    `bun:"price,notnull,default:0" json:"price"`
	Image       *string    `bun:"image" json:"image"`
	CreatedAt   time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type ProductRequest struct {
	CategoryID  *uuid.UUID `json:"category_id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Price       float64    `json:"price"`
	Image       *string    `json:"image"`
}

type Post struct {
	bun.BaseModel `bun:"table:posts,alias:po"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	UserID         uuid.UUID  `bun:"user_id,type:uuid,notnull" json:"user_id"`
	BusinessID     *uuid.UUID `bun:"business_id,type:uuid" json:"business_id"`
	ProfessionalID *uuid.UUID `bun:"professional_id,type:uuid" json:"professional_id"`
	Content        string     `bun:"content,notnull" json:"content"`
	Image          *string    `bun:"image" json:"image"`
	LikesCount     int        `bun:"likes_count,notnull,default:0" json:"likes_count"`
	SavesCount     int        `bun:"saves_count,notnull,default:0" json:"saves_count"`
	Comments       int        `bun:"comments,notnull,default:0" json:"comments"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt      time.Time  `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

type PostLike struct {
	bun.BaseModel `bun:"table:post_likes,alias:pl"`

	PostID    uuid.UUID `bun:"post_id,pk,type:uuid" json:"post_id"`
	UserID    uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type PostSave struct {
	bun.BaseModel `bun:"table:post_saves,alias:ps"`

	PostID    uuid.UUID `bun:"post_id,pk,type:uuid" json:"post_id"`
	UserID    uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type CreatePostRequest struct {
	BusinessID     *uuid.UUID `json:"business_id"`
	ProfessionalID *uuid.UUID `json:"professional_id"`
	Content        string     `json:"content"`
	Image          *string    `json:"image"`
}

type PostQueryParams struct {
	UserID         *uuid.UUID
	BusinessID     *uuid.UUID
	ProfessionalID *uuid.UUID
	Limit          int
	Offset         int
}

// ToggleResult reports the state after a like/save toggle.
type ToggleResult struct {
	Active bool `json:"active"`
	Count  int  `json:"count"`
}

// SavedItem bookmarks exactly one business, professional or product.
type SavedItem struct {
	bun.BaseModel `bun:"table:saved_items,alias:si"`

	ID             uuid.UUID  `bun:"id,pk,type:uuid,default:uuid_generate_v4()" json:"id"`
	UserID         uuid.UUID  `bun:"user_id,type:uuid,notnull" json:"user_id"`
	BusinessID     *uuid.UUID `bun:"business_id,type:uuid" json:"business_id,omitempty"`
	ProfessionalID *uuid.UUID `bun:"professional_id,type:uuid" json:"professional_id,omitempty"`
	ProductID      *uuid.UUID `bun:"product_id,type:uuid" json:"product_id,omitempty"`
	CreatedAt      time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Business     *Business     `bun:"rel:belongs-to,join:business_id=id" json:"business,omitempty"`
	Professional *Professional `bun:"rel:belongs-to,join:professional_id=id" json:"professional,omitempty"`
	Product      *Product      `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
}

type SaveItemRequest struct {
	BusinessID     *uuid.UUID `json:"business_id"`
	ProfessionalID *uuid.UUID `json:"professional_id"`
	ProductID      *uuid.UUID `json:"product_id"`
}

// Targets counts the non-nil references.
func (r SaveItemRequest) Targets() int {
	n := 0
	for _, id := range []*uuid.UUID{r.BusinessID, r.ProfessionalID, r.ProductID} {
		if id != nil {
			n++
		}
	}
	return n
}
