package services

import (
	"context"
	"fmt"
	"time"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type SavedService struct {
	db *bun.DB
}

func NewSavedService(db *bun.DB) *SavedService {
	return &SavedService{db: db}
}

// List returns the user's bookmarks with the referenced item loaded.
func (s *SavedService) List(ctx context.Context, userID uuid.UUID) ([]models.SavedItem, error) {
	items := make([]models.SavedItem, 0)
	err := s.db.NewSelect().
		Model(&items).
		Relation("Business").
		Relation("Professional").
		Relation("Product").
		Where("si.user_id = ?", userID).
		Order("si.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saved items: %w", err)
	}
	return items, nil
}

// Save bookmarks exactly one business, professional or product. Saving the
// same target twice is a conflict.
func (s *SavedService) Save(ctx context.Context, userID uuid.UUID, req models.SaveItemRequest) (*models.SavedItem, error) {
	if req.Targets() != 1 {
		return nil, apperr.Invalid("exactly one of business_id, professional_id or product_id is required")
	}

	q := s.db.NewSelect().Model((*models.SavedItem)(nil)).Where("user_id = ?", userID)
	switch {
	case req.BusinessID != nil:
		q = q.Where("business_id = ?", *req.BusinessID)
	case req.ProfessionalID != nil:
		q = q.Where("professional_id = ?", *req.ProfessionalID)
	default:
		q = q.Where("product_id = ?", *req.ProductID)
	}
	exists, err := q.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: already saved", apperr.ErrConflict)
	}

	item := &models.SavedItem{
		ID:             uuid.New(),
		UserID:         userID,
		BusinessID:     req.BusinessID,
		ProfessionalID: req.ProfessionalID,
		ProductID:      req.ProductID,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(item).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert saved item: %w", err)
	}
	return item, nil
}

func (s *SavedService) Remove(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*models.SavedItem)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete saved item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
