package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProductService manages a business's catalog. Writes require ownership of
// the business.
type ProductService struct {
	db *bun.DB
}

func NewProductService(db *bun.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) requireOwner(ctx context.Context, userID, businessID uuid.UUID) error {
	b := new(models.Business)
	err := s.db.NewSelect().Model(b).Column("id", "user_id").Where("id = ?", businessID).Scan(ctx)
	if err != nil {
		return apperr.FromDB(err)
	}
	if b.UserID != userID {
		return apperr.ErrForbidden
	}
	return nil
}

// ListProducts returns products of a business, optionally within one category.
func (s *ProductService) ListProducts(ctx context.Context, businessID uuid.UUID, categoryID *uuid.UUID) ([]models.Product, error) {
	items := make([]models.Product, 0)
	q := s.db.NewSelect().
		Model(&items).
		Where("business_id = ?", businessID)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	}
	if err := q.Order("name ASC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return items, nil
}

func (s *ProductService) CreateProduct(ctx context.Context, userID, businessID uuid.UUID, req models.ProductRequest) (*models.Product, error) {
	if err := requireText("name", req.Name); err != nil {
		return nil, err
	}
	if req.Price < 0 {
		return nil, apperr.Invalid("price must not be negative")
	}
	if err := s.requireOwner(ctx, userID, businessID); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		ok, err := s.db.NewSelect().Model((*models.ProductCategory)(nil)).
			Where("id = ?", *req.CategoryID).
			Where("business_id = ?", businessID).
			Exists(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Invalid("category does not belong to this business")
		}
	}

	p := &models.Product{
		ID:          uuid.New(),
		BusinessID:  businessID,
		CategoryID:  req.CategoryID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Image:       req.Image,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, userID, businessID, productID uuid.UUID) error {
	if err := s.requireOwner(ctx, userID, businessID); err != nil {
		return err
	}
	res, err := s.db.NewDelete().Model((*models.Product)(nil)).
		Where("id = ?", productID).
		Where("business_id = ?", businessID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (s *ProductService) ListCategories(ctx context.Context, businessID uuid.UUID) ([]models.ProductCategory, error) {
	items := make([]models.ProductCategory, 0)
	err := s.db.NewSelect().
		Model(&items).
		Where("business_id = ?", businessID).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return items, nil
}

func (s *ProductService) CreateCategory(ctx context.Context, userID, businessID uuid.UUID, name string) (*models.ProductCategory, error) {
	if err := requireText("name", name); err != nil {
		return nil, err
	}
	if err := s.requireOwner(ctx, userID, businessID); err != nil {
		return nil, err
	}
	c := &models.ProductCategory{ID: uuid.New(), BusinessID: businessID, Name: strings.TrimSpace(name)}
	if _, err := s.db.NewInsert().Model(c).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	return c, nil
}
