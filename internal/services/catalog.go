package services

import (
	"context"
	"fmt"
	"strings"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/cache"
	"reachmesh-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// CatalogService serves the rarely changing lookup tables through the
// Redis cache.
type CatalogService struct {
	db    *bun.DB
	cache *cache.Cache
}

func NewCatalogService(db *bun.DB, c *cache.Cache) *CatalogService {
	return &CatalogService{db: db, cache: c}
}

func (s *CatalogService) BusinessTypes(ctx context.Context) ([]models.BusinessType, error) {
	return cache.Remember(ctx, s.cache, s.cache.Key("catalog", "business-types"), func(ctx context.Context) ([]models.BusinessType, error) {
		items := make([]models.BusinessType, 0)
		if err := s.db.NewSelect().Model(&items).Order("name ASC").Scan(ctx); err != nil {
			return nil, fmt.Errorf("list business types: %w", err)
		}
		return items, nil
	})
}

func (s *CatalogService) ProfessionTypes(ctx context.Context) ([]models.ProfessionType, error) {
	return cache.Remember(ctx, s.cache, s.cache.Key("catalog", "profession-types"), func(ctx context.Context) ([]models.ProfessionType, error) {
		items := make([]models.ProfessionType, 0)
		if err := s.db.NewSelect().Model(&items).Order("name ASC").Scan(ctx); err != nil {
			return nil, fmt.Errorf("list profession types: %w", err)
		}
		return items, nil
	})
}

// Plans returns active subscription plans, cheapest first.
func (s *CatalogService) Plans(ctx context.Context) ([]models.Plan, error) {
	return cache.Remember(ctx, s.cache, s.cache.Key("plans", "active"), func(ctx context.Context) ([]models.Plan, error) {
		items := make([]models.Plan, 0)
		err := s.db.NewSelect().
			Model(&items).
			Where("is_active = TRUE").
			Order("price ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("list plans: %w", err)
		}
		return items, nil
	})
}

// EnsureBusinessType returns the id of the named type, creating it if needed.
func (s *CatalogService) EnsureBusinessType(ctx context.Context, name string) (uuid.UUID, error) {
	t := &models.BusinessType{ID: uuid.New(), Name: strings.TrimSpace(name)}
	id, err := s.ensureType(ctx, t, &t.ID, t.Name, "business-types")
	return id, err
}

// EnsureProfessionType returns the id of the named type, creating it if needed.
func (s *CatalogService) EnsureProfessionType(ctx context.Context, name string) (uuid.UUID, error) {
	t := &models.ProfessionType{ID: uuid.New(), Name: strings.TrimSpace(name)}
	id, err := s.ensureType(ctx, t, &t.ID, t.Name, "profession-types")
	return id, err
}

func (s *CatalogService) ensureType(ctx context.Context, model any, id *uuid.UUID, name, cacheKey string) (uuid.UUID, error) {
	if name == "" {
		return uuid.Nil, apperr.Invalid("type name is required")
	}
	var existing uuid.UUID
	err := s.db.NewSelect().Model(model).Column("id").Where("lower(name) = lower(?)", name).Limit(1).Scan(ctx, &existing)
	if err == nil {
		return existing, nil
	}
	if apperr.FromDB(err) != apperr.ErrNotFound {
		return uuid.Nil, err
	}
	if _, err := s.db.NewInsert().Model(model).Exec(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("insert type: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cache.Key("catalog", cacheKey))
	return *id, nil
}
