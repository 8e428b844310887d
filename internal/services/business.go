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

type BusinessService struct {
	db *bun.DB
}

func NewBusinessService(db *bun.DB) *BusinessService {
	return &BusinessService{db: db}
}

func filterBusinesses(q *bun.SelectQuery, params models.ListingQueryParams) *bun.SelectQuery {
	if params.Query != "" {
		pattern := likePattern(params.Query)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("b.name ILIKE ?", pattern).WhereOr("b.description ILIKE ?", pattern)
		})
	}
	if len(params.TypeIDs) > 0 {
		q = q.Where("b.type_id IN (?)", bun.In(params.TypeIDs))
	}
	if params.UserID != nil {
		q = q.Where("b.user_id = ?", *params.UserID)
	}
	return q
}

// ListBusinesses returns businesses newest first.
func (s *BusinessService) ListBusinesses(ctx context.Context, params models.ListingQueryParams) ([]*models.Business, error) {
	items := make([]*models.Business, 0)
	q := s.db.NewSelect().
		Model(&items).
		Relation("Type")

	err := filterBusinesses(q, params).
		OrderExpr("b.created_at DESC").
		Limit(ClampLimit(params.Limit)).
		Offset(params.Offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return items, nil
}

// CensusBusinesses returns every business matching params, unpaged, with
// only the columns the directory stats read.
func (s *BusinessService) CensusBusinesses(ctx context.Context, params models.ListingQueryParams) ([]*models.Business, error) {
	items := make([]*models.Business, 0)
	q := s.db.NewSelect().
		Model(&items).
		Column("id", "type_id", "is_open", "latitude", "longitude").
		Relation("Type", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("name")
		})

	if err := filterBusinesses(q, params).Scan(ctx); err != nil {
		return nil, fmt.Errorf("business census: %w", err)
	}
	return items, nil
}

func (s *BusinessService) GetBusiness(ctx context.Context, id uuid.UUID) (*models.Business, error) {
	b := new(models.Business)
	err := s.db.NewSelect().Model(b).Relation("Type").Where("b.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return b, nil
}

func validateBusiness(req models.BusinessRequest) error {
	if err := requireText("name", req.Name); err != nil {
		return err
	}
	return validateCoordinates(req.Latitude, req.Longitude)
}

func (s *BusinessService) CreateBusiness(ctx context.Context, userID uuid.UUID, req models.BusinessRequest) (*models.Business, error) {
	if err := validateBusiness(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	b := &models.Business{
		ID:           uuid.New(),
		UserID:       userID,
		TypeID:       req.TypeID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Image:        req.Image,
		IsOpen:       req.IsOpen == nil || *req.IsOpen,
		ContactInfo:  req.ContactInfo,
		WorkingHours: req.WorkingHours,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.db.NewInsert().Model(b).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert business: %w", err)
	}
	return b, nil
}

// UpdateBusiness replaces the editable fields. Only the owner may update.
func (s *BusinessService) UpdateBusiness(ctx context.Context, userID, id uuid.UUID, req models.BusinessRequest) (*models.Business, error) {
	if err := validateBusiness(req); err != nil {
		return nil, err
	}
	b, err := s.GetBusiness(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	b.TypeID = req.TypeID
	b.Name = strings.TrimSpace(req.Name)
	b.Description = req.Description
	b.Image = req.Image
	if req.IsOpen != nil {
		b.IsOpen = *req.IsOpen
	}
	b.ContactInfo = req.ContactInfo
	b.WorkingHours = req.WorkingHours
	b.Latitude = req.Latitude
	b.Longitude = req.Longitude
	b.UpdatedAt = time.Now().UTC()

	_, err = s.db.NewUpdate().Model(b).
		Column("type_id", "name", "description", "image", "is_open", "contact_info", "working_hours", "latitude", "longitude", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update business: %w", err)
	}
	return b, nil
}

func (s *BusinessService) DeleteBusiness(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*models.Business)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete business: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// OwnsBusiness reports whether userID owns the business.
func (s *BusinessService) OwnsBusiness(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	return s.db.NewSelect().Model((*models.Business)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exists(ctx)
}
