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

type ProfessionalService struct {
	db *bun.DB
}

func NewProfessionalService(db *bun.DB) *ProfessionalService {
	return &ProfessionalService{db: db}
}

func filterProfessionals(q *bun.SelectQuery, params models.ListingQueryParams) *bun.SelectQuery {
	if params.Query != "" {
		pattern := likePattern(params.Query)
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("p.name ILIKE ?", pattern).WhereOr("p.title ILIKE ?", pattern)
		})
	}
	if len(params.TypeIDs) > 0 {
		q = q.Where("p.type_id IN (?)", bun.In(params.TypeIDs))
	}
	if params.UserID != nil {
		q = q.Where("p.user_id = ?", *params.UserID)
	}
	return q
}

// ListProfessionals returns professionals by rating, then newest. Query
// matches name or title.
func (s *ProfessionalService) ListProfessionals(ctx context.Context, params models.ListingQueryParams) ([]*models.Professional, error) {
	items := make([]*models.Professional, 0)
	q := s.db.NewSelect().
		Model(&items).
		Relation("Type")

	err := filterProfessionals(q, params).
		OrderExpr("p.rating DESC NULLS LAST, p.created_at DESC").
		Limit(ClampLimit(params.Limit)).
		Offset(params.Offset).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list professionals: %w", err)
	}
	return items, nil
}

// CensusProfessionals is the unpaged counterpart of ListProfessionals used
// for directory stats.
func (s *ProfessionalService) CensusProfessionals(ctx context.Context, params models.ListingQueryParams) ([]*models.Professional, error) {
	items := make([]*models.Professional, 0)
	q := s.db.NewSelect().
		Model(&items).
		Column("id", "type_id", "online", "verified", "latitude", "longitude").
		Relation("Type", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Column("name")
		})

	if err := filterProfessionals(q, params).Scan(ctx); err != nil {
		return nil, fmt.Errorf("professional census: %w", err)
	}
	return items, nil
}

func (s *ProfessionalService) GetProfessional(ctx context.Context, id uuid.UUID) (*models.Professional, error) {
	p := new(models.Professional)
	err := s.db.NewSelect().Model(p).Relation("Type").Where("p.id = ?", id).Scan(ctx)
	if err != nil {
		return nil, apperr.FromDB(err)
	}
	return p, nil
}

func validateProfessional(req models.ProfessionalRequest) error {
	if err := requireText("name", req.Name); err != nil {
		return err
	}
	if err := requireText("title", req.Title); err != nil {
		return err
	}
	return validateCoordinates(req.Latitude, req.Longitude)
}

func (s *ProfessionalService) CreateProfessional(ctx context.Context, userID uuid.UUID, req models.ProfessionalRequest) (*models.Professional, error) {
	if err := validateProfessional(req); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	p := &models.Professional{
		ID:           uuid.New(),
		UserID:       userID,
		TypeID:       req.TypeID,
		Name:         strings.TrimSpace(req.Name),
		Title:        strings.TrimSpace(req.Title),
		Bio:          req.Bio,
		Image:        req.Image,
		Online:       req.Online != nil && *req.Online,
		WorkingHours: req.WorkingHours,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := s.db.NewInsert().Model(p).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert professional: %w", err)
	}
	return p, nil
}

func (s *ProfessionalService) UpdateProfessional(ctx context.Context, userID, id uuid.UUID, req models.ProfessionalRequest) (*models.Professional, error) {
	if err := validateProfessional(req); err != nil {
		return nil, err
	}
	p, err := s.GetProfessional(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, apperr.ErrForbidden
	}

	p.TypeID = req.TypeID
	p.Name = strings.TrimSpace(req.Name)
	p.Title = strings.TrimSpace(req.Title)
	p.Bio = req.Bio
	p.Image = req.Image
	if req.Online != nil {
		p.Online = *req.Online
	}
	p.WorkingHours = req.WorkingHours
	p.Latitude = req.Latitude
	p.Longitude = req.Longitude
	p.UpdatedAt = time.Now().UTC()

	_, err = s.db.NewUpdate().Model(p).
		Column("type_id", "name", "title", "bio", "image", "online", "working_hours", "latitude", "longitude", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update professional: %w", err)
	}
	return p, nil
}

func (s *ProfessionalService) DeleteProfessional(ctx context.Context, userID, id uuid.UUID) error {
	res, err := s.db.NewDelete().Model((*models.Professional)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete professional: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// OwnsProfessional reports whether userID owns the professional profile.
func (s *ProfessionalService) OwnsProfessional(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	return s.db.NewSelect().Model((*models.Professional)(nil)).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exists(ctx)
}
