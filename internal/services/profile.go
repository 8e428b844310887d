package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ProfileService struct {
	db *bun.DB
}

func NewProfileService(db *bun.DB) *ProfileService {
	return &ProfileService{db: db}
}

func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	p := new(models.Profile)
	if err := s.db.NewSelect().Model(p).Where("id = ?", userID).Scan(ctx); err != nil {
		return nil, apperr.FromDB(err)
	}
	return p, nil
}

// Update applies the non-nil fields of req. ClearLocation nulls the
// coordinates and cannot be combined with new ones.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, req models.UpdateProfileRequest) (*models.Profile, error) {
	if req.ClearLocation && (req.Latitude != nil || req.Longitude != nil) {
		return nil, apperr.Invalid("clear_location cannot be combined with latitude or longitude")
	}
	if err := validateCoordinates(req.Latitude, req.Longitude); err != nil {
		return nil, err
	}
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	cols := []string{"updated_at"}
	set := func(dst **string, v *string, col string) {
		if v != nil {
			*dst = v
			cols = append(cols, col)
		}
	}
	set(&p.FirstName, req.FirstName, "first_name")
	set(&p.LastName, req.LastName, "last_name")
	set(&p.Phone, req.Phone, "phone")
	set(&p.Bio, req.Bio, "bio")
	set(&p.AvatarURL, req.AvatarURL, "avatar_url")
	switch {
	case req.ClearLocation:
		p.Latitude, p.Longitude = nil, nil
		cols = append(cols, "latitude", "longitude")
	case req.Latitude != nil:
		p.Latitude, p.Longitude = req.Latitude, req.Longitude
		cols = append(cols, "latitude", "longitude")
	}
	p.UpdatedAt = time.Now().UTC()

	if _, err := s.db.NewUpdate().Model(p).Column(cols...).WherePK().Exec(ctx); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return p, nil
}

// Location returns the stored coordinates, or nil if the profile has none.
func (s *ProfileService) Location(ctx context.Context, userID uuid.UUID) (*geo.Point, error) {
	var row struct {
		Latitude  *float64 `bun:"latitude"`
		Longitude *float64 `bun:"longitude"`
	}
	err := s.db.NewSelect().
		Model((*models.Profile)(nil)).
		Column("latitude", "longitude").
		Where("id = ?", userID).
		Scan(ctx, &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return geo.PointFrom(row.Latitude, row.Longitude), nil
}
