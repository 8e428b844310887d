package services

import (
	"context"

	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/metrics"
	"reachmesh-bknd/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BusinessLister interface {
	ListBusinesses(ctx context.Context, params models.ListingQueryParams) ([]*models.Business, error)
}

type ProfessionalLister interface {
	ListProfessionals(ctx context.Context, params models.ListingQueryParams) ([]*models.Professional, error)
}

// ProfileLocator returns the stored coordinates of a user, nil if unset.
type ProfileLocator interface {
	Location(ctx context.Context, userID uuid.UUID) (*geo.Point, error)
}

// ModeCounts holds per-mode totals computed before filtering.
type ModeCounts struct {
	Businesses    map[geo.Mode]int `json:"businesses"`
	Professionals map[geo.Mode]int `json:"professionals"`
}

type FeedResult struct {
	Mode          geo.Mode                     `json:"mode,omitempty"`
	Viewer        *geo.Point                   `json:"viewer"`
	Businesses    []models.BusinessListing     `json:"businesses"`
	Professionals []models.ProfessionalListing `json:"professionals"`
	Counts        ModeCounts                   `json:"counts"`
}

// FeedService places listings relative to a viewer and applies the
// distance mode filter.
type FeedService struct {
	businesses    BusinessLister
	professionals ProfessionalLister
	profiles      ProfileLocator
	fallback      *geo.Point
	logr          *zap.Logger
}

func NewFeedService(b BusinessLister, p ProfessionalLister, profiles ProfileLocator, fallback *geo.Point, logr *zap.Logger) *FeedService {
	return &FeedService{
		businesses:    b,
		professionals: p,
		profiles:      profiles,
		fallback:      fallback,
		logr:          logr,
	}
}

// ResolveViewer picks the viewer location: explicit coordinates, then the
// user's stored profile coordinates, then the configured fallback. It
// returns nil when none is known.
func (s *FeedService) ResolveViewer(ctx context.Context, explicit *geo.Point, userID *uuid.UUID) *geo.Point {
	if explicit != nil {
		return explicit
	}
	if userID != nil && s.profiles != nil {
		p, err := s.profiles.Location(ctx, *userID)
		if err != nil {
			s.logr.Warn("profile location lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		} else if p != nil {
			return p
		}
	}
	return s.fallback
}

// LocateBusinesses attaches the viewer-relative distance to each business.
func LocateBusinesses(items []*models.Business, viewer *geo.Point) []models.BusinessListing {
	out := make([]models.BusinessListing, len(items))
	for i, b := range items {
		out[i] = models.BusinessListing{Business: b, DistanceKM: geo.DistanceBetween(viewer, b.Location())}
	}
	return out
}

// LocateProfessionals attaches the viewer-relative distance to each professional.
func LocateProfessionals(items []*models.Professional, viewer *geo.Point) []models.ProfessionalListing {
	out := make([]models.ProfessionalListing, len(items))
	for i, p := range items {
		out[i] = models.ProfessionalListing{Professional: p, DistanceKM: geo.DistanceBetween(viewer, p.Location())}
	}
	return out
}

func (s *FeedService) applyMode(mode geo.Mode, kind string, n int) {
	if mode == "" {
		return
	}
	if !mode.Valid() {
		s.logr.Warn("unknown distance mode, returning unfiltered", zap.String("mode", string(mode)), zap.String("kind", kind))
		return
	}
	metrics.ListingsFiltered.WithLabelValues(kind, string(mode)).Add(float64(n))
}

// Businesses lists businesses for the viewer, filtered by req.Mode.
func (s *FeedService) Businesses(ctx context.Context, req models.ListingRequest) ([]models.BusinessListing, map[geo.Mode]int, error) {
	items, err := s.businesses.ListBusinesses(ctx, req.ListingQueryParams)
	if err != nil {
		return nil, nil, err
	}
	located := LocateBusinesses(items, req.Viewer)
	counts := geo.CountByMode(located)
	if req.Mode == "" {
		return located, counts, nil
	}
	filtered := geo.FilterByMode(located, req.Mode)
	s.applyMode(req.Mode, "business", len(filtered))
	return filtered, counts, nil
}

// Professionals lists professionals for the viewer, filtered by req.Mode.
func (s *FeedService) Professionals(ctx context.Context, req models.ListingRequest) ([]models.ProfessionalListing, map[geo.Mode]int, error) {
	items, err := s.professionals.ListProfessionals(ctx, req.ListingQueryParams)
	if err != nil {
		return nil, nil, err
	}
	located := LocateProfessionals(items, req.Viewer)
	counts := geo.CountByMode(located)
	if req.Mode == "" {
		return located, counts, nil
	}
	filtered := geo.FilterByMode(located, req.Mode)
	s.applyMode(req.Mode, "professional", len(filtered))
	return filtered, counts, nil
}

// Feed builds the home feed: both listing kinds filtered by the same mode.
func (s *FeedService) Feed(ctx context.Context, req models.ListingRequest) (*FeedResult, error) {
	professionals, pc, err := s.Professionals(ctx, req)
	if err != nil {
		return nil, err
	}
	businesses, bc, err := s.Businesses(ctx, req)
	if err != nil {
		return nil, err
	}
	return &FeedResult{
		Mode:          req.Mode,
		Viewer:        req.Viewer,
		Businesses:    businesses,
		Professionals: professionals,
		Counts:        ModeCounts{Businesses: bc, Professionals: pc},
	}, nil
}
