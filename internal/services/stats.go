package services

import (
	"context"

	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/models"
)

// BusinessCensus lists every matching business without paging.
type BusinessCensus interface {
	CensusBusinesses(ctx context.Context, params models.ListingQueryParams) ([]*models.Business, error)
}

// ProfessionalCensus lists every matching professional without paging.
type ProfessionalCensus interface {
	CensusProfessionals(ctx context.Context, params models.ListingQueryParams) ([]*models.Professional, error)
}

// KindStats summarises one listing kind.
type KindStats struct {
	Total  int              `json:"total"`
	ByType map[string]int   `json:"by_type"`
	ByMode map[geo.Mode]int `json:"by_mode"`
	// Open counts open businesses, or online professionals.
	Open     int `json:"open"`
	Verified int `json:"verified,omitempty"`
}

type DirectoryStats struct {
	Viewer        *geo.Point `json:"viewer"`
	Businesses    KindStats  `json:"businesses"`
	Professionals KindStats  `json:"professionals"`
}

const untyped = "untyped"

// StatsService summarises the whole directory, not a page of it.
type StatsService struct {
	businesses    BusinessCensus
	professionals ProfessionalCensus
}

func NewStatsService(b BusinessCensus, p ProfessionalCensus) *StatsService {
	return &StatsService{businesses: b, professionals: p}
}

// Stats summarises the listings matching req for the viewer. Mode, limit
// and offset in req are ignored; every mode is counted.
func (s *StatsService) Stats(ctx context.Context, req models.ListingRequest) (*DirectoryStats, error) {
	params := req.ListingQueryParams
	params.Limit, params.Offset = 0, 0

	businesses, err := s.businesses.CensusBusinesses(ctx, params)
	if err != nil {
		return nil, err
	}
	professionals, err := s.professionals.CensusProfessionals(ctx, params)
	if err != nil {
		return nil, err
	}

	stats := &DirectoryStats{
		Viewer: req.Viewer,
		Businesses: KindStats{
			Total:  len(businesses),
			ByType: make(map[string]int),
			ByMode: geo.CountByMode(LocateBusinesses(businesses, req.Viewer)),
		},
		Professionals: KindStats{
			Total:  len(professionals),
			ByType: make(map[string]int),
			ByMode: geo.CountByMode(LocateProfessionals(professionals, req.Viewer)),
		},
	}

	for _, b := range businesses {
		name := untyped
		if b.Type != nil {
			name = b.Type.Name
		}
		stats.Businesses.ByType[name]++
		if b.IsOpen {
			stats.Businesses.Open++
		}
	}
	for _, p := range professionals {
		name := untyped
		if p.Type != nil {
			name = p.Type.Name
		}
		stats.Professionals.ByType[name]++
		if p.Online {
			stats.Professionals.Open++
		}
		if p.Verified {
			stats.Professionals.Verified++
		}
	}
	return stats, nil
}
