package services

import (
	"context"
	"errors"
	"testing"

	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBusinesses struct {
	items []*models.Business
	err   error
	got   models.ListingQueryParams
}

func (f *fakeBusinesses) ListBusinesses(_ context.Context, params models.ListingQueryParams) ([]*models.Business, error) {
	f.got = params
	return f.items, f.err
}

type fakeProfessionals struct {
	items []*models.Professional
	err   error
}

func (f *fakeProfessionals) ListProfessionals(_ context.Context, _ models.ListingQueryParams) ([]*models.Professional, error) {
	return f.items, f.err
}

func (f *fakeBusinesses) CensusBusinesses(ctx context.Context, params models.ListingQueryParams) ([]*models.Business, error) {
	return f.ListBusinesses(ctx, params)
}

func (f *fakeProfessionals) CensusProfessionals(ctx context.Context, params models.ListingQueryParams) ([]*models.Professional, error) {
	return f.ListProfessionals(ctx, params)
}

type fakeLocator struct {
	point *geo.Point
	err   error
}

func (f fakeLocator) Location(_ context.Context, _ uuid.UUID) (*geo.Point, error) {
	return f.point, f.err
}

var origin = geo.Point{Lat: 5.6037, Lon: -0.1870}

// placed returns coordinates distanceKM due east of origin.
func placed(distanceKM float64) (*float64, *float64) {
	p := geo.Offset(origin, distanceKM, 90)
	return &p.Lat, &p.Lon
}

func business(name string, distanceKM float64) *models.Business {
	lat, lon := placed(distanceKM)
	return &models.Business{ID: uuid.New(), Name: name, Latitude: lat, Longitude: lon}
}

func professional(name string, distanceKM float64) *models.Professional {
	lat, lon := placed(distanceKM)
	return &models.Professional{ID: uuid.New(), Name: name, Latitude: lat, Longitude: lon}
}

func businessNames(items []models.BusinessListing) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func professionalNames(items []models.ProfessionalListing) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func newFeed(b *fakeBusinesses, p *fakeProfessionals) *FeedService {
	return NewFeedService(b, p, fakeLocator{}, nil, zap.NewNop())
}

func TestFeed_FiltersBothKindsByMode(t *testing.T) {
	b := &fakeBusinesses{items: []*models.Business{
		business("bakery", 10),
		business("mill", 300),
		business("exporter", 5000),
	}}
	p := &fakeProfessionals{items: []*models.Professional{
		professional("plumber", 2),
		professional("consultant", 1200),
		professional("translator", 12000),
	}}
	viewer := origin

	res, err := newFeed(b, p).Feed(context.Background(), models.ListingRequest{
		Mode:   geo.ModeLocal,
		Viewer: &viewer,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"bakery"}, businessNames(res.Businesses))
	assert.Equal(t, []string{"plumber"}, professionalNames(res.Professionals))
	assert.Equal(t, geo.ModeLocal, res.Mode)

	assert.Equal(t, 1, res.Counts.Businesses[geo.ModeLocal])
	assert.Equal(t, 1, res.Counts.Businesses[geo.ModeRegional])
	assert.Equal(t, 1, res.Counts.Businesses[geo.ModeInternational])
	assert.Equal(t, 1, res.Counts.Professionals[geo.ModeNational])
	assert.Equal(t, 1, res.Counts.Professionals[geo.ModeGlobal])
}

func TestFeed_NoModeReturnsEverythingInOrder(t *testing.T) {
	b := &fakeBusinesses{items: []*models.Business{business("far", 9000), business("near", 1)}}
	viewer := origin

	res, err := newFeed(b, &fakeProfessionals{}).Feed(context.Background(), models.ListingRequest{Viewer: &viewer})
	require.NoError(t, err)

	assert.Equal(t, []string{"far", "near"}, businessNames(res.Businesses))
	require.NotNil(t, res.Businesses[0].DistanceKM)
	assert.InDelta(t, 9000, *res.Businesses[0].DistanceKM, 1)
}

func TestFeed_UnknownModePassesThrough(t *testing.T) {
	b := &fakeBusinesses{items: []*models.Business{business("a", 1), business("b", 20000)}}
	viewer := origin

	res, err := newFeed(b, &fakeProfessionals{}).Feed(context.Background(), models.ListingRequest{
		Mode:   geo.Mode("orbital"),
		Viewer: &viewer,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, businessNames(res.Businesses))
}

func TestFeed_UnknownViewerTreatsEverythingAsLocal(t *testing.T) {
	b := &fakeBusinesses{items: []*models.Business{business("a", 1), business("b", 20000)}}

	res, err := newFeed(b, &fakeProfessionals{}).Feed(context.Background(), models.ListingRequest{Mode: geo.ModeGlobal})
	require.NoError(t, err)
	assert.Empty(t, res.Businesses)
	assert.Equal(t, 2, res.Counts.Businesses[geo.ModeLocal])
}

func TestFeed_PropagatesListErrors(t *testing.T) {
	boom := errors.New("boom")
	_, err := newFeed(&fakeBusinesses{}, &fakeProfessionals{err: boom}).Feed(context.Background(), models.ListingRequest{})
	assert.ErrorIs(t, err, boom)

	_, err = newFeed(&fakeBusinesses{err: boom}, &fakeProfessionals{}).Feed(context.Background(), models.ListingRequest{})
	assert.ErrorIs(t, err, boom)
}

func TestFeed_PassesQueryParamsThrough(t *testing.T) {
	b := &fakeBusinesses{}
	typeID := uuid.New()
	_, _, err := newFeed(b, &fakeProfessionals{}).Businesses(context.Background(), models.ListingRequest{
		ListingQueryParams: models.ListingQueryParams{Query: "bread", TypeIDs: []uuid.UUID{typeID}, Limit: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, "bread", b.got.Query)
	assert.Equal(t, []uuid.UUID{typeID}, b.got.TypeIDs)
	assert.Equal(t, 5, b.got.Limit)
}

func TestResolveViewer(t *testing.T) {
	explicit := geo.Point{Lat: 1, Lon: 2}
	stored := geo.Point{Lat: 3, Lon: 4}
	fallback := geo.Point{Lat: 5, Lon: 6}
	userID := uuid.New()
	ctx := context.Background()

	svc := NewFeedService(nil, nil, fakeLocator{point: &stored}, &fallback, zap.NewNop())
	assert.Equal(t, &explicit, svc.ResolveViewer(ctx, &explicit, &userID))
	assert.Equal(t, &stored, svc.ResolveViewer(ctx, nil, &userID))
	assert.Equal(t, &fallback, svc.ResolveViewer(ctx, nil, nil))

	svc = NewFeedService(nil, nil, fakeLocator{err: errors.New("db down")}, &fallback, zap.NewNop())
	assert.Equal(t, &fallback, svc.ResolveViewer(ctx, nil, &userID))

	svc = NewFeedService(nil, nil, fakeLocator{}, nil, zap.NewNop())
	assert.Nil(t, svc.ResolveViewer(ctx, nil, &userID))
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, defaultLimit, ClampLimit(0))
	assert.Equal(t, defaultLimit, ClampLimit(-3))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, maxLimit, ClampLimit(10_000))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%bread%", likePattern("  bread "))
	assert.Equal(t, `%50\%\_off%`, likePattern("50%_off"))
}

func TestValidateCoordinates(t *testing.T) {
	lat, lon, bad := 5.0, -0.2, 120.0
	assert.NoError(t, validateCoordinates(nil, nil))
	assert.NoError(t, validateCoordinates(&lat, &lon))
	assert.Error(t, validateCoordinates(&lat, nil))
	assert.Error(t, validateCoordinates(&bad, &lon))
}
