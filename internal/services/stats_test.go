package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"reachmesh-bknd/internal/geo"
	"reachmesh-bknd/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func TestStats_Counts(t *testing.T) {
	bakery := business("bakery", 2)
	bakery.Type = &models.BusinessType{Name: "Bakery"}
	bakery.IsOpen = true
	closed := business("closed", 700)
	closed.Type = &models.BusinessType{Name: "Bakery"}
	loose := business("loose", 12000)

	plumber := professional("plumber", 30)
	plumber.Online = true
	plumber.Verified = true

	b := &fakeBusinesses{items: []*models.Business{bakery, closed, loose}}
	svc := NewStatsService(b, &fakeProfessionals{items: []*models.Professional{plumber}})

	req := models.ListingRequest{
		ListingQueryParams: models.ListingQueryParams{Query: "bak", Limit: 10, Offset: 30},
		Mode:               geo.ModeLocal,
		Viewer:             &origin,
	}
	stats, err := svc.Stats(context.Background(), req)
	require.NoError(t, err)

	// paging never reaches the census
	assert.Equal(t, "bak", b.got.Query)
	assert.Zero(t, b.got.Limit)
	assert.Zero(t, b.got.Offset)

	assert.Equal(t, 3, stats.Businesses.Total)
	assert.Equal(t, map[string]int{"Bakery": 2, "untyped": 1}, stats.Businesses.ByType)
	assert.Equal(t, 1, stats.Businesses.Open)
	assert.Equal(t, 1, stats.Businesses.ByMode[geo.ModeLocal])
	assert.Equal(t, 1, stats.Businesses.ByMode[geo.ModeNational])
	assert.Equal(t, 1, stats.Businesses.ByMode[geo.ModeGlobal])

	assert.Equal(t, 1, stats.Professionals.Total)
	assert.Equal(t, 1, stats.Professionals.Open)
	assert.Equal(t, 1, stats.Professionals.Verified)
	assert.Equal(t, 1, stats.Professionals.ByMode[geo.ModeLocal])
}

// unpagedMatcher fails any query that carries LIMIT or OFFSET.
var unpagedMatcher = sqlmock.QueryMatcherFunc(func(expected, actual string) error {
	if strings.Contains(actual, "LIMIT") || strings.Contains(actual, "OFFSET") {
		return fmt.Errorf("query is paged: %s", actual)
	}
	return sqlmock.QueryMatcherRegexp.Match(expected, actual)
})

func TestStats_CoversWholeDirectory(t *testing.T) {
	sqldb, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(unpagedMatcher))
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })

	bRows := sqlmock.NewRows([]string{"id", "type_id", "is_open", "latitude", "longitude"})
	for i := 0; i < 250; i++ {
		bRows.AddRow(uuid.NewString(), nil, i%2 == 0, nil, nil)
	}
	mock.ExpectQuery(`SELECT .+ FROM "businesses" AS "b" LEFT JOIN "business_types" AS "type"`).
		WillReturnRows(bRows)
	mock.ExpectQuery(`SELECT .+ FROM "professionals" AS "p" LEFT JOIN "profession_types" AS "type"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type_id", "online", "verified", "latitude", "longitude"}).
			AddRow(uuid.NewString(), nil, true, false, nil, nil))

	svc := NewStatsService(NewBusinessService(db), NewProfessionalService(db))
	stats, err := svc.Stats(context.Background(), models.ListingRequest{})
	require.NoError(t, err)

	assert.Equal(t, 250, stats.Businesses.Total)
	assert.Equal(t, 125, stats.Businesses.Open)
	assert.Equal(t, 250, stats.Businesses.ByType[untyped])
	// no viewer, so everything is local
	assert.Equal(t, 250, stats.Businesses.ByMode[geo.ModeLocal])
	assert.Equal(t, 1, stats.Professionals.Total)
	assert.Equal(t, 1, stats.Professionals.Open)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStats_ListStillPaged(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT .+ FROM "businesses" AS "b" .+ ORDER BY b.created_at DESC LIMIT 50`).
		WillReturnError(sql.ErrConnDone)

	_, err := NewBusinessService(db).ListBusinesses(context.Background(), models.ListingQueryParams{})
	assert.ErrorIs(t, err, sql.ErrConnDone)
	assert.NoError(t, mock.ExpectationsWereMet())
}
