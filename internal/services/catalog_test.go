package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/cache"
	"reachmesh-bknd/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func newMockDB(t *testing.T) (*bun.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := bun.NewDB(sqldb, pgdialect.New())
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func newMiniCache(t *testing.T) *cache.Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.New(client, "test", time.Minute)
}

func TestCatalog_PlansAreCached(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCatalogService(db, newMiniCache(t))

	basic, pro := uuid.New(), uuid.New()
	rows := sqlmock.NewRows([]string{"id", "name", "price", "interval", "is_active"}).
		AddRow(basic.String(), "Basic", 0.0, "month", true).
		AddRow(pro.String(), "Pro", 9.99, "month", true)
	mock.ExpectQuery(`SELECT .+ FROM "plans" AS "plan" WHERE \(is_active = TRUE\)`).
		WillReturnRows(rows)

	first, err := svc.Plans(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, basic, first[0].ID)
	assert.Equal(t, "Pro", first[1].Name)

	second, err := svc.Plans(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_WithoutCacheQueriesEveryTime(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCatalogService(db, nil)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`SELECT .+ FROM "business_types"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(uuid.NewString(), "Bakery"))
	}

	for i := 0; i < 2; i++ {
		items, err := svc.BusinessTypes(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Bakery", items[0].Name)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalog_QueryErrorIsNotCached(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewCatalogService(db, newMiniCache(t))

	mock.ExpectQuery(`SELECT .+ FROM "profession_types"`).WillReturnError(errors.New("connection reset"))
	mock.ExpectQuery(`SELECT .+ FROM "profession_types"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(uuid.NewString(), "Electrician"))

	_, err := svc.ProfessionTypes(context.Background())
	require.Error(t, err)

	items, err := svc.ProfessionTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Electrician", items[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidationFailsBeforeTouchingTheDatabase(t *testing.T) {
	db, mock := newMockDB(t)
	ctx := context.Background()
	userID := uuid.New()
	other := uuid.New()

	_, err := NewSavedService(db).Save(ctx, userID, models.SaveItemRequest{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = NewSavedService(db).Save(ctx, userID, models.SaveItemRequest{BusinessID: &other, ProductID: &other})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = NewMessageService(db).Send(ctx, userID, models.SendMessageRequest{RecipientID: other, Body: "  "})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = NewPostService(db).CreatePost(ctx, userID, models.CreatePostRequest{})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = NewPostService(db).CreatePost(ctx, userID, models.CreatePostRequest{Content: "hi", BusinessID: &other, ProfessionalID: &other})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = NewBusinessService(db).CreateBusiness(ctx, userID, models.BusinessRequest{Name: ""})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	lat := 5.0
	_, err = NewProfessionalService(db).CreateProfessional(ctx, userID, models.ProfessionalRequest{Name: "Ama", Title: "Nurse", Latitude: &lat})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, err = NewProductService(db).CreateProduct(ctx, userID, other, models.ProductRequest{Name: "Bread", Price: -1})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBusiness_DeleteMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`DELETE FROM "businesses"`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewBusinessService(db).DeleteBusiness(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotification_MarkAllRead(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`UPDATE "notifications" AS "n" SET read = TRUE`).WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := NewNotificationService(db).MarkAllRead(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}
