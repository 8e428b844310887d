package services

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"reachmesh-bknd/internal/apperr"
	"reachmesh-bknd/internal/auth"
	"reachmesh-bknd/internal/config"
	"reachmesh-bknd/internal/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T) (*AuthService, *auth.JWTManager, sqlmock.Sqlmock) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	jwtMgr := auth.NewJWTManagerFromKeys(key, &key.PublicKey, "reachmesh")

	db, mock := newMockDB(t)
	cfg := &config.Config{AccessTokenTTL: time.Minute, RefreshTokenTTL: time.Hour}
	return NewAuthService(db, jwtMgr, cfg, &logger.Logger{Logger: zap.NewNop()}), jwtMgr, mock
}

func expectStoredSession(mock sqlmock.Sqlmock, userID uuid.UUID) {
	mock.ExpectQuery(`SELECT .+ FROM "refresh_tokens" AS "rt" WHERE \(jti = `).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "jti"}).
			AddRow(uuid.NewString(), userID.String(), "old"))
	mock.ExpectQuery(`SELECT .+ FROM "users" AS "u"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "provider", "token_version"}).
			AddRow(userID.String(), "ama@example.com", "ldap", 4))
}

func TestRefresh_RotatesWithinSessionCap(t *testing.T) {
	svc, jwtMgr, mock := newAuthService(t)
	userID := uuid.New()
	old, err := jwtMgr.GenerateTokenPair(userID.String(), time.Minute, time.Hour, 4, "ldap", nil)
	require.NoError(t, err)

	mock.ExpectBegin()
	expectStoredSession(mock, userID)
	mock.ExpectExec(`UPDATE "refresh_tokens" AS "rt" SET revoked = true WHERE \(id = .+\) AND \(revoked = false\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "refresh_tokens" AS "rt" WHERE \(user_id = .+ AND expires_at < now\(\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "refresh_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(`DELETE FROM "refresh_tokens" AS "rt" WHERE \(id IN \(SELECT id FROM refresh_tokens .+ ORDER BY created_at ASC LIMIT 1\)\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "refresh_tokens"`).
		WillReturnRows(sqlmock.NewRows([]string{"device_info"}).AddRow(nil))
	mock.ExpectCommit()

	pair, err := svc.Refresh(context.Background(), old.RefreshToken, "")
	require.NoError(t, err)
	assert.NotEqual(t, old.JTI, pair.JTI)

	claims, err := jwtMgr.VerifyToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ldap", claims.AuthMethod)
	assert.Equal(t, 4, claims.TokenVersion)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefresh_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock, userID uuid.UUID)
		target error
	}{
		{
			name: "revoked or unknown token",
			expect: func(mock sqlmock.Sqlmock, _ uuid.UUID) {
				mock.ExpectBegin()
				mock.ExpectQuery(`SELECT .+ FROM "refresh_tokens"`).
					WillReturnRows(sqlmock.NewRows([]string{"id"}))
				mock.ExpectRollback()
			},
			target: apperr.ErrUnauthorized,
		},
		{
			name: "token already exchanged by a concurrent refresh",
			expect: func(mock sqlmock.Sqlmock, userID uuid.UUID) {
				mock.ExpectBegin()
				expectStoredSession(mock, userID)
				mock.ExpectExec(`UPDATE "refresh_tokens"`).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			target: apperr.ErrUnauthorized,
		},
		{
			name: "revoke fails",
			expect: func(mock sqlmock.Sqlmock, userID uuid.UUID) {
				mock.ExpectBegin()
				expectStoredSession(mock, userID)
				mock.ExpectExec(`UPDATE "refresh_tokens"`).WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, jwtMgr, mock := newAuthService(t)
			userID := uuid.New()
			old, err := jwtMgr.GenerateTokenPair(userID.String(), time.Minute, time.Hour, 0, "local", nil)
			require.NoError(t, err)
			tt.expect(mock, userID)

			pair, err := svc.Refresh(context.Background(), old.RefreshToken, "")
			require.Error(t, err)
			assert.Nil(t, pair)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			} else {
				assert.NotErrorIs(t, err, apperr.ErrUnauthorized)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	svc, jwtMgr, mock := newAuthService(t)
	pair, err := jwtMgr.GenerateTokenPair(uuid.NewString(), time.Minute, time.Hour, 0, "local", nil)
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), pair.AccessToken, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegister_Rejections(t *testing.T) {
	svc, _, mock := newAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "longenough"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	_, _, err = svc.Register(ctx, RegisterRequest{Email: "ama@example.com", Password: "short"})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	mock.ExpectQuery(`SELECT EXISTS \(SELECT .+ FROM "users" AS "u" WHERE \(lower\(email\) = 'ama@example.com'\)\)`).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	_, _, err = svc.Register(ctx, RegisterRequest{Email: " Ama@Example.com ", Password: "longenough"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}
