package postgres

import (
	"context"
	"testing"
	"time"

	"teenpay-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRefreshToken() *domain.RefreshToken {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.RefreshToken{
		ID:        uuid.New(),
		Token:     "opaque-token-value",
		UserID:    uuid.New(),
		CreatedAt: now,
		ExpiresAt: now.Add(14 * 24 * time.Hour),
	}
}

func refreshTokenRowColumns() []string {
	return []string{"id", "token", "user_id", "device_id", "created_at", "expires_at", "revoked"}
}

func TestRefreshTokenRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRefreshTokenRepo(mock)
	tok := newTestRefreshToken()

	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(tok.ID, tok.Token, tok.UserID, tok.DeviceID,
			tok.CreatedAt, tok.ExpiresAt, tok.Revoked).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), tok)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepo_GetByTokenForUpdate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRefreshTokenRepo(mock)
	tok := newTestRefreshToken()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token .+ FOR UPDATE").
		WithArgs(tok.Token).
		WillReturnRows(pgxmock.NewRows(refreshTokenRowColumns()).AddRow(
			tok.ID, tok.Token, tok.UserID, tok.DeviceID,
			tok.CreatedAt, tok.ExpiresAt, tok.Revoked,
		))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByTokenForUpdate(context.Background(), tx, tok.Token)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, tok.UserID, result.UserID)
	assert.False(t, result.Revoked)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepo_GetByTokenForUpdate_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRefreshTokenRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM refresh_tokens WHERE token .+ FOR UPDATE").
		WithArgs("unknown").
		WillReturnRows(pgxmock.NewRows(refreshTokenRowColumns()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.GetByTokenForUpdate(context.Background(), tx, "unknown")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepo_Revoke(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRefreshTokenRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE refresh_tokens SET revoked").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Revoke(context.Background(), tx, id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshTokenRepo_RevokeByToken_UnknownIsNoOp(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewRefreshTokenRepo(mock)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked").
		WithArgs("never-issued").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.RevokeByToken(context.Background(), "never-issued")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
