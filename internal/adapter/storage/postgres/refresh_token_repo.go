package postgres

import (
	"context"
	"errors"
	"fmt"

	"teenpay-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const refreshTokenColumns = `id, token, user_id, device_id, created_at, expires_at, revoked`

// RefreshTokenRepo implements ports.RefreshTokenRepository.
type RefreshTokenRepo struct {
	pool Pool
}

// NewRefreshTokenRepo creates a new RefreshTokenRepo.
func NewRefreshTokenRepo(pool Pool) *RefreshTokenRepo {
	return &RefreshTokenRepo{pool: pool}
}

const insertRefreshToken = `INSERT INTO refresh_tokens (id, token, user_id, device_id, created_at, expires_at, revoked)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Create inserts a refresh token outside a transaction (login path).
func (r *RefreshTokenRepo) Create(ctx context.Context, t *domain.RefreshToken) error {
	_, err := r.pool.Exec(ctx, insertRefreshToken,
		t.ID, t.Token, t.UserID, t.DeviceID, t.CreatedAt, t.ExpiresAt, t.Revoked,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// CreateInTx inserts a refresh token within a transaction (rotation
// path).
func (r *RefreshTokenRepo) CreateInTx(ctx context.Context, tx pgx.Tx, t *domain.RefreshToken) error {
	_, err := tx.Exec(ctx, insertRefreshToken,
		t.ID, t.Token, t.UserID, t.DeviceID, t.CreatedAt, t.ExpiresAt, t.Revoked,
	)
	if err != nil {
		return fmt.Errorf("insert refresh token in tx: %w", err)
	}
	return nil
}

// GetByTokenForUpdate fetches a token by its value with pessimistic
// locking, so two concurrent rotations of the same token serialize.
func (r *RefreshTokenRepo) GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*domain.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE token = $1 FOR UPDATE`

	t := &domain.RefreshToken{}
	err := tx.QueryRow(ctx, query, token).Scan(
		&t.ID, &t.Token, &t.UserID, &t.DeviceID, &t.CreatedAt, &t.ExpiresAt, &t.Revoked,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get refresh token for update: %w", err)
	}
	return t, nil
}

// Revoke marks a token revoked within a transaction.
func (r *RefreshTokenRepo) Revoke(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE id = $1`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("refresh token not found: %s", id)
	}
	return nil
}

// RevokeByToken marks a token revoked by its value. Unknown tokens are
// a no-op, which keeps logout idempotent.
func (r *RefreshTokenRepo) RevokeByToken(ctx context.Context, token string) error {
	query := `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`

	if _, err := r.pool.Exec(ctx, query, token); err != nil {
		return fmt.Errorf("revoke refresh token by value: %w", err)
	}
	return nil
}
