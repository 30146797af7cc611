package service

import (
	"context"
	"fmt"
	"time"

	"teenpay-backend/internal/core/domain"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo      ports.UserRepository
	tokenRepo     ports.RefreshTokenRepository
	hashSvc       ports.HashService
	tokenSvc      ports.TokenService
	transactor    ports.DBTransactor
	refreshExpiry time.Duration
	log           zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	tokenRepo ports.RefreshTokenRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	transactor ports.DBTransactor,
	refreshExpiry time.Duration,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		hashSvc:       hashSvc,
		tokenSvc:      tokenSvc,
		transactor:    transactor,
		refreshExpiry: refreshExpiry,
		log:           log,
	}
}

// Register creates a new account. The password is only ever stored as
// an argon2id digest.
func (s *AuthServiceImpl) Register(ctx context.Context, req ports.RegisterRequest) (*domain.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, apperror.Validation("username and password are required")
	}
	role := req.Role
	if role == "" {
		role = domain.RoleChild
	}
	if !domain.ValidRole(role) {
		return nil, apperror.Validation("unknown role")
	}

	existing, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameTaken()
	}

	digest, err := s.hashSvc.Hash(req.Password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     req.Username,
		PasswordHash: digest,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		BalanceCents: 0,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("account registered")
	return user, nil
}

// Login verifies credentials and opens a session: a signed access
// token plus a fresh refresh token bound to the account and device.
func (s *AuthServiceImpl) Login(ctx context.Context, req ports.LoginRequest) (*ports.Session, error) {
	user, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("find user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidCredentials()
	}

	valid, err := s.hashSvc.Verify(req.Password, user.PasswordHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !valid {
		return nil, apperror.ErrInvalidCredentials()
	}

	access, expiresAt, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate access token: %w", err))
	}

	refreshValue, err := domain.NewRefreshTokenValue()
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	now := time.Now().UTC()
	refresh := &domain.RefreshToken{
		ID:        uuid.New(),
		Token:     refreshValue,
		UserID:    user.ID,
		DeviceID:  req.DeviceID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshExpiry),
	}
	if err := s.tokenRepo.Create(ctx, refresh); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("persist refresh token: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("login succeeded")

	return &ports.Session{
		AccessToken:  access,
		RefreshToken: refreshValue,
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
		User:         user,
	}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and
// a replacement minted in the same transaction, so a stolen token
// replayed after rotation is already revoked.
func (s *AuthServiceImpl) Refresh(ctx context.Context, req ports.RefreshRequest) (*ports.Session, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	stored, err := s.tokenRepo.GetByTokenForUpdate(ctx, dbTx, req.RefreshToken)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load refresh token: %w", err))
	}
	if stored == nil || !stored.IsUsable(time.Now().UTC()) {
		return nil, apperror.ErrInvalidRefreshToken()
	}
	// A token bound to a device at login may only be refreshed from it.
	if stored.DeviceID != nil && (req.DeviceID == nil || *stored.DeviceID != *req.DeviceID) {
		return nil, apperror.ErrDeviceMismatch()
	}

	user, err := s.userRepo.GetByID(ctx, stored.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrInvalidRefreshToken()
	}

	if err := s.tokenRepo.Revoke(ctx, dbTx, stored.ID); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("revoke consumed token: %w", err))
	}

	replacementValue, err := domain.NewRefreshTokenValue()
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	now := time.Now().UTC()
	replacement := &domain.RefreshToken{
		ID:        uuid.New(),
		Token:     replacementValue,
		UserID:    stored.UserID,
		DeviceID:  stored.DeviceID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.refreshExpiry),
	}
	if err := s.tokenRepo.CreateInTx(ctx, dbTx, replacement); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mint replacement token: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	access, expiresAt, err := s.tokenSvc.Generate(user)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate access token: %w", err))
	}

	s.log.Info().Str("user_id", user.ID.String()).Msg("refresh token rotated")

	return &ports.Session{
		AccessToken:  access,
		RefreshToken: replacementValue,
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
		User:         user,
	}, nil
}

// Logout revokes the presented token. It is idempotent and succeeds
// even for unknown tokens so it cannot be used to probe validity.
func (s *AuthServiceImpl) Logout(ctx context.Context, refreshToken string) error {
	if err := s.tokenRepo.RevokeByToken(ctx, refreshToken); err != nil {
		return apperror.InternalError(fmt.Errorf("revoke token: %w", err))
	}
	return nil
}
