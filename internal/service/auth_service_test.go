package service

import (
	"context"
	"testing"
	"time"

	"teenpay-backend/internal/core/domain"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc        *AuthServiceImpl
	userRepo   *mocks.MockUserRepository
	tokenRepo  *mocks.MockRefreshTokenRepository
	hashSvc    *mocks.MockHashService
	tokenSvc   *mocks.MockTokenService
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		userRepo:   mocks.NewMockUserRepository(ctrl),
		tokenRepo:  mocks.NewMockRefreshTokenRepository(ctrl),
		hashSvc:    mocks.NewMockHashService(ctrl),
		tokenSvc:   mocks.NewMockTokenService(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewAuthService(
		d.userRepo, d.tokenRepo, d.hashSvc, d.tokenSvc,
		d.transactor, 14*24*time.Hour, zerolog.Nop(),
	)
	return d
}

func strPtr(s string) *string { return &s }

// ==================== Register ====================

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret").Return("$argon2id$...", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, u *domain.User) error {
			assert.Equal(t, "alice", u.Username)
			assert.Equal(t, "$argon2id$...", u.PasswordHash)
			assert.Equal(t, domain.RoleChild, u.Role)
			assert.Zero(t, u.BalanceCents)
			return nil
		})

	user, err := d.svc.Register(ctx, ports.RegisterRequest{
		Username: "alice",
		Password: "s3cret",
	})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, domain.RoleChild, user.Role)
}

func TestAuthService_Register_ExplicitRole(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.userRepo.EXPECT().GetByUsername(ctx, "dad").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret").Return("digest", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	user, err := d.svc.Register(ctx, ports.RegisterRequest{
		Username: "dad",
		Password: "s3cret",
		Role:     domain.RoleParent,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleParent, user.Role)
}

func TestAuthService_Register_UnknownRole(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Register(context.Background(), ports.RegisterRequest{
		Username: "x",
		Password: "y",
		Role:     domain.Role("WIZARD"),
	})
	assertAppError(t, err, "validation_error")
}

func TestAuthService_Register_MissingCredentials(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Register(context.Background(), ports.RegisterRequest{Username: "alice"})
	assertAppError(t, err, "validation_error")
}

func TestAuthService_Register_UsernameTaken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.User{ID: uuid.New()}, nil)

	_, err := d.svc.Register(ctx, ports.RegisterRequest{Username: "alice", Password: "pw"})
	assertAppError(t, err, "username_taken")
}

// ==================== Login ====================

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	user := &domain.User{ID: userID, Username: "alice", PasswordHash: "digest", Role: domain.RoleChild}
	deviceID := strPtr("device-1")

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("s3cret", "digest").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(user).Return("access.jwt", time.Now().Add(time.Hour), nil)
	d.tokenRepo.EXPECT().Create(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, rt *domain.RefreshToken) error {
			assert.Equal(t, userID, rt.UserID)
			assert.Equal(t, "device-1", *rt.DeviceID)
			assert.False(t, rt.Revoked)
			assert.Len(t, rt.Token, 43) // 32 random bytes, base64url
			return nil
		})

	session, err := d.svc.Login(ctx, ports.LoginRequest{
		Username: "alice",
		Password: "s3cret",
		DeviceID: deviceID,
	})
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "access.jwt", session.AccessToken)
	assert.NotEmpty(t, session.RefreshToken)
	assert.InDelta(t, 3600, session.ExpiresIn, 5)
	assert.Equal(t, user, session.User)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)

	_, err := d.svc.Login(ctx, ports.LoginRequest{Username: "ghost", Password: "pw"})
	assertAppError(t, err, "invalid_credentials")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{ID: uuid.New(), Username: "alice", PasswordHash: "digest"}

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("wrong", "digest").Return(false, nil)

	_, err := d.svc.Login(ctx, ports.LoginRequest{Username: "alice", Password: "wrong"})
	assertAppError(t, err, "invalid_credentials")
}

// ==================== Refresh ====================

func TestAuthService_Refresh_RotatesToken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	storedID := uuid.New()
	tx := &mockTx{}
	user := &domain.User{ID: userID, Username: "alice", Role: domain.RoleChild}
	stored := &domain.RefreshToken{
		ID:        storedID,
		Token:     "old-token",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}

	var minted *domain.RefreshToken
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.tokenRepo.EXPECT().GetByTokenForUpdate(ctx, tx, "old-token").Return(stored, nil)
	d.userRepo.EXPECT().GetByID(ctx, userID).Return(user, nil)
	d.tokenRepo.EXPECT().Revoke(ctx, tx, storedID).Return(nil)
	d.tokenRepo.EXPECT().CreateInTx(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ any, rt *domain.RefreshToken) error {
			minted = rt
			return nil
		})
	d.tokenSvc.EXPECT().Generate(user).Return("access.jwt", time.Now().Add(time.Hour), nil)

	session, err := d.svc.Refresh(ctx, ports.RefreshRequest{RefreshToken: "old-token"})
	require.NoError(t, err)
	require.NotNil(t, session)
	require.NotNil(t, minted)
	assert.Equal(t, userID, minted.UserID)
	assert.NotEqual(t, "old-token", session.RefreshToken)
	assert.Equal(t, minted.Token, session.RefreshToken)
}

func TestAuthService_Refresh_UnknownToken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.tokenRepo.EXPECT().GetByTokenForUpdate(ctx, tx, "nope").Return(nil, nil)

	_, err := d.svc.Refresh(ctx, ports.RefreshRequest{RefreshToken: "nope"})
	assertAppError(t, err, "invalid_refresh_token")
}

func TestAuthService_Refresh_RevokedToken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.tokenRepo.EXPECT().GetByTokenForUpdate(ctx, tx, "old").Return(&domain.RefreshToken{
		ID:        uuid.New(),
		Token:     "old",
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(time.Hour),
		Revoked:   true,
	}, nil)

	_, err := d.svc.Refresh(ctx, ports.RefreshRequest{RefreshToken: "old"})
	assertAppError(t, err, "invalid_refresh_token")
}

func TestAuthService_Refresh_ExpiredToken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.tokenRepo.EXPECT().GetByTokenForUpdate(ctx, tx, "stale").Return(&domain.RefreshToken{
		ID:        uuid.New(),
		Token:     "stale",
		UserID:    uuid.New(),
		ExpiresAt: time.Now().Add(-time.Minute),
	}, nil)

	_, err := d.svc.Refresh(ctx, ports.RefreshRequest{RefreshToken: "stale"})
	assertAppError(t, err, "invalid_refresh_token")
}

func TestAuthService_Refresh_DeviceMismatch(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.tokenRepo.EXPECT().GetByTokenForUpdate(ctx, tx, "bound").Return(&domain.RefreshToken{
		ID:        uuid.New(),
		Token:     "bound",
		UserID:    uuid.New(),
		DeviceID:  strPtr("phone-A"),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	_, err := d.svc.Refresh(ctx, ports.RefreshRequest{
		RefreshToken: "bound",
		DeviceID:     strPtr("phone-B"),
	})
	assertAppError(t, err, "device_mismatch")
}

func TestAuthService_Refresh_DeviceMissing(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.tokenRepo.EXPECT().GetByTokenForUpdate(ctx, tx, "bound").Return(&domain.RefreshToken{
		ID:        uuid.New(),
		Token:     "bound",
		UserID:    uuid.New(),
		DeviceID:  strPtr("phone-A"),
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)

	_, err := d.svc.Refresh(ctx, ports.RefreshRequest{RefreshToken: "bound"})
	assertAppError(t, err, "device_mismatch")
}

func TestAuthService_Refresh_UnboundTokenAnyDevice(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	tx := &mockTx{}
	user := &domain.User{ID: userID, Username: "alice"}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.tokenRepo.EXPECT().GetByTokenForUpdate(ctx, tx, "free").Return(&domain.RefreshToken{
		ID:        uuid.New(),
		Token:     "free",
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil)
	d.userRepo.EXPECT().GetByID(ctx, userID).Return(user, nil)
	d.tokenRepo.EXPECT().Revoke(ctx, tx, gomock.Any()).Return(nil)
	d.tokenRepo.EXPECT().CreateInTx(ctx, tx, gomock.Any()).Return(nil)
	d.tokenSvc.EXPECT().Generate(user).Return("access.jwt", time.Now().Add(time.Hour), nil)

	_, err := d.svc.Refresh(ctx, ports.RefreshRequest{
		RefreshToken: "free",
		DeviceID:     strPtr("any-device"),
	})
	require.NoError(t, err)
}

// ==================== Logout ====================

func TestAuthService_Logout_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.tokenRepo.EXPECT().RevokeByToken(ctx, "some-token").Return(nil)

	require.NoError(t, d.svc.Logout(ctx, "some-token"))
}

func TestAuthService_Logout_IdempotentOnUnknownToken(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	// Repository treats unknown tokens as a no-op.
	d.tokenRepo.EXPECT().RevokeByToken(ctx, "never-issued").Return(nil)

	require.NoError(t, d.svc.Logout(ctx, "never-issued"))
}
