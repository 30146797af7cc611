package service

import (
	"context"
	"testing"
	"time"

	"teenpay-backend/internal/core/domain"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type topupTestDeps struct {
	svc         *TopUpServiceImpl
	requestRepo *mocks.MockTopUpRequestRepository
	userRepo    *mocks.MockUserRepository
	familyRepo  *mocks.MockFamilyRepository
	ledger      *mocks.MockLedgerService
	transactor  *mocks.MockDBTransactor
	ctrl        *gomock.Controller
}

func setupTopUpService(t *testing.T) *topupTestDeps {
	ctrl := gomock.NewController(t)
	d := &topupTestDeps{
		requestRepo: mocks.NewMockTopUpRequestRepository(ctrl),
		userRepo:    mocks.NewMockUserRepository(ctrl),
		familyRepo:  mocks.NewMockFamilyRepository(ctrl),
		ledger:      mocks.NewMockLedgerService(ctrl),
		transactor:  mocks.NewMockDBTransactor(ctrl),
		ctrl:        ctrl,
	}
	d.svc = NewTopUpService(d.requestRepo, d.userRepo, d.familyRepo, d.ledger, d.transactor, zerolog.Nop())
	return d
}

func TestTopUpService_Create_Success(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	childID := uuid.New()
	parentID := uuid.New()
	note := "lunch money"

	d.familyRepo.EXPECT().ParentOf(ctx, childID).Return(&parentID, nil)
	d.requestRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	req, err := d.svc.Create(ctx, childID, &note)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, childID, req.ChildID)
	assert.Equal(t, parentID, req.ParentID)
	assert.Equal(t, domain.TopUpStatusPending, req.Status)
	require.NotNil(t, req.Note)
	assert.Equal(t, "lunch money", *req.Note)
	assert.Nil(t, req.ApprovedAt)
}

func TestTopUpService_Create_NoLinkedParent(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	childID := uuid.New()

	d.familyRepo.EXPECT().ParentOf(ctx, childID).Return(nil, nil)

	_, err := d.svc.Create(ctx, childID, nil)
	assertAppError(t, err, "parent_not_linked")
}

func TestTopUpService_Inbox_ResolvesChildNames(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	parentID := uuid.New()
	child1 := uuid.New()
	child2 := uuid.New()
	now := time.Now().UTC()

	d.requestRepo.EXPECT().ListPendingByParent(ctx, parentID).Return([]domain.TopUpRequest{
		{ID: uuid.New(), ChildID: child1, ParentID: parentID, Status: domain.TopUpStatusPending, RequestedAt: now},
		{ID: uuid.New(), ChildID: child2, ParentID: parentID, Status: domain.TopUpStatusPending, RequestedAt: now.Add(-time.Hour)},
	}, nil)
	d.userRepo.EXPECT().ListByIDs(ctx, []uuid.UUID{child1, child2}).Return([]domain.User{
		{ID: child1, Username: "alice"},
		{ID: child2, Username: "bob"},
	}, nil)

	items, err := d.svc.Inbox(ctx, parentID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alice", items[0].ChildUsername)
	assert.Equal(t, "bob", items[1].ChildUsername)
}

func TestTopUpService_Inbox_Empty(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	parentID := uuid.New()

	d.requestRepo.EXPECT().ListPendingByParent(ctx, parentID).Return(nil, nil)

	items, err := d.svc.Inbox(ctx, parentID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestTopUpService_Approve_Success(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	parentID := uuid.New()
	childID := uuid.New()
	requestID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.requestRepo.EXPECT().GetByIDForUpdate(ctx, tx, requestID).Return(&domain.TopUpRequest{
		ID:       requestID,
		ChildID:  childID,
		ParentID: parentID,
		Status:   domain.TopUpStatusPending,
	}, nil)
	d.ledger.EXPECT().TransferInTx(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, req ports.TransferRequest) (*ports.TransferResult, error) {
			assert.Equal(t, parentID, req.PayerID)
			assert.Equal(t, childID, req.PayeeID)
			assert.Equal(t, int64(2_000), req.AmountCents)
			assert.Equal(t, domain.TransactionKindTopup, req.Kind)
			return &ports.TransferResult{PayerBalance: 8_000, PayeeBalance: 2_000}, nil
		})
	d.requestRepo.EXPECT().MarkApproved(ctx, tx, requestID, gomock.Any()).Return(nil)

	result, err := d.svc.Approve(ctx, parentID, requestID, 2_000)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(8_000), result.PayerBalance)
	assert.Equal(t, int64(2_000), result.PayeeBalance)
}

func TestTopUpService_Approve_InvalidAmount(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Approve(context.Background(), uuid.New(), uuid.New(), 0)
	assertAppError(t, err, "invalid_amount")
}

func TestTopUpService_Approve_NotFound(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	requestID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.requestRepo.EXPECT().GetByIDForUpdate(ctx, tx, requestID).Return(nil, nil)

	_, err := d.svc.Approve(ctx, uuid.New(), requestID, 500)
	assertAppError(t, err, "not_found")
}

func TestTopUpService_Approve_WrongParent(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	requestID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.requestRepo.EXPECT().GetByIDForUpdate(ctx, tx, requestID).Return(&domain.TopUpRequest{
		ID:       requestID,
		ParentID: uuid.New(), // someone else's child
		Status:   domain.TopUpStatusPending,
	}, nil)

	_, err := d.svc.Approve(ctx, uuid.New(), requestID, 500)
	assertAppError(t, err, "forbidden")
}

func TestTopUpService_Approve_AlreadyApproved(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	parentID := uuid.New()
	requestID := uuid.New()
	tx := &mockTx{}

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.requestRepo.EXPECT().GetByIDForUpdate(ctx, tx, requestID).Return(&domain.TopUpRequest{
		ID:       requestID,
		ParentID: parentID,
		Status:   domain.TopUpStatusApproved,
	}, nil)

	_, err := d.svc.Approve(ctx, parentID, requestID, 500)
	assertAppError(t, err, "not_pending")
}

func TestTopUpService_TopUpChild_Success(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	parentID := uuid.New()
	childID := uuid.New()

	d.familyRepo.EXPECT().IsLinked(ctx, parentID, childID).Return(true, nil)
	d.ledger.EXPECT().Transfer(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
			assert.Equal(t, parentID, req.PayerID)
			assert.Equal(t, childID, req.PayeeID)
			assert.Equal(t, domain.TransactionKindTopup, req.Kind)
			return &ports.TransferResult{PayerBalance: 500, PayeeBalance: 1_500}, nil
		})

	result, err := d.svc.TopUpChild(ctx, parentID, childID, 1_000)
	require.NoError(t, err)
	assert.Equal(t, int64(500), result.PayerBalance)
	assert.Equal(t, int64(1_500), result.PayeeBalance)
}

func TestTopUpService_TopUpChild_NotLinked(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	parentID := uuid.New()
	childID := uuid.New()

	d.familyRepo.EXPECT().IsLinked(ctx, parentID, childID).Return(false, nil)

	_, err := d.svc.TopUpChild(ctx, parentID, childID, 1_000)
	assertAppError(t, err, "not_linked_to_child")
}

func TestTopUpService_TopUpChild_InvalidAmount(t *testing.T) {
	d := setupTopUpService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.TopUpChild(context.Background(), uuid.New(), uuid.New(), -1)
	assertAppError(t, err, "invalid_amount")
}
