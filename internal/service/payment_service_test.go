package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"teenpay-backend/internal/core/domain"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/internal/core/ports/mocks"
	"teenpay-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type paymentTestDeps struct {
	svc        *PaymentServiceImpl
	userRepo   *mocks.MockUserRepository
	schoolRepo *mocks.MockSchoolRepository
	ledger     *mocks.MockLedgerService
	ctrl       *gomock.Controller
}

func setupPaymentService(t *testing.T) *paymentTestDeps {
	ctrl := gomock.NewController(t)
	d := &paymentTestDeps{
		userRepo:   mocks.NewMockUserRepository(ctrl),
		schoolRepo: mocks.NewMockSchoolRepository(ctrl),
		ledger:     mocks.NewMockLedgerService(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewPaymentService(d.userRepo, d.schoolRepo, d.ledger, zerolog.Nop())
	return d
}

func qrPayloadJSON(t *testing.T, userID uuid.UUID, amount *int64, orgCode string) string {
	t.Helper()
	raw, err := json.Marshal(ports.QRPayload{UserID: userID, Amount: amount, OrgCode: orgCode})
	require.NoError(t, err)
	return string(raw)
}

func int64Ptr(v int64) *int64 { return &v }

func TestPaymentService_PayByQR_Success(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payerID := uuid.New()
	terminalID := uuid.New()
	schoolID := uuid.New()

	payer := &domain.User{ID: payerID, Username: "student1", BalanceCents: 5_000}
	school := &domain.School{ID: schoolID, Code: "GYM-01", Name: "City Gymnasium", PosUserID: &terminalID}

	d.userRepo.EXPECT().GetByID(ctx, payerID).Return(payer, nil)
	d.schoolRepo.EXPECT().GetByCode(ctx, "GYM-01").Return(school, nil)
	d.schoolRepo.EXPECT().IsAffiliated(ctx, payerID, schoolID).Return(true, nil)
	d.ledger.EXPECT().Transfer(ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
			assert.Equal(t, payerID, req.PayerID)
			assert.Equal(t, terminalID, req.PayeeID)
			assert.Equal(t, int64(1_200), req.AmountCents)
			assert.Equal(t, domain.TransactionKindPayment, req.Kind)
			require.NotNil(t, req.SchoolID)
			assert.Equal(t, schoolID, *req.SchoolID)
			return &ports.TransferResult{
				PayerReceipt: &domain.Receipt{ReceiptNo: "00112233"},
				PayeeReceipt: &domain.Receipt{ReceiptNo: "44556677"},
				PayerBalance: 3_800,
				PayeeBalance: 1_200,
			}, nil
		})

	result, err := d.svc.PayByQR(ctx, terminalID, qrPayloadJSON(t, payerID, int64Ptr(1_200), "GYM-01"))
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "SUCCEEDED", result.Status)
	assert.Equal(t, int64(1_200), result.AmountCents)
	assert.Equal(t, int64(3_800), result.PayerBalance)
	assert.Equal(t, int64(1_200), result.TerminalBalance)
	assert.Equal(t, "00112233", result.PayerReceiptNo)
	assert.Equal(t, "44556677", result.PayeeReceiptNo)
	assert.Equal(t, "GYM-01", result.SchoolCode)
}

func TestPaymentService_PayByQR_MalformedPayload(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.PayByQR(context.Background(), uuid.New(), "{not json")
	assertAppError(t, err, "invalid_payload")
}

func TestPaymentService_PayByQR_MissingSchoolCode(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	payload := qrPayloadJSON(t, uuid.New(), int64Ptr(500), "")
	_, err := d.svc.PayByQR(context.Background(), uuid.New(), payload)
	assertAppError(t, err, "schoolcode_required")
}

func TestPaymentService_PayByQR_MissingAmount(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	payload := qrPayloadJSON(t, uuid.New(), nil, "GYM-01")
	_, err := d.svc.PayByQR(context.Background(), uuid.New(), payload)
	assertAppError(t, err, "invalid_amount")
}

func TestPaymentService_PayByQR_NegativeAmount(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	payload := qrPayloadJSON(t, uuid.New(), int64Ptr(-50), "GYM-01")
	_, err := d.svc.PayByQR(context.Background(), uuid.New(), payload)
	assertAppError(t, err, "invalid_amount")
}

func TestPaymentService_PayByQR_PayerNotFound(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payerID := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, payerID).Return(nil, nil)

	_, err := d.svc.PayByQR(ctx, uuid.New(), qrPayloadJSON(t, payerID, int64Ptr(500), "GYM-01"))
	assertAppError(t, err, "person_not_found")
}

func TestPaymentService_PayByQR_SchoolNotFound(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payerID := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, payerID).Return(&domain.User{ID: payerID}, nil)
	d.schoolRepo.EXPECT().GetByCode(ctx, "NOPE").Return(nil, nil)

	_, err := d.svc.PayByQR(ctx, uuid.New(), qrPayloadJSON(t, payerID, int64Ptr(500), "NOPE"))
	assertAppError(t, err, "school_not_found")
}

func TestPaymentService_PayByQR_NotAffiliated(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payerID := uuid.New()
	schoolID := uuid.New()
	terminalID := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, payerID).Return(&domain.User{ID: payerID}, nil)
	d.schoolRepo.EXPECT().GetByCode(ctx, "GYM-01").Return(&domain.School{
		ID: schoolID, Code: "GYM-01", PosUserID: &terminalID,
	}, nil)
	d.schoolRepo.EXPECT().IsAffiliated(ctx, payerID, schoolID).Return(false, nil)

	_, err := d.svc.PayByQR(ctx, terminalID, qrPayloadJSON(t, payerID, int64Ptr(500), "GYM-01"))
	assertAppError(t, err, "not_linked_to_school")
}

func TestPaymentService_PayByQR_SchoolHasNoTerminal(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payerID := uuid.New()
	schoolID := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, payerID).Return(&domain.User{ID: payerID}, nil)
	d.schoolRepo.EXPECT().GetByCode(ctx, "GYM-01").Return(&domain.School{
		ID: schoolID, Code: "GYM-01", PosUserID: nil,
	}, nil)
	d.schoolRepo.EXPECT().IsAffiliated(ctx, payerID, schoolID).Return(true, nil)

	_, err := d.svc.PayByQR(ctx, uuid.New(), qrPayloadJSON(t, payerID, int64Ptr(500), "GYM-01"))
	assertAppError(t, err, "school_has_no_pos")
}

func TestPaymentService_PayByQR_TerminalFromAnotherSchool(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payerID := uuid.New()
	schoolID := uuid.New()
	boundTerminal := uuid.New()
	actingTerminal := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, payerID).Return(&domain.User{ID: payerID}, nil)
	d.schoolRepo.EXPECT().GetByCode(ctx, "GYM-01").Return(&domain.School{
		ID: schoolID, Code: "GYM-01", PosUserID: &boundTerminal,
	}, nil)
	d.schoolRepo.EXPECT().IsAffiliated(ctx, payerID, schoolID).Return(true, nil)

	_, err := d.svc.PayByQR(ctx, actingTerminal, qrPayloadJSON(t, payerID, int64Ptr(500), "GYM-01"))
	assertAppError(t, err, "school_mismatch")
}

func TestPaymentService_PayByQR_InsufficientFundsPropagates(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	payerID := uuid.New()
	schoolID := uuid.New()
	terminalID := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, payerID).Return(&domain.User{ID: payerID}, nil)
	d.schoolRepo.EXPECT().GetByCode(ctx, "GYM-01").Return(&domain.School{
		ID: schoolID, Code: "GYM-01", PosUserID: &terminalID,
	}, nil)
	d.schoolRepo.EXPECT().IsAffiliated(ctx, payerID, schoolID).Return(true, nil)
	d.ledger.EXPECT().Transfer(ctx, gomock.Any()).Return(nil, apperror.ErrInsufficientFunds())

	_, err := d.svc.PayByQR(ctx, terminalID, qrPayloadJSON(t, payerID, int64Ptr(500), "GYM-01"))
	assertAppError(t, err, "insufficient_funds")
}

func TestPaymentService_GenerateQR_Success(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, userID).Return(&domain.User{ID: userID, Username: "student1"}, nil)

	png, err := d.svc.GenerateQR(ctx, userID, int64Ptr(1_500), "GYM-01")
	require.NoError(t, err)
	require.NotEmpty(t, png)
	// PNG magic bytes.
	assert.True(t, bytes.HasPrefix(png, []byte{0x89, 'P', 'N', 'G'}))
}

func TestPaymentService_GenerateQR_BlankAmount(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, userID).Return(&domain.User{ID: userID}, nil)

	png, err := d.svc.GenerateQR(ctx, userID, nil, "")
	require.NoError(t, err)
	require.NotEmpty(t, png)
}

func TestPaymentService_GenerateQR_UserNotFound(t *testing.T) {
	d := setupPaymentService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()

	d.userRepo.EXPECT().GetByID(ctx, userID).Return(nil, nil)

	_, err := d.svc.GenerateQR(ctx, userID, nil, "")
	assertAppError(t, err, "person_not_found")
}
