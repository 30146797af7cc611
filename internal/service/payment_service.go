package service

import (
	"context"
	"encoding/json"
	"fmt"

	"teenpay-backend/internal/core/domain"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	userRepo   ports.UserRepository
	schoolRepo ports.SchoolRepository
	ledger     ports.LedgerService
	log        zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	userRepo ports.UserRepository,
	schoolRepo ports.SchoolRepository,
	ledger ports.LedgerService,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		userRepo:   userRepo,
		schoolRepo: schoolRepo,
		ledger:     ledger,
		log:        log,
	}
}

// PayByQR validates a scanned payload and settles the payment.
// The checks short-circuit in a fixed order; the acting terminal comes
// from the authenticated principal, never from the payload.
func (s *PaymentServiceImpl) PayByQR(ctx context.Context, terminalID uuid.UUID, rawPayload string) (*ports.QRPaymentResult, error) {
	var payload ports.QRPayload
	if err := json.Unmarshal([]byte(rawPayload), &payload); err != nil {
		return nil, apperror.ErrInvalidPayload()
	}

	if payload.OrgCode == "" {
		return nil, apperror.ErrSchoolCodeRequired()
	}
	if payload.Amount == nil || *payload.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	payer, err := s.userRepo.GetByID(ctx, payload.UserID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve payer: %w", err))
	}
	if payer == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	school, err := s.schoolRepo.GetByCode(ctx, payload.OrgCode)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve school: %w", err))
	}
	if school == nil {
		return nil, apperror.ErrSchoolNotFound()
	}

	linked, err := s.schoolRepo.IsAffiliated(ctx, payer.ID, school.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check affiliation: %w", err))
	}
	if !linked {
		return nil, apperror.ErrNotLinkedToSchool()
	}

	if !school.HasTerminal() {
		return nil, apperror.ErrSchoolHasNoPOS()
	}
	// A terminal may only settle payments for the school it is bound to,
	// regardless of what the QR payload claims.
	if *school.PosUserID != terminalID {
		return nil, apperror.ErrSchoolMismatch()
	}

	schoolID := school.ID
	result, err := s.ledger.Transfer(ctx, ports.TransferRequest{
		PayerID:     payer.ID,
		PayeeID:     *school.PosUserID,
		AmountCents: *payload.Amount,
		Kind:        domain.TransactionKindPayment,
		PayerNote:   fmt.Sprintf("Payment to %s (%s)", school.Name, school.Code),
		PayeeNote:   fmt.Sprintf("Income from %s (%s)", payer.Username, school.Code),
		SchoolID:    &schoolID,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("payer_id", payer.ID.String()).
		Str("terminal_id", terminalID.String()).
		Str("school_code", school.Code).
		Int64("amount_cents", *payload.Amount).
		Msg("qr payment settled")

	return &ports.QRPaymentResult{
		Status:          "SUCCEEDED",
		AmountCents:     *payload.Amount,
		PayerBalance:    result.PayerBalance,
		TerminalBalance: result.PayeeBalance,
		PayerReceiptNo:  result.PayerReceipt.ReceiptNo,
		PayeeReceiptNo:  result.PayeeReceipt.ReceiptNo,
		SchoolCode:      school.Code,
	}, nil
}

// GenerateQR renders a presentation QR code for the given user.
// Amount and school code may be left blank; the terminal fills them in
// on scan.
func (s *PaymentServiceImpl) GenerateQR(ctx context.Context, userID uuid.UUID, amountCents *int64, orgCode string) ([]byte, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrAccountNotFound()
	}

	payload := ports.QRPayload{
		UserID:  user.ID,
		Amount:  amountCents,
		OrgCode: orgCode,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("encode payload: %w", err))
	}

	png, err := qrcode.Encode(string(raw), qrcode.Medium, qrImageSize)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("render qr: %w", err))
	}
	return png, nil
}
