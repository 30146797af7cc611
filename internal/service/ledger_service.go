package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teenpay-backend/internal/core/domain"
	"teenpay-backend/internal/core/ports"
	"teenpay-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// receiptDrawAttempts bounds retries on receipt number collisions.
const receiptDrawAttempts = 5

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	userRepo    ports.UserRepository
	txnRepo     ports.TransactionRepository
	receiptRepo ports.ReceiptRepository
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	userRepo ports.UserRepository,
	txnRepo ports.TransactionRepository,
	receiptRepo ports.ReceiptRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		userRepo:    userRepo,
		txnRepo:     txnRepo,
		receiptRepo: receiptRepo,
		transactor:  transactor,
		log:         log,
	}
}

// Transfer moves money between two accounts in its own database
// transaction. All writes commit together or none do.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*ports.TransferResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	result, err := s.TransferInTx(ctx, dbTx, req)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return result, nil
}

// TransferInTx runs the movement inside a caller-owned transaction.
// The caller commits; any error here means nothing was applied once
// the caller rolls back.
func (s *LedgerServiceImpl) TransferInTx(ctx context.Context, dbTx pgx.Tx, req ports.TransferRequest) (*ports.TransferResult, error) {
	if req.AmountCents <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.PayerID == req.PayeeID {
		return nil, apperror.Validation("payer and payee must differ")
	}

	payer, payee, err := s.lockPair(ctx, dbTx, req.PayerID, req.PayeeID)
	if err != nil {
		return nil, err
	}

	// Sufficient-funds check against the locked row.
	if payer.BalanceCents < req.AmountCents {
		return nil, apperror.ErrInsufficientFunds()
	}

	payerBalance := payer.BalanceCents - req.AmountCents
	payeeBalance := payee.BalanceCents + req.AmountCents

	if err := s.userRepo.UpdateBalance(ctx, dbTx, payer.ID, payerBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("debit payer: %w", err))
	}
	if err := s.userRepo.UpdateBalance(ctx, dbTx, payee.ID, payeeBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("credit payee: %w", err))
	}

	now := time.Now().UTC()

	payerTxn := &domain.Transaction{
		ID:             uuid.New(),
		UserID:         payer.ID,
		AmountCents:    -req.AmountCents,
		Kind:           req.Kind,
		Description:    req.PayerNote,
		CounterpartyID: payee.ID,
		SchoolID:       req.SchoolID,
		CreatedAt:      now,
	}
	payeeTxn := &domain.Transaction{
		ID:             uuid.New(),
		UserID:         payee.ID,
		AmountCents:    req.AmountCents,
		Kind:           req.Kind,
		Description:    req.PayeeNote,
		CounterpartyID: payer.ID,
		SchoolID:       req.SchoolID,
		CreatedAt:      now,
	}

	if err := s.txnRepo.Create(ctx, dbTx, payerTxn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append payer leg: %w", err))
	}
	if err := s.txnRepo.Create(ctx, dbTx, payeeTxn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("append payee leg: %w", err))
	}

	payerReceipt, err := s.issueReceipt(ctx, dbTx, req, payer.ID, payee.ID, now)
	if err != nil {
		return nil, err
	}
	payeeReceipt, err := s.issueReceipt(ctx, dbTx, req, payer.ID, payee.ID, now)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("payer_id", payer.ID.String()).
		Str("payee_id", payee.ID.String()).
		Int64("amount_cents", req.AmountCents).
		Str("kind", string(req.Kind)).
		Str("payer_receipt", payerReceipt.ReceiptNo).
		Str("payee_receipt", payeeReceipt.ReceiptNo).
		Msg("transfer settled")

	return &ports.TransferResult{
		PayerTxn:     payerTxn,
		PayeeTxn:     payeeTxn,
		PayerReceipt: payerReceipt,
		PayeeReceipt: payeeReceipt,
		PayerBalance: payerBalance,
		PayeeBalance: payeeBalance,
	}, nil
}

// lockPair locks both user rows FOR UPDATE in deterministic ID order
// so two transfers over the same pair cannot deadlock.
func (s *LedgerServiceImpl) lockPair(ctx context.Context, dbTx pgx.Tx, payerID, payeeID uuid.UUID) (payer, payee *domain.User, err error) {
	first, second := payerID, payeeID
	if second.String() < first.String() {
		first, second = second, first
	}

	a, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, first)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	b, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, second)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("lock account: %w", err))
	}
	if a == nil || b == nil {
		return nil, nil, apperror.ErrAccountNotFound()
	}

	if a.ID == payerID {
		return a, b, nil
	}
	return b, a, nil
}

// issueReceipt allocates a unique receipt number, retrying on a
// duplicate draw, and persists the receipt for one leg.
func (s *LedgerServiceImpl) issueReceipt(ctx context.Context, dbTx pgx.Tx, req ports.TransferRequest, payerID, payeeID uuid.UUID, now time.Time) (*domain.Receipt, error) {
	for attempt := 0; attempt < receiptDrawAttempts; attempt++ {
		no, err := domain.NewReceiptNo()
		if err != nil {
			return nil, apperror.InternalError(err)
		}

		receipt := &domain.Receipt{
			ID:          uuid.New(),
			ReceiptNo:   no,
			AmountCents: req.AmountCents,
			Kind:        req.Kind,
			PayerUserID: payerID,
			PayeeUserID: payeeID,
			SchoolID:    req.SchoolID,
			CreatedAt:   now,
		}

		// A unique violation aborts the enclosing transaction, so each
		// draw runs under a savepoint that can be rolled back alone.
		sp, err := dbTx.Begin(ctx)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("savepoint: %w", err))
		}

		err = s.receiptRepo.Create(ctx, sp, receipt)
		if err == nil {
			if err := sp.Commit(ctx); err != nil {
				return nil, apperror.InternalError(fmt.Errorf("release savepoint: %w", err))
			}
			return receipt, nil
		}
		_ = sp.Rollback(ctx)

		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "duplicate_receipt_no" {
			s.log.Warn().Str("receipt_no", no).Int("attempt", attempt+1).Msg("receipt number collision, redrawing")
			continue
		}
		return nil, apperror.InternalError(fmt.Errorf("persist receipt: %w", err))
	}
	return nil, apperror.InternalError(fmt.Errorf("receipt number space exhausted after %d draws", receiptDrawAttempts))
}
