package service

import (
	"context"
	"fmt"

	"teenpay-backend/internal/core/ports"
	"teenpay-backend/pkg/apperror"

	"github.com/google/uuid"
)

// ReportingServiceImpl implements ports.ReportingService.
type ReportingServiceImpl struct {
	userRepo    ports.UserRepository
	txnRepo     ports.TransactionRepository
	receiptRepo ports.ReceiptRepository
	schoolRepo  ports.SchoolRepository
}

// NewReportingService creates a new ReportingServiceImpl.
func NewReportingService(
	userRepo ports.UserRepository,
	txnRepo ports.TransactionRepository,
	receiptRepo ports.ReceiptRepository,
	schoolRepo ports.SchoolRepository,
) *ReportingServiceImpl {
	return &ReportingServiceImpl{
		userRepo:    userRepo,
		txnRepo:     txnRepo,
		receiptRepo: receiptRepo,
		schoolRepo:  schoolRepo,
	}
}

// GetBalance returns the user's current balance.
func (s *ReportingServiceImpl) GetBalance(ctx context.Context, userID uuid.UUID) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return 0, apperror.ErrAccountNotFound()
	}
	return user.BalanceCents, nil
}

// ListReceipts returns the caller's receipts, newest first, with payer,
// payee, and school names resolved for display.
func (s *ReportingServiceImpl) ListReceipts(ctx context.Context, userID uuid.UUID) ([]ports.ReceiptView, error) {
	receipts, err := s.receiptRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list receipts: %w", err))
	}
	if len(receipts) == 0 {
		return []ports.ReceiptView{}, nil
	}

	userIDs := make([]uuid.UUID, 0, len(receipts)*2)
	schoolIDs := make([]uuid.UUID, 0, len(receipts))
	for _, r := range receipts {
		userIDs = append(userIDs, r.PayerUserID, r.PayeeUserID)
		if r.SchoolID != nil {
			schoolIDs = append(schoolIDs, *r.SchoolID)
		}
	}

	names, err := s.resolveNames(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	schoolNames, err := s.resolveSchoolNames(ctx, schoolIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ports.ReceiptView, 0, len(receipts))
	for _, r := range receipts {
		direction := "OUT"
		if r.PayeeUserID == userID {
			direction = "IN"
		}
		var schoolName *string
		if r.SchoolID != nil {
			if n, ok := schoolNames[*r.SchoolID]; ok {
				schoolName = &n
			}
		}
		views = append(views, ports.ReceiptView{
			ID:         r.ID,
			ReceiptNo:  r.ReceiptNo,
			Amount:     r.AmountCents,
			Kind:       r.Kind,
			CreatedAt:  r.CreatedAt,
			FromName:   displayOr(names, r.PayerUserID),
			ToName:     displayOr(names, r.PayeeUserID),
			SchoolName: schoolName,
			Direction:  direction,
		})
	}
	return views, nil
}

// ListTransactions returns the caller's ledger view. The counterparty
// comes straight off the row; nothing is reconstructed by matching
// amounts or time windows.
func (s *ReportingServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID) ([]ports.TransactionView, error) {
	txns, err := s.txnRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	if len(txns) == 0 {
		return []ports.TransactionView{}, nil
	}

	userIDs := make([]uuid.UUID, 0, len(txns))
	schoolIDs := make([]uuid.UUID, 0, len(txns))
	for _, t := range txns {
		userIDs = append(userIDs, t.CounterpartyID)
		if t.SchoolID != nil {
			schoolIDs = append(schoolIDs, *t.SchoolID)
		}
	}

	names, err := s.resolveNames(ctx, userIDs)
	if err != nil {
		return nil, err
	}
	schoolNames, err := s.resolveSchoolNames(ctx, schoolIDs)
	if err != nil {
		return nil, err
	}

	views := make([]ports.TransactionView, 0, len(txns))
	for _, t := range txns {
		var schoolName *string
		if t.SchoolID != nil {
			if n, ok := schoolNames[*t.SchoolID]; ok {
				schoolName = &n
			}
		}
		views = append(views, ports.TransactionView{
			ID:           t.ID,
			Amount:       t.AmountCents,
			Kind:         t.Kind,
			Description:  t.Description,
			CreatedAt:    t.CreatedAt,
			Counterparty: displayOr(names, t.CounterpartyID),
			SchoolName:   schoolName,
		})
	}
	return views, nil
}

func (s *ReportingServiceImpl) resolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	users, err := s.userRepo.ListByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve names: %w", err))
	}
	names := make(map[uuid.UUID]string, len(users))
	for i := range users {
		names[users[i].ID] = users[i].DisplayName()
	}
	return names, nil
}

func (s *ReportingServiceImpl) resolveSchoolNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	schools, err := s.schoolRepo.ListByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve schools: %w", err))
	}
	names := make(map[uuid.UUID]string, len(schools))
	for _, sc := range schools {
		names[sc.ID] = sc.Name
	}
	return names, nil
}

func displayOr(names map[uuid.UUID]string, id uuid.UUID) string {
	if n, ok := names[id]; ok {
		return n
	}
	return "user#" + id.String()[:8]
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
