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

// TopUpServiceImpl implements ports.TopUpService.
type TopUpServiceImpl struct {
	requestRepo ports.TopUpRequestRepository
	userRepo    ports.UserRepository
	familyRepo  ports.FamilyRepository
	ledger      ports.LedgerService
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewTopUpService creates a new TopUpServiceImpl.
func NewTopUpService(
	requestRepo ports.TopUpRequestRepository,
	userRepo ports.UserRepository,
	familyRepo ports.FamilyRepository,
	ledger ports.LedgerService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TopUpServiceImpl {
	return &TopUpServiceImpl{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		familyRepo:  familyRepo,
		ledger:      ledger,
		transactor:  transactor,
		log:         log,
	}
}

// Create opens a PENDING request from a child to its linked parent.
func (s *TopUpServiceImpl) Create(ctx context.Context, childID uuid.UUID, note *string) (*domain.TopUpRequest, error) {
	parentID, err := s.familyRepo.ParentOf(ctx, childID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve parent: %w", err))
	}
	if parentID == nil {
		return nil, apperror.ErrParentNotLinked()
	}

	req := &domain.TopUpRequest{
		ID:          uuid.New(),
		ChildID:     childID,
		ParentID:    *parentID,
		Status:      domain.TopUpStatusPending,
		RequestedAt: time.Now().UTC(),
		Note:        note,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create top-up request: %w", err))
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("child_id", childID.String()).
		Str("parent_id", parentID.String()).
		Msg("top-up request created")

	return req, nil
}

// Inbox lists the parent's pending requests, newest first, with the
// child's username resolved.
func (s *TopUpServiceImpl) Inbox(ctx context.Context, parentID uuid.UUID) ([]ports.TopUpInboxItem, error) {
	requests, err := s.requestRepo.ListPendingByParent(ctx, parentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending requests: %w", err))
	}
	if len(requests) == 0 {
		return []ports.TopUpInboxItem{}, nil
	}

	childIDs := make([]uuid.UUID, 0, len(requests))
	for _, r := range requests {
		childIDs = append(childIDs, r.ChildID)
	}
	children, err := s.userRepo.ListByIDs(ctx, childIDs)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve children: %w", err))
	}
	usernames := make(map[uuid.UUID]string, len(children))
	for _, c := range children {
		usernames[c.ID] = c.Username
	}

	items := make([]ports.TopUpInboxItem, 0, len(requests))
	for _, r := range requests {
		items = append(items, ports.TopUpInboxItem{
			ID:            r.ID,
			ChildID:       r.ChildID,
			ChildUsername: usernames[r.ChildID],
			RequestedAt:   r.RequestedAt,
			Note:          r.Note,
		})
	}
	return items, nil
}

// Approve settles a pending request: the parent-to-child transfer and
// the PENDING to APPROVED flip commit as one atomic unit, so an
// approved request with no transfer (or the reverse) is never
// observable.
func (s *TopUpServiceImpl) Approve(ctx context.Context, parentID, requestID uuid.UUID, amountCents int64) (*ports.TransferResult, error) {
	if amountCents <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Row lock keeps a concurrent approval from passing the PENDING check.
	req, err := s.requestRepo.GetByIDForUpdate(ctx, dbTx, requestID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load request: %w", err))
	}
	if req == nil {
		return nil, apperror.ErrRequestNotFound()
	}
	if req.ParentID != parentID {
		return nil, apperror.ErrForbidden()
	}
	if !req.IsPending() {
		return nil, apperror.ErrNotPending()
	}

	result, err := s.ledger.TransferInTx(ctx, dbTx, ports.TransferRequest{
		PayerID:     parentID,
		PayeeID:     req.ChildID,
		AmountCents: amountCents,
		Kind:        domain.TransactionKindTopup,
		PayerNote:   fmt.Sprintf("Top up child (request %s)", shortID(req.ID)),
		PayeeNote:   fmt.Sprintf("Received top up from parent (request %s)", shortID(req.ID)),
	})
	if err != nil {
		return nil, err
	}

	if err := s.requestRepo.MarkApproved(ctx, dbTx, req.ID, time.Now().UTC()); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("mark approved: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("request_id", req.ID.String()).
		Str("parent_id", parentID.String()).
		Str("child_id", req.ChildID.String()).
		Int64("amount_cents", amountCents).
		Msg("top-up request approved")

	return result, nil
}

// TopUpChild moves funds parent-to-child directly, without a pending
// request. The link check still applies.
func (s *TopUpServiceImpl) TopUpChild(ctx context.Context, parentID, childID uuid.UUID, amountCents int64) (*ports.TransferResult, error) {
	if amountCents <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	linked, err := s.familyRepo.IsLinked(ctx, parentID, childID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check link: %w", err))
	}
	if !linked {
		return nil, apperror.ErrNotLinkedToChild()
	}

	result, err := s.ledger.Transfer(ctx, ports.TransferRequest{
		PayerID:     parentID,
		PayeeID:     childID,
		AmountCents: amountCents,
		Kind:        domain.TransactionKindTopup,
		PayerNote:   fmt.Sprintf("Top up child %s", shortID(childID)),
		PayeeNote:   fmt.Sprintf("Top up from parent %s", shortID(parentID)),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("parent_id", parentID.String()).
		Str("child_id", childID.String()).
		Int64("amount_cents", amountCents).
		Msg("direct top-up settled")

	return result, nil
}

// shortID is the first uuid segment, enough for log-friendly notes.
func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
