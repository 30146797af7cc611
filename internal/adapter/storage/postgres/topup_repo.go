package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"teenpay-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const topupColumns = `id, child_id, parent_id, status, requested_at, approved_at, note`

// TopUpRepo implements ports.TopUpRequestRepository.
type TopUpRepo struct {
	pool Pool
}

// NewTopUpRepo creates a new TopUpRepo.
func NewTopUpRepo(pool Pool) *TopUpRepo {
	return &TopUpRepo{pool: pool}
}

// Create inserts a new pending request.
func (r *TopUpRepo) Create(ctx context.Context, req *domain.TopUpRequest) error {
	query := `INSERT INTO topup_requests (id, child_id, parent_id, status, requested_at, approved_at, note)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		req.ID, req.ChildID, req.ParentID, req.Status,
		req.RequestedAt, req.ApprovedAt, req.Note,
	)
	if err != nil {
		return fmt.Errorf("insert topup request: %w", err)
	}
	return nil
}

// GetByIDForUpdate fetches a request by ID with pessimistic locking.
// This MUST be called within a transaction.
func (r *TopUpRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.TopUpRequest, error) {
	query := `SELECT ` + topupColumns + ` FROM topup_requests WHERE id = $1 FOR UPDATE`

	req := &domain.TopUpRequest{}
	err := tx.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.ChildID, &req.ParentID, &req.Status,
		&req.RequestedAt, &req.ApprovedAt, &req.Note,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get topup request for update: %w", err)
	}
	return req, nil
}

// MarkApproved flips a request to APPROVED within a transaction.
func (r *TopUpRepo) MarkApproved(ctx context.Context, tx pgx.Tx, id uuid.UUID, approvedAt time.Time) error {
	query := `UPDATE topup_requests SET status = $1, approved_at = $2 WHERE id = $3`

	tag, err := tx.Exec(ctx, query, domain.TopUpStatusApproved, approvedAt, id)
	if err != nil {
		return fmt.Errorf("mark topup request approved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("topup request not found: %s", id)
	}
	return nil
}

// ListPendingByParent returns the parent's pending requests, newest
// first.
func (r *TopUpRepo) ListPendingByParent(ctx context.Context, parentID uuid.UUID) ([]domain.TopUpRequest, error) {
	query := `SELECT ` + topupColumns + ` FROM topup_requests
		WHERE parent_id = $1 AND status = $2 ORDER BY requested_at DESC`

	rows, err := r.pool.Query(ctx, query, parentID, domain.TopUpStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending topup requests: %w", err)
	}
	defer rows.Close()

	var reqs []domain.TopUpRequest
	for rows.Next() {
		var req domain.TopUpRequest
		if err := rows.Scan(
			&req.ID, &req.ChildID, &req.ParentID, &req.Status,
			&req.RequestedAt, &req.ApprovedAt, &req.Note,
		); err != nil {
			return nil, fmt.Errorf("scan topup request: %w", err)
		}
		reqs = append(reqs, req)
	}
	return reqs, rows.Err()
}
