package postgres

import (
	"context"
	"errors"
	"fmt"

	"teenpay-backend/internal/core/domain"
	"teenpay-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const receiptColumns = `id, receipt_no, amount_cents, kind, payer_user_id, payee_user_id, school_id, created_at`

// pgUniqueViolation is the Postgres error code for a unique constraint
// violation.
const pgUniqueViolation = "23505"

// ReceiptRepo implements ports.ReceiptRepository.
type ReceiptRepo struct {
	pool Pool
}

// NewReceiptRepo creates a new ReceiptRepo.
func NewReceiptRepo(pool Pool) *ReceiptRepo {
	return &ReceiptRepo{pool: pool}
}

// Create inserts a receipt within a transaction. A clash on the unique
// receipt_no index comes back as ErrDuplicateReceiptNo so the caller
// can redraw.
func (r *ReceiptRepo) Create(ctx context.Context, tx pgx.Tx, receipt *domain.Receipt) error {
	query := `INSERT INTO receipts (id, receipt_no, amount_cents, kind, payer_user_id, payee_user_id, school_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		receipt.ID, receipt.ReceiptNo, receipt.AmountCents, receipt.Kind,
		receipt.PayerUserID, receipt.PayeeUserID, receipt.SchoolID, receipt.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return apperror.ErrDuplicateReceiptNo()
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func scanReceipt(row pgx.Row) (*domain.Receipt, error) {
	rc := &domain.Receipt{}
	err := row.Scan(
		&rc.ID, &rc.ReceiptNo, &rc.AmountCents, &rc.Kind,
		&rc.PayerUserID, &rc.PayeeUserID, &rc.SchoolID, &rc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

// GetByID fetches a receipt by ID.
func (r *ReceiptRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE id = $1`

	rc, err := scanReceipt(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt by id: %w", err)
	}
	return rc, nil
}

// GetByNo fetches a receipt by its unique number.
func (r *ReceiptRepo) GetByNo(ctx context.Context, receiptNo string) (*domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE receipt_no = $1`

	rc, err := scanReceipt(r.pool.QueryRow(ctx, query, receiptNo))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt by no: %w", err)
	}
	return rc, nil
}

// ListByUser returns receipts where the user is payer or payee, newest
// first.
func (r *ReceiptRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts
		WHERE payer_user_id = $1 OR payee_user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()

	var receipts []domain.Receipt
	for rows.Next() {
		rc, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		receipts = append(receipts, *rc)
	}
	return receipts, rows.Err()
}
