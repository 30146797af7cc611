package ports

import (
	"context"
	"time"

	"teenpay-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for user accounts.
// Methods accepting pgx.Tx run inside a transaction and take a row
// lock so concurrent debits serialize on the balance check.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.User, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.User, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, id uuid.UUID, balanceCents int64) error
}

// TransactionRepository appends and reads immutable ledger entries.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
}

// ReceiptRepository persists receipts. Create returns
// apperror.ErrDuplicateReceiptNo when the drawn number is already
// taken, so the ledger can retry with a fresh draw.
type ReceiptRepository interface {
	Create(ctx context.Context, tx pgx.Tx, receipt *domain.Receipt) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Receipt, error)
	GetByNo(ctx context.Context, receiptNo string) (*domain.Receipt, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Receipt, error)
}

// TopUpRequestRepository persists the top-up request state machine.
type TopUpRequestRepository interface {
	Create(ctx context.Context, req *domain.TopUpRequest) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.TopUpRequest, error)
	MarkApproved(ctx context.Context, tx pgx.Tx, id uuid.UUID, approvedAt time.Time) error
	ListPendingByParent(ctx context.Context, parentID uuid.UUID) ([]domain.TopUpRequest, error)
}

// RefreshTokenRepository persists refresh tokens. The rotation path
// reads the token under a row lock so two concurrent refreshes of the
// same token cannot both succeed.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	CreateInTx(ctx context.Context, tx pgx.Tx, token *domain.RefreshToken) error
	GetByTokenForUpdate(ctx context.Context, tx pgx.Tx, token string) (*domain.RefreshToken, error)
	Revoke(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	RevokeByToken(ctx context.Context, token string) error
}

// SchoolRepository is the read-only school directory.
type SchoolRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.School, error)
	GetByCode(ctx context.Context, code string) (*domain.School, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.School, error)
	IsAffiliated(ctx context.Context, userID, schoolID uuid.UUID) (bool, error)
}

// FamilyRepository is the read-only parent/child link directory.
type FamilyRepository interface {
	ParentOf(ctx context.Context, childID uuid.UUID) (*uuid.UUID, error) // nil when unlinked
	IsLinked(ctx context.Context, parentID, childID uuid.UUID) (bool, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management. It is the
// unit-of-work boundary: one use case, one transaction.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
