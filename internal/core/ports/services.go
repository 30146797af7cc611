package ports

import (
	"context"
	"time"

	"teenpay-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// HashService handles password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// Principal is the authenticated caller, produced once by token
// validation and passed explicitly into every downstream operation.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     domain.Role
}

// TokenService handles access token operations.
type TokenService interface {
	Generate(user *domain.User) (string, time.Time, error)
	Validate(tokenString string) (*Principal, error)
}

// --- Ledger ---

// TransferRequest describes one two-legged balance movement.
type TransferRequest struct {
	PayerID     uuid.UUID
	PayeeID     uuid.UUID
	AmountCents int64
	Kind        domain.TransactionKind
	// PayerNote / PayeeNote are the human-readable descriptions stored on
	// each party's ledger entry.
	PayerNote string
	PayeeNote string
	SchoolID  *uuid.UUID
}

// TransferResult exposes both legs of a settled transfer.
type TransferResult struct {
	PayerTxn     *domain.Transaction
	PayeeTxn     *domain.Transaction
	PayerReceipt *domain.Receipt
	PayeeReceipt *domain.Receipt
	PayerBalance int64
	PayeeBalance int64
}

// LedgerService atomically moves money between two accounts, appends
// one ledger entry per leg, and issues one receipt per leg.
type LedgerService interface {
	// Transfer runs the movement in its own database transaction.
	Transfer(ctx context.Context, req TransferRequest) (*TransferResult, error)
	// TransferInTx runs the movement inside a caller-owned transaction so
	// additional writes (e.g. a request status flip) commit with it.
	TransferInTx(ctx context.Context, tx pgx.Tx, req TransferRequest) (*TransferResult, error)
}

// --- QR payments ---

// QRPayload is the JSON carried by a scanned QR code.
type QRPayload struct {
	UserID  uuid.UUID `json:"userId"`
	Amount  *int64    `json:"amount"`  // cents; nil in a blank presentation QR
	OrgCode string    `json:"orgCode"` // school code
}

// QRPaymentResult is the settlement view returned to the terminal.
type QRPaymentResult struct {
	Status          string
	AmountCents     int64
	PayerBalance    int64
	TerminalBalance int64
	PayerReceiptNo  string
	PayeeReceiptNo  string
	SchoolCode      string
}

// PaymentService validates a scanned QR payload and settles the payment.
type PaymentService interface {
	PayByQR(ctx context.Context, terminalID uuid.UUID, rawPayload string) (*QRPaymentResult, error)
	// GenerateQR renders a presentation QR code PNG for the given user.
	GenerateQR(ctx context.Context, userID uuid.UUID, amountCents *int64, orgCode string) ([]byte, error)
}

// --- Top-up workflow ---

// TopUpInboxItem is one pending request as shown to the parent.
type TopUpInboxItem struct {
	ID            uuid.UUID
	ChildID       uuid.UUID
	ChildUsername string
	RequestedAt   time.Time
	Note          *string
}

// TopUpService drives the request/approval state machine and direct
// parent-to-child transfers.
type TopUpService interface {
	Create(ctx context.Context, childID uuid.UUID, note *string) (*domain.TopUpRequest, error)
	Inbox(ctx context.Context, parentID uuid.UUID) ([]TopUpInboxItem, error)
	Approve(ctx context.Context, parentID, requestID uuid.UUID, amountCents int64) (*TransferResult, error)
	TopUpChild(ctx context.Context, parentID, childID uuid.UUID, amountCents int64) (*TransferResult, error)
}

// --- Auth sessions ---

// RegisterRequest holds input for account registration.
type RegisterRequest struct {
	Username  string
	Password  string
	Email     *string
	FirstName *string
	LastName  *string
	Role      domain.Role
}

// LoginRequest holds input for credential verification.
type LoginRequest struct {
	Username string
	Password string
	DeviceID *string
}

// RefreshRequest holds input for refresh token rotation.
type RefreshRequest struct {
	RefreshToken string
	DeviceID     *string
}

// Session is a live authenticated session: a short-lived access token
// plus the refresh token that can extend it.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime, seconds
	User         *domain.User
}

// AuthService defines the authentication session lifecycle.
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req LoginRequest) (*Session, error)
	Refresh(ctx context.Context, req RefreshRequest) (*Session, error)
	Logout(ctx context.Context, refreshToken string) error
}

// --- Reporting ---

// ReceiptView is a receipt with names resolved for display.
type ReceiptView struct {
	ID         uuid.UUID
	ReceiptNo  string
	Amount     int64
	Kind       domain.TransactionKind
	CreatedAt  time.Time
	FromName   string
	ToName     string
	SchoolName *string
	// Direction is "IN" or "OUT" relative to the viewing user.
	Direction string
}

// TransactionView is one ledger entry with the counterparty resolved.
type TransactionView struct {
	ID           uuid.UUID
	Amount       int64
	Kind         domain.TransactionKind
	Description  string
	CreatedAt    time.Time
	Counterparty string
	SchoolName   *string
}

// ReportingService builds the caller-facing views over the ledger.
type ReportingService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (int64, error)
	ListReceipts(ctx context.Context, userID uuid.UUID) ([]ReceiptView, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]TransactionView, error)
}

// AuditService records audit entries; failures must not fail requests.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// HealthChecker verifies connectivity of one dependency.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}
