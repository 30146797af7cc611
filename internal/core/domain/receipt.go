package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
)

// ReceiptNoLen is the fixed width of a receipt number.
const ReceiptNoLen = 8

// Receipt is the user-facing confirmation of one settled leg of a
// transfer. Each party of a transfer gets its own receipt; ReceiptNo is
// globally unique.
type Receipt struct {
	ID          uuid.UUID       `json:"id"`
	ReceiptNo   string          `json:"receipt_no"`
	AmountCents int64           `json:"amount_cents"` // always positive
	Kind        TransactionKind `json:"kind"`
	PayerUserID uuid.UUID       `json:"payer_user_id"`
	PayeeUserID uuid.UUID       `json:"payee_user_id"`
	SchoolID    *uuid.UUID      `json:"school_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

var receiptNoMax = big.NewInt(100_000_000)

// NewReceiptNo draws a random fixed-width 8-digit receipt number.
// Uniqueness is enforced by the store; callers retry on collision.
func NewReceiptNo() (string, error) {
	n, err := rand.Int(rand.Reader, receiptNoMax)
	if err != nil {
		return "", fmt.Errorf("drawing receipt number: %w", err)
	}
	return fmt.Sprintf("%0*d", ReceiptNoLen, n.Int64()), nil
}
