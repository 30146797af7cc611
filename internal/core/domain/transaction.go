package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionKind represents the kind of money movement.
type TransactionKind string

const (
	TransactionKindPayment TransactionKind = "PAYMENT"
	TransactionKindTopup   TransactionKind = "TOPUP"
)

// Transaction is one immutable signed ledger entry for one account.
// A completed transfer produces exactly two entries whose amounts sum
// to zero. Rows are append-only; they are never updated or deleted.
type Transaction struct {
	ID uuid.UUID `json:"id"`
	// UserID is the account this leg belongs to.
	UserID uuid.UUID `json:"user_id"`
	// AmountCents is negative for the debit leg, positive for the credit leg.
	AmountCents int64           `json:"amount_cents"`
	Kind        TransactionKind `json:"kind"`
	Description string          `json:"description"`
	// CounterpartyID is the other account of the transfer, stored at write
	// time so the from/to view never has to be reconstructed.
	CounterpartyID uuid.UUID  `json:"counterparty_id"`
	SchoolID       *uuid.UUID `json:"school_id,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsDebit reports whether this leg took money out of the account.
func (t *Transaction) IsDebit() bool {
	return t.AmountCents < 0
}
