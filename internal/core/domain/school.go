package domain

import (
	"time"

	"github.com/google/uuid"
)

// School is an affiliated organization that accepts QR payments.
// PosUserID binds the school to its point-of-sale account; a payment
// may only be settled by that terminal. The core queries schools and
// affiliations, it never mutates them.
type School struct {
	ID        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Name      string     `json:"name"`
	City      *string    `json:"city,omitempty"`
	Address   *string    `json:"address,omitempty"`
	PosUserID *uuid.UUID `json:"pos_user_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// HasTerminal reports whether a POS account is bound to the school.
func (s *School) HasTerminal() bool {
	return s.PosUserID != nil
}

// StudentSchool links a child to a school, permitting payments there.
type StudentSchool struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	SchoolID uuid.UUID `json:"school_id"`
}

// ParentChild links a parent account to a child account.
type ParentChild struct {
	ID           uuid.UUID `json:"id"`
	ParentUserID uuid.UUID `json:"parent_user_id"`
	ChildUserID  uuid.UUID `json:"child_user_id"`
}
