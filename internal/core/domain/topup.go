package domain

import (
	"time"

	"github.com/google/uuid"
)

// TopUpRequestStatus is the state of a top-up request.
// PENDING is the initial state, APPROVED the only terminal one; a
// request transitions at most once.
type TopUpRequestStatus string

const (
	TopUpStatusPending  TopUpRequestStatus = "PENDING"
	TopUpStatusApproved TopUpRequestStatus = "APPROVED"
)

// TopUpRequest is a child-initiated ask for funds from the linked
// parent. Approval triggers the parent-to-child ledger transfer in the
// same atomic unit as the status flip.
type TopUpRequest struct {
	ID          uuid.UUID          `json:"id"`
	ChildID     uuid.UUID          `json:"child_id"`
	ParentID    uuid.UUID          `json:"parent_id"`
	Status      TopUpRequestStatus `json:"status"`
	RequestedAt time.Time          `json:"requested_at"`
	ApprovedAt  *time.Time         `json:"approved_at,omitempty"`
	Note        *string            `json:"note,omitempty"`
}

// IsPending reports whether the request can still be approved.
func (r *TopUpRequest) IsPending() bool {
	return r.Status == TopUpStatusPending
}
