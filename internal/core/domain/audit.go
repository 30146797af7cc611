package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction identifies an audited write operation.
type AuditAction string

const (
	AuditActionRegister     AuditAction = "REGISTER"
	AuditActionLogin        AuditAction = "LOGIN"
	AuditActionRefresh      AuditAction = "REFRESH"
	AuditActionLogout       AuditAction = "LOGOUT"
	AuditActionQRPayment    AuditAction = "QR_PAYMENT"
	AuditActionTopupCreate  AuditAction = "TOPUP_CREATE"
	AuditActionTopupApprove AuditAction = "TOPUP_APPROVE"
	AuditActionTopupChild   AuditAction = "TOPUP_CHILD"
)

// AuditLog records a successful write operation for traceability.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	IPAddress    string      `json:"ip_address"`
	Details      string      `json:"details"`
	CreatedAt    time.Time   `json:"created_at"`
}
