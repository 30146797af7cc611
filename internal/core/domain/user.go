package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents what an account may do.
type Role string

const (
	RoleParent Role = "PARENT"
	RoleChild  Role = "CHILD"
	RolePOS    Role = "POS"
	RoleAdmin  Role = "ADMIN"
)

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	switch r {
	case RoleParent, RoleChild, RolePOS, RoleAdmin:
		return true
	}
	return false
}

// User is an account holding a balance. Parents, children, and school
// terminals are all users; the role decides which operations apply.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Email        *string   `json:"email,omitempty"`
	FirstName    *string   `json:"first_name,omitempty"`
	LastName     *string   `json:"last_name,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	PersonalCode *string   `json:"personal_code,omitempty"`
	Role         Role      `json:"role"`
	// BalanceCents is the account balance in cents. It never goes
	// negative; the ledger enforces that under a row lock.
	BalanceCents int64     `json:"balance_cents"`
	CreatedAt    time.Time `json:"created_at"`
}

// DisplayName is the human-facing name: real name when known,
// username otherwise.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Username
	}
	return strings.Join(parts, " ")
}
