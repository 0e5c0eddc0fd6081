package domain

import (
	"strings"
	"time"
)

// Role enumerates the kinds of accounts that can use the help desk.
type Role string

const (
	RoleEndUser      Role = "end_user"
	RoleSupportAgent Role = "support_agent"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleEndUser, RoleSupportAgent, RoleAdmin:
		return true
	}
	return false
}

// IsStaff reports whether the role works tickets rather than files them.
func (r Role) IsStaff() bool {
	return r == RoleSupportAgent || r == RoleAdmin
}

// RoleForEmail derives a role from substrings of the address.
func RoleForEmail(email string) Role {
	lower := strings.ToLower(email)
	switch {
	case strings.Contains(lower, "admin"):
		return RoleAdmin
	case strings.Contains(lower, "agent"), strings.Contains(lower, "support"):
		return RoleSupportAgent
	default:
		return RoleEndUser
	}
}

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"
	UserStatusInactive UserStatus = "inactive"
)

// Valid reports whether s is a known status.
func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

// Profile holds optional contact details.
type Profile struct {
	Phone      string `json:"phone"`
	Department string `json:"department"`
	Avatar     string `json:"avatar"`
}

// User is anyone who files, works or administers tickets.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password,omitempty"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status"`
	Profile   Profile    `json:"profile"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NormalizeEmail is the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
