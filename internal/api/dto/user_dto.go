package dto

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// Auth actions.
const (
	AuthActionLogin    = "login"
	AuthActionRegister = "register"
	AuthActionLogout   = "logout"
)

// AuthRequest payload for POST /api/auth.
type AuthRequest struct {
	Action   string `json:"action" validate:"required,oneof=login register logout"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password"`
	Name     string `json:"name" validate:"max=100"`
}

// ProfileDTO mirrors domain.Profile.
type ProfileDTO struct {
	Phone      string `json:"phone" validate:"max=50"`
	Department string `json:"department" validate:"max=100"`
	Avatar     string `json:"avatar" validate:"max=500"`
}

// CreateUserRequest payload.
type CreateUserRequest struct {
	Email   string      `json:"email" validate:"required,email"`
	Name    string      `json:"name" validate:"required,max=100"`
	Role    string      `json:"role" validate:"required,oneof=end_user support_agent admin"`
	Status  string      `json:"status" validate:"omitempty,oneof=active inactive"`
	Profile *ProfileDTO `json:"profile"`
}

// UpdateUserRequest carries the fields to change; absent fields are kept.
type UpdateUserRequest struct {
	Email   *string     `json:"email" validate:"omitempty,email"`
	Name    *string     `json:"name" validate:"omitempty,min=1,max=100"`
	Role    *string     `json:"role" validate:"omitempty,oneof=end_user support_agent admin"`
	Status  *string     `json:"status" validate:"omitempty,oneof=active inactive"`
	Profile *ProfileDTO `json:"profile"`
}

// Patch converts the request into a repository patch.
func (r UpdateUserRequest) Patch() repository.UserPatch {
	patch := repository.UserPatch{Name: r.Name, Email: r.Email}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		patch.Role = &role
	}
	if r.Status != nil {
		status := domain.UserStatus(*r.Status)
		patch.Status = &status
	}
	if r.Profile != nil {
		profile := r.Profile.Domain()
		patch.Profile = &profile
	}
	return patch
}

// Domain converts the profile.
func (p *ProfileDTO) Domain() domain.Profile {
	if p == nil {
		return domain.Profile{}
	}
	return domain.Profile{Phone: p.Phone, Department: p.Department, Avatar: p.Avatar}
}

// UserResponse is a user without credentials.
type UserResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Role      domain.Role       `json:"role"`
	Status    domain.UserStatus `json:"status"`
	Profile   ProfileDTO        `json:"profile"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewUserResponse converts a domain user for rendering.
func NewUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		Status:    u.Status,
		Profile:   ProfileDTO{Phone: u.Profile.Phone, Department: u.Profile.Department, Avatar: u.Profile.Avatar},
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// NewUserResponses converts a slice of users.
func NewUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, NewUserResponse(&users[i]))
	}
	return out
}
