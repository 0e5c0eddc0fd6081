package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UserService manages user accounts.
type UserService struct {
	users repository.UserRepository
}

// UserCreateInput describes a new account created by an administrator.
type UserCreateInput struct {
	Name    string
	Email   string
	Role    domain.Role
	Status  domain.UserStatus
	Profile domain.Profile
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns users, optionally only those with role.
func (s *UserService) List(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if role != "" && !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, translate(err, "user")
	}
	if role == "" {
		return users, nil
	}
	filtered := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Role == role {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

// Create adds an account; a taken email is a conflict.
func (s *UserService) Create(ctx context.Context, input UserCreateInput) (*domain.User, error) {
	user := &domain.User{
		Name:    strings.TrimSpace(input.Name),
		Email:   domain.NormalizeEmail(input.Email),
		Role:    input.Role,
		Status:  input.Status,
		Profile: input.Profile,
	}
	if err := required(map[string]string{
		"name":  user.Name,
		"email": user.Email,
		"role":  string(user.Role),
	}); err != nil {
		return nil, err
	}
	if !user.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": user.Role})
	}
	if user.Status != "" && !user.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": user.Status})
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, patch repository.UserPatch) (*domain.User, error) {
	if patch.Role != nil && !patch.Role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *patch.Role})
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *patch.Status})
	}
	if patch.Email != nil && domain.NormalizeEmail(*patch.Email) == "" {
		return nil, apperrors.NewValidationError("email cannot be empty", nil)
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, apperrors.NewValidationError("name cannot be empty", nil)
	}
	user, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, translate(err, "user")
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	return translate(s.users.Delete(ctx, id), "user")
}
