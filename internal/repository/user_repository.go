package repository

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// UserPatch lists the user fields an update may change; nil means unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Role     *domain.Role
	Status   *domain.UserStatus
	Profile  *domain.Profile
	Password *string
}

// UserRepository defines persistence access for users.
type UserRepository interface {
	List(ctx context.Context) ([]domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type userRepository struct {
	doc Document
}

// NewUserRepository returns a document-backed implementation.
func NewUserRepository(doc Document) UserRepository {
	return &userRepository{doc: doc}
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	return data.Users, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	idx := data.UserIndex(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &data.Users[idx], nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	data, err := fetch(ctx, r.doc)
	if err != nil {
		return nil, err
	}
	idx := data.UserIndexByEmail(email)
	if idx < 0 {
		return nil, ErrNotFound
	}
	return &data.Users[idx], nil
}

// Create fills id, timestamps, status and role when they are empty and
// rejects an email that is already registered.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	if user.ID == "" {
		user.ID = domain.NewID("user")
	}
	now := domain.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	if user.Status == "" {
		user.Status = domain.UserStatusActive
	}
	if user.Role == "" {
		user.Role = domain.RoleForEmail(user.Email)
	}

	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		if d.UserIndexByEmail(user.Email) >= 0 {
			return ErrDuplicateEmail
		}
		d.Users = append(d.Users, *user)
		return nil
	})
	return err
}

func (r *userRepository) Update(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	var updated domain.User
	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		idx := d.UserIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		user := d.Users[idx]

		if patch.Email != nil {
			email := domain.NormalizeEmail(*patch.Email)
			if other := d.UserIndexByEmail(email); other >= 0 && other != idx {
				return ErrDuplicateEmail
			}
			user.Email = email
		}
		if patch.Name != nil {
			user.Name = *patch.Name
		}
		if patch.Role != nil {
			user.Role = *patch.Role
		}
		if patch.Status != nil {
			user.Status = *patch.Status
		}
		if patch.Profile != nil {
			user.Profile = *patch.Profile
		}
		if patch.Password != nil {
			user.Password = *patch.Password
		}
		user.UpdatedAt = domain.Now()

		d.Users[idx] = user
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the user only; tickets and comments keep their references.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	_, err := r.doc.Mutate(ctx, func(d *domain.Dataset) error {
		idx := d.UserIndex(id)
		if idx < 0 {
			return ErrNotFound
		}
		d.Users = append(d.Users[:idx], d.Users[idx+1:]...)
		return nil
	})
	return err
}
