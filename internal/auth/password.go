package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// ErrInvalidCredentials is returned when a password does not match.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// HashPassword hashes a plaintext password with configured cost.
func HashPassword(password string, cost int) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}

// DemoProvider accepts any non-empty password and stores it as given. It
// exists for demo deployments only.
type DemoProvider struct{}

func (DemoProvider) Name() string { return "demo" }

func (DemoProvider) Secret(password string) (string, error) {
	return password, nil
}

func (DemoProvider) Verify(_ *domain.User, password string) error {
	if password == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// BcryptProvider stores bcrypt hashes and checks passwords against them.
// Users without a stored hash cannot log in.
type BcryptProvider struct {
	Cost int
}

func (p BcryptProvider) Name() string { return "bcrypt" }

func (p BcryptProvider) Secret(password string) (string, error) {
	cost := p.Cost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return HashPassword(password, cost)
}

func (p BcryptProvider) Verify(user *domain.User, password string) error {
	if user == nil || user.Password == "" {
		return ErrInvalidCredentials
	}
	if err := ComparePassword(user.Password, password); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
