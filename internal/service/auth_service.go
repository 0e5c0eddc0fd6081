package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// CredentialProvider turns passwords into stored secrets and checks them.
type CredentialProvider interface {
	Name() string
	Secret(password string) (string, error)
	Verify(user *domain.User, password string) error
}

// AuthResult is a logged-in user with a signed access token.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users       repository.UserRepository
	credentials CredentialProvider
	tokenMgr    *auth.TokenManager
	logger      *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo    repository.UserRepository
	Credentials CredentialProvider
	Tokens      *auth.TokenManager
	Logger      *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	credentials := deps.Credentials
	if credentials == nil {
		credentials = auth.DemoProvider{}
	}
	return &AuthService{
		users:       deps.UserRepo,
		credentials: credentials,
		tokenMgr:    deps.Tokens,
		logger:      loggerOrNop(deps.Logger),
	}
}

// AuthenticateOrCreate logs the email in, creating the account on first use.
// Calling it again with the same email never creates a second user.
func (s *AuthService) AuthenticateOrCreate(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if err := required(map[string]string{"email": email, "password": password}); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return s.login(user, password)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, translate(err, "user")
	}

	user, err = s.createUser(ctx, email, password, name)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		// Lost a race with a concurrent first login for the same email.
		existing, getErr := s.users.GetByEmail(ctx, email)
		if getErr != nil {
			return nil, translate(getErr, "user")
		}
		return s.login(existing, password)
	}
	if err != nil {
		return nil, translate(err, "user")
	}
	s.logger.Info("user created on first login", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return s.issue(user)
}

// Register creates an account and fails when the email is taken.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if err := required(map[string]string{"email": email, "password": password}); err != nil {
		return nil, err
	}
	user, err := s.createUser(ctx, email, password, name)
	if err != nil {
		return nil, translate(err, "user")
	}
	return s.issue(user)
}

// Logout is a no-op: tokens are stateless and expire on their own.
func (s *AuthService) Logout(_ context.Context) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) createUser(ctx context.Context, email, password, name string) (*domain.User, error) {
	secret, err := s.credentials.Secret(password)
	if err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	user := &domain.User{
		Name:     name,
		Email:    email,
		Password: secret,
		Role:     domain.RoleForEmail(email),
		Status:   domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) login(user *domain.User, password string) (*AuthResult, error) {
	if err := s.credentials.Verify(user, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Status == domain.UserStatusInactive {
		return nil, apperrors.NewForbidden("account is inactive")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: exp}, nil
}
