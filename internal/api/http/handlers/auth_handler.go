package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/service"
)

// AuthHandler serves the single auth endpoint.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Handle POST /api/auth. The action field selects login, register or logout.
func (h *AuthHandler) Handle(c *fiber.Ctx) error {
	var req dto.AuthRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	var (
		result *service.AuthResult
		err    error
		status = http.StatusOK
	)
	switch req.Action {
	case dto.AuthActionLogout:
		if err := h.auth.Logout(c.UserContext()); err != nil {
			return err
		}
		return respond(c, http.StatusOK, "", nil)
	case dto.AuthActionRegister:
		result, err = h.auth.Register(c.UserContext(), req.Email, req.Password, req.Name)
		status = http.StatusCreated
	default:
		result, err = h.auth.AuthenticateOrCreate(c.UserContext(), req.Email, req.Password, req.Name)
	}
	if err != nil {
		return err
	}

	return c.Status(status).JSON(fiber.Map{
		"success":    true,
		"user":       dto.NewUserResponse(result.User),
		"token":      result.Token,
		"expires_at": result.ExpiresAt,
	})
}
