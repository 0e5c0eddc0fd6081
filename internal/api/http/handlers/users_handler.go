package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UsersHandler exposes user management endpoints.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{users: userService}
}

// List GET /api/users?role=.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.users.List(c.UserContext(), domain.Role(c.Query("role")))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "users", dto.NewUserResponses(users))
}

// Create POST /api/users.
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Create(c.UserContext(), service.UserCreateInput{
		Name:    req.Name,
		Email:   req.Email,
		Role:    domain.Role(req.Role),
		Status:  domain.UserStatus(req.Status),
		Profile: req.Profile.Domain(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "user", dto.NewUserResponse(user))
}

// Get GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", dto.NewUserResponse(user))
}

// Update PUT /api/users/:id. Callers other than admins may only edit
// themselves and may not change role or status.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	actor := actorFrom(c)
	if actor.UserID != "" && actor.Role != domain.RoleAdmin {
		if actor.UserID != c.Params("id") {
			return apperrors.NewForbidden("cannot edit another user")
		}
		if req.Role != nil || req.Status != nil {
			return apperrors.NewForbidden("only admins can change role or status")
		}
	}
	user, err := h.users.Update(c.UserContext(), c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "user", dto.NewUserResponse(user))
}

// Delete DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", nil)
}
