package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// viewerFrom returns who a read is for: the token principal when present,
// otherwise the role and userId query parameters. An anonymous userId without
// a role reads as that end user.
func viewerFrom(c *fiber.Ctx) domain.Viewer {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.Viewer()
	}
	viewer := domain.Viewer{UserID: c.Query("userId"), Role: domain.Role(c.Query("role"))}
	if viewer.Role == "" && viewer.UserID != "" {
		viewer.Role = domain.RoleEndUser
	}
	return viewer
}

// actorFrom is the authenticated caller, or an unscoped anonymous viewer.
func actorFrom(c *fiber.Ctx) domain.Viewer {
	if principal, ok := auth.PrincipalFromContext(c); ok {
		return principal.Viewer()
	}
	return domain.Viewer{}
}

func parseBody(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return dto.Validate(req)
}

func respond(c *fiber.Ctx, status int, key string, value any) error {
	body := fiber.Map{"success": true}
	if key != "" {
		body[key] = value
	}
	return c.Status(status).JSON(body)
}
