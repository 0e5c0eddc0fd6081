package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/service"
)

// AdminHandler serves administrator diagnostics.
type AdminHandler struct {
	dashboard *service.DashboardService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(dashboard *service.DashboardService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard}
}

// Overview GET /api/admin/overview.
func (h *AdminHandler) Overview(c *fiber.Ctx) error {
	overview, err := h.dashboard.Overview(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "overview", overview)
}

// Store GET /api/admin/store. An unreachable store is reported, not raised.
func (h *AdminHandler) Store(c *fiber.Ctx) error {
	return respond(c, http.StatusOK, "store", h.dashboard.StoreStatus(c.UserContext()))
}
