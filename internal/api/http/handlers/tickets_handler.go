package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketsHandler exposes ticket endpoints.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: ticketService}
}

// List GET /api/tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	var query dto.TicketListQuery
	if err := c.QueryParser(&query); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	if err := dto.Validate(query); err != nil {
		return err
	}
	tickets, err := h.tickets.List(c.UserContext(), viewerFrom(c), query.Filter())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "tickets", tickets)
}

// Create POST /api/tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), actorFrom(c), service.TicketCreateInput{
		Subject:     dto.FirstNonEmpty(req.Subject, req.Title),
		Description: req.Description,
		Category:    req.Category,
		Priority:    domain.TicketPriority(req.Priority),
		CreatedBy:   dto.FirstNonEmpty(req.CreatedBy, req.UserID),
		AssignedTo:  req.AssignedTo,
		Attachments: req.Attachments,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "ticket", ticket)
}

// Get GET /api/tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), viewerFrom(c), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "ticket", ticket)
}

// Update PUT /api/tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Update(c.UserContext(), actorFrom(c), c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "ticket", ticket)
}

// Vote POST /api/tickets/:id/vote.
func (h *TicketsHandler) Vote(c *fiber.Ctx) error {
	var req dto.VoteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Vote(c.UserContext(), actorFrom(c), c.Params("id"), req.Direction)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "ticket", ticket)
}

// Assign POST /api/tickets/:id/assign.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Assign(c.UserContext(), actorFrom(c), c.Params("id"), req.AssigneeID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "ticket", ticket)
}

// Delete DELETE /api/tickets/:id. Comments on the ticket go with it.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", nil)
}
