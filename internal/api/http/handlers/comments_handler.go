package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/service"
)

// CommentsHandler exposes comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(commentService *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: commentService}
}

// List GET /api/comments?ticketId=. Without a ticket id every comment the
// viewer may see is returned.
func (h *CommentsHandler) List(c *fiber.Ctx) error {
	ticketID := dto.FirstNonEmpty(c.Query("ticketId"), c.Query("ticket_id"))
	comments, err := h.comments.List(c.UserContext(), viewerFrom(c), ticketID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "comments", comments)
}

// Create POST /api/comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	comment, err := h.comments.Add(c.UserContext(), actorFrom(c), service.CommentInput{
		TicketID:   dto.FirstNonEmpty(req.TicketID, req.TicketIDAlias),
		Content:    req.Content,
		AuthorID:   dto.FirstNonEmpty(req.AuthorID, req.UserID),
		AuthorName: req.AuthorName,
		AuthorRole: domain.Role(req.AuthorRole),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "comment", comment)
}
