package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// CommentService posts and lists ticket comments.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CommentDependencies bundles repositories for comment service.
type CommentDependencies struct {
	CommentRepo repository.CommentRepository
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// CommentInput describes a new comment. AuthorName and AuthorRole are
// looked up from the author's account when omitted.
type CommentInput struct {
	TicketID   string
	Content    string
	AuthorID   string
	AuthorName string
	AuthorRole domain.Role
}

// NewCommentService constructs the service.
func NewCommentService(deps CommentDependencies) *CommentService {
	return &CommentService{
		comments:   deps.CommentRepo,
		tickets:    deps.TicketRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
		logger:     loggerOrNop(deps.Logger),
	}
}

// Add posts a comment and bumps the ticket's comment count in the same write.
func (s *CommentService) Add(ctx context.Context, viewer domain.Viewer, input CommentInput) (*domain.Comment, error) {
	comment := &domain.Comment{
		TicketID:   strings.TrimSpace(input.TicketID),
		Content:    strings.TrimSpace(input.Content),
		AuthorID:   strings.TrimSpace(input.AuthorID),
		AuthorName: strings.TrimSpace(input.AuthorName),
		AuthorRole: input.AuthorRole,
	}
	if viewer.UserID != "" {
		comment.AuthorID = viewer.UserID
		comment.AuthorRole = viewer.Role
	}
	if err := required(map[string]string{
		"ticket_id": comment.TicketID,
		"content":   comment.Content,
		"author_id": comment.AuthorID,
	}); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(comment.Content) > domain.MaxCommentLength {
		return nil, apperrors.NewValidationError("comment is too long", map[string]any{"max_length": domain.MaxCommentLength})
	}
	if comment.AuthorRole != "" && !comment.AuthorRole.Valid() {
		return nil, apperrors.NewValidationError("invalid author_role", map[string]any{"author_role": comment.AuthorRole})
	}
	if viewer.Scoped() && viewer.UserID != "" {
		ticket, err := s.tickets.GetByID(ctx, comment.TicketID)
		if err != nil {
			return nil, translate(err, "ticket")
		}
		if !viewer.Owns(ticket) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
	}
	if err := s.fillAuthor(ctx, comment); err != nil {
		return nil, err
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, translate(err, "ticket")
	}
	publish(ctx, s.dispatcher, s.logger, events.New(events.EventCommentAdded, comment.TicketID, actorFromViewer(viewer), events.CommentAddedPayload{
		CommentID:   comment.ID,
		AuthorID:    comment.AuthorID,
		AuthorRole:  comment.AuthorRole,
		BodyPreview: stringPreview(comment.Content, 120),
	}))
	return comment, nil
}

// List returns comments oldest first, optionally for one ticket only. An end
// user sees comments on their own tickets only: a foreign ticket id is
// reported as not found, and the unfiltered list skips other users' tickets.
func (s *CommentService) List(ctx context.Context, viewer domain.Viewer, ticketID string) ([]domain.Comment, error) {
	if err := checkViewer(viewer); err != nil {
		return nil, err
	}
	ticketID = strings.TrimSpace(ticketID)
	if ticketID != "" {
		if viewer.Scoped() {
			ticket, err := s.tickets.GetByID(ctx, ticketID)
			if err != nil {
				return nil, translate(err, "ticket")
			}
			if !viewer.Owns(ticket) {
				return nil, apperrors.NewNotFound("ticket", nil)
			}
		}
		comments, err := s.comments.ListByTicket(ctx, ticketID)
		if err != nil {
			return nil, translate(err, "comment")
		}
		return comments, nil
	}

	comments, err := s.comments.List(ctx)
	if err != nil {
		return nil, translate(err, "comment")
	}
	if !viewer.Scoped() {
		return comments, nil
	}
	owned, err := s.tickets.ListByUser(ctx, viewer.UserID)
	if err != nil {
		return nil, translate(err, "ticket")
	}
	ids := make(map[string]struct{}, len(owned))
	for _, ticket := range owned {
		ids[ticket.ID] = struct{}{}
	}
	visible := make([]domain.Comment, 0, len(comments))
	for _, comment := range comments {
		if _, ok := ids[comment.TicketID]; ok {
			visible = append(visible, comment)
		}
	}
	return visible, nil
}

func (s *CommentService) fillAuthor(ctx context.Context, comment *domain.Comment) error {
	if comment.AuthorName != "" && comment.AuthorRole != "" {
		return nil
	}
	user, err := s.users.GetByID(ctx, comment.AuthorID)
	if errors.Is(err, repository.ErrNotFound) {
		if comment.AuthorName == "" {
			return apperrors.NewValidationError("unknown author; author_name is required", map[string]any{"author_id": comment.AuthorID})
		}
		comment.AuthorRole = domain.RoleEndUser
		return nil
	}
	if err != nil {
		return translate(err, "user")
	}
	if comment.AuthorName == "" {
		comment.AuthorName = user.Name
	}
	if comment.AuthorRole == "" {
		comment.AuthorRole = user.Role
	}
	return nil
}
